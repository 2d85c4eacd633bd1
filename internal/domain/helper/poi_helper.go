package helper

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"Itinerary-App/internal/domain/model"
)

// EarthRadiusKm 地球半径 (km)
const EarthRadiusKm = 6371.0

// DistanceKm は2地点間の大圏距離をハーバサイン公式で計算する (km)
func DistanceKm(p1, p2 model.GeoPoint) float64 {
	lat1 := p1.Latitude * math.Pi / 180
	lng1 := p1.Longitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	lng2 := p2.Longitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistancePOIKm は2つのPOI間の距離を計算する (km)
// どちらかが位置情報を持たない場合はfalseを返す
func DistancePOIKm(poi1, poi2 *model.POI) (float64, bool) {
	a, ok1 := poi1.Point()
	b, ok2 := poi2.Point()
	if !ok1 || !ok2 {
		return 0, false
	}
	return DistanceKm(a, b), true
}

// Centroid は緯度・経度それぞれの算術平均を返す（球面上の重心ではない）
// 空の入力の場合は呼び出し側が指定したデフォルト値を返す
func Centroid(points []model.GeoPoint, fallback model.GeoPoint) model.GeoPoint {
	if len(points) == 0 {
		return fallback
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, p.ToOrbPoint())
	}
	center, _ := planar.CentroidArea(mp)
	return model.GeoPointFromOrb(center)
}

// Bounds は点群の境界ボックスを返す
func Bounds(points []model.GeoPoint) model.BoundingBox {
	if len(points) == 0 {
		return model.BoundingBox{}
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, p.ToOrbPoint())
	}
	return model.BoundingBoxFromBound(mp.Bound())
}

// CoordinatesOf は位置情報を持つPOIの座標一覧を返す
func CoordinatesOf(pois []*model.POI) []model.GeoPoint {
	points := make([]model.GeoPoint, 0, len(pois))
	for _, p := range pois {
		if pt, ok := p.Point(); ok {
			points = append(points, pt)
		}
	}
	return points
}

// FilterByCategory は指定されたカテゴリのPOIのみを抽出する
func FilterByCategory(pois []*model.POI, categories ...model.Category) []*model.POI {
	catSet := make(map[model.Category]struct{})
	for _, c := range categories {
		catSet[c] = struct{}{}
	}
	var filtered []*model.POI
	for _, p := range pois {
		if _, ok := catSet[p.Category]; ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// RemovePOIs はスライスから指定IDのPOIを除外する（順序は維持）
func RemovePOIs(pois []*model.POI, ids map[string]struct{}) []*model.POI {
	if len(ids) == 0 {
		return pois
	}
	result := make([]*model.POI, 0, len(pois))
	for _, p := range pois {
		if _, ok := ids[p.ID]; !ok {
			result = append(result, p)
		}
	}
	return result
}

// categoryKeywords は名前から種別を推定するためのキーワード（判定順）
var categoryKeywords = []struct {
	category model.Category
	keywords []string
}{
	{model.CategoryAccommodation, []string{"hotel", "hostel", "ryokan", "guesthouse", "guest house", "resort", "motel", " inn"}},
	{model.CategoryCafe, []string{"cafe", "café", "coffee", "bakery", "tea house", "patisserie"}},
	{model.CategoryRestaurant, []string{"restaurant", "ramen", "sushi", "bistro", "diner", "grill", "izakaya", "eatery", "kitchen", "noodle", "pizza", "bbq", "breakfast", "lunch", "dinner", "street food"}},
	{model.CategoryTemple, []string{"temple", "shrine", "pagoda", "cathedral", "church", "mosque", "wat ", "jinja"}},
	{model.CategoryMarket, []string{"market", "bazaar", "souk", "night market", "mall"}},
	{model.CategoryViewpoint, []string{"viewpoint", "view point", "observation", "lookout", "observatory", "skytree", "tower", "summit", "peak", "sunset"}},
	{model.CategoryActivity, []string{"tour", "class", "workshop", "diving", "snorkel", "hike", "hiking", "kayak", "surf", "spa", "onsen", "cruise"}},
	{model.CategoryAttraction, []string{"museum", "gallery", "park", "castle", "palace", "garden", "zoo", "aquarium", "monument", "square", "bridge"}},
}

// GuessCategory は名前のキーワードから種別を推定する
func GuessCategory(name string) model.Category {
	lower := " " + strings.ToLower(name) + " "
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return model.CategoryOther
}

// placeTypeCategories はGoogle Placesのtypesから種別へのマッピング（判定順）
var placeTypeCategories = []struct {
	placeType string
	category  model.Category
}{
	{"lodging", model.CategoryAccommodation},
	{"cafe", model.CategoryCafe},
	{"bakery", model.CategoryCafe},
	{"restaurant", model.CategoryRestaurant},
	{"meal_takeaway", model.CategoryRestaurant},
	{"food", model.CategoryRestaurant},
	{"place_of_worship", model.CategoryTemple},
	{"hindu_temple", model.CategoryTemple},
	{"church", model.CategoryTemple},
	{"mosque", model.CategoryTemple},
	{"shopping_mall", model.CategoryMarket},
	{"supermarket", model.CategoryMarket},
	{"amusement_park", model.CategoryActivity},
	{"spa", model.CategoryActivity},
	{"travel_agency", model.CategoryActivity},
	{"museum", model.CategoryAttraction},
	{"art_gallery", model.CategoryAttraction},
	{"park", model.CategoryAttraction},
	{"zoo", model.CategoryAttraction},
	{"aquarium", model.CategoryAttraction},
	{"tourist_attraction", model.CategoryAttraction},
	{"natural_feature", model.CategoryViewpoint},
}

// CategoryFromPlaceTypes はPlaces APIのtypesから種別を判定し、該当がなければ名前から推定する
func CategoryFromPlaceTypes(types []string, name string) model.Category {
	typeSet := make(map[string]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}
	// 名前に市場・展望のキーワードがある場合はtypesより優先する
	if guessed := GuessCategory(name); guessed == model.CategoryMarket || guessed == model.CategoryViewpoint {
		return guessed
	}
	for _, entry := range placeTypeCategories {
		if _, ok := typeSet[entry.placeType]; ok {
			return entry.category
		}
	}
	return GuessCategory(name)
}
