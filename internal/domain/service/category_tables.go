package service

import (
	"strings"

	"Itinerary-App/internal/domain/model"
)

// visitDurations 種別ごとの滞在時間（分）
var visitDurations = map[model.Category]int{
	model.CategoryRestaurant:    75,
	model.CategoryAttraction:    90,
	model.CategoryActivity:      120,
	model.CategoryAccommodation: 0,
	model.CategoryViewpoint:     45,
	model.CategoryMarket:        60,
	model.CategoryTemple:        60,
	model.CategoryCafe:          45,
	model.CategoryOther:         45,
}

// baseCosts 種別ごとの基準費用（価格帯2を基準とする）
var baseCosts = map[model.Category]float64{
	model.CategoryRestaurant:    25,
	model.CategoryAttraction:    15,
	model.CategoryActivity:      40,
	model.CategoryAccommodation: 100,
	model.CategoryViewpoint:     0,
	model.CategoryMarket:        20,
	model.CategoryTemple:        5,
	model.CategoryCafe:          15,
	model.CategoryOther:         10,
}

// VisitDurationMinutes 種別ごとの滞在時間を返す
func VisitDurationMinutes(c model.Category) int {
	if d, ok := visitDurations[c]; ok {
		return d
	}
	return visitDurations[model.CategoryOther]
}

// BaseCost 種別ごとの基準費用を返す
func BaseCost(c model.Category) float64 {
	if v, ok := baseCosts[c]; ok {
		return v
	}
	return baseCosts[model.CategoryOther]
}

// OptimalStartMinute 1日の並び替えに使う理想的な開始時刻（0時からの分）
func OptimalStartMinute(poi *model.POI) int {
	switch poi.Category {
	case model.CategoryViewpoint:
		return 17 * 60
	case model.CategoryMarket:
		return 10 * 60
	case model.CategoryRestaurant:
		name := strings.ToLower(poi.Name)
		switch {
		case strings.Contains(name, "breakfast"):
			return 8 * 60
		case strings.Contains(name, "dinner"):
			return 19 * 60
		}
		return 12 * 60
	case model.CategoryAttraction:
		return 9 * 60
	default:
		return 11 * 60
	}
}

// IsOptimalHour 訪問開始時刻（時）が種別の推奨時間帯に入っているか判定する
func IsOptimalHour(c model.Category, hour int) bool {
	switch c {
	case model.CategoryViewpoint:
		return hour >= 16 && hour < 19
	case model.CategoryAttraction:
		return hour >= 9 && hour < 11
	case model.CategoryMarket:
		return hour >= 8 && hour < 11
	case model.CategoryRestaurant:
		return (hour >= 12 && hour < 14) || (hour >= 18 && hour < 21)
	default:
		return true
	}
}
