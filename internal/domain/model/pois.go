package model

import (
	"strings"

	"github.com/paulmach/orb"
)

// GeoPoint 緯度経度を表す値型（不変）
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// ToOrbPoint orb.Point（[longitude, latitude]）に変換
func (p GeoPoint) ToOrbPoint() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// GeoPointFromOrb orb.Point から GeoPoint に変換
func GeoPointFromOrb(pt orb.Point) GeoPoint {
	return GeoPoint{Latitude: pt.Lat(), Longitude: pt.Lon()}
}

// BoundingBox クラスタの表示用境界ボックス
type BoundingBox struct {
	MinLatitude  float64 `json:"min_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// BoundingBoxFromBound orb.Bound から BoundingBox に変換
func BoundingBoxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinLatitude:  b.Min.Lat(),
		MinLongitude: b.Min.Lon(),
		MaxLatitude:  b.Max.Lat(),
		MaxLongitude: b.Max.Lon(),
	}
}

// Category POIの種別
type Category string

const (
	CategoryRestaurant    Category = "restaurant"
	CategoryAttraction    Category = "attraction"
	CategoryActivity      Category = "activity"
	CategoryAccommodation Category = "accommodation"
	CategoryViewpoint     Category = "viewpoint"
	CategoryMarket        Category = "market"
	CategoryTemple        Category = "temple"
	CategoryCafe          Category = "cafe"
	CategoryOther         Category = "other"
)

// ParseCategory 文字列をCategoryに変換する（不明な値はother）
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range GetAllCategories() {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// POI Point of Interest（訪問可能なスポット）を表すモデル
type POI struct {
	ID            string    `json:"id" validate:"required"`                            // パイプライン内で一意なID
	Name          string    `json:"name" validate:"required"`                          // スポット名
	Address       string    `json:"address,omitempty"`                                 // 住所
	Coordinates   *GeoPoint `json:"coordinates,omitempty"`                             // 位置情報（NULLABLE）
	Category      Category  `json:"category"`                                          // 種別
	Rating        *float64  `json:"rating,omitempty" validate:"omitempty,min=0,max=5"` // 評価値 0-5
	PriceLevel    *int      `json:"price_level,omitempty" validate:"omitempty,min=1,max=4"`
	EstimatedCost *float64  `json:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	Currency      string    `json:"currency,omitempty"`
	Verified      bool      `json:"verified"`
	OpeningHours  []string  `json:"opening_hours,omitempty"` // エンリッチで付与される営業時間
}

// HasCoordinates 位置情報を持つかチェック
func (p *POI) HasCoordinates() bool {
	return p != nil && p.Coordinates != nil
}

// Point 位置情報を返す（存在しない場合はfalse）
func (p *POI) Point() (GeoPoint, bool) {
	if !p.HasCoordinates() {
		return GeoPoint{}, false
	}
	return *p.Coordinates, true
}

// PriceLevelOr 価格帯が未設定の場合はdefを返す
func (p *POI) PriceLevelOr(def int) int {
	if p.PriceLevel != nil {
		return *p.PriceLevel
	}
	return def
}

// Clone 浅いコピーを返す（ポインタフィールドは共有しない）
func (p *POI) Clone() *POI {
	c := *p
	if p.Coordinates != nil {
		coords := *p.Coordinates
		c.Coordinates = &coords
	}
	if p.Rating != nil {
		r := *p.Rating
		c.Rating = &r
	}
	if p.PriceLevel != nil {
		l := *p.PriceLevel
		c.PriceLevel = &l
	}
	if p.EstimatedCost != nil {
		e := *p.EstimatedCost
		c.EstimatedCost = &e
	}
	if p.OpeningHours != nil {
		c.OpeningHours = append([]string(nil), p.OpeningHours...)
	}
	return &c
}

// Float64Ptr float64のポインタを返す
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr intのポインタを返す
func IntPtr(v int) *int { return &v }
