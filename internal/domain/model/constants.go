package model

// CategoryNameMap はカテゴリIDから表示名へのマッピング
var CategoryNameMap = map[Category]string{
	CategoryRestaurant:    "Restaurant",
	CategoryAttraction:    "Attraction",
	CategoryActivity:      "Activity",
	CategoryAccommodation: "Accommodation",
	CategoryViewpoint:     "Viewpoint",
	CategoryMarket:        "Market",
	CategoryTemple:        "Temple",
	CategoryCafe:          "Cafe",
	CategoryOther:         "Other",
}

// GetCategoryDisplayName はカテゴリIDから表示名を取得する
func GetCategoryDisplayName(c Category) string {
	if name, ok := CategoryNameMap[c]; ok {
		return name
	}
	return string(c) // デフォルトはそのまま返す
}

// GetAllCategories は全カテゴリの一覧を取得する
func GetAllCategories() []Category {
	return []Category{
		CategoryRestaurant,
		CategoryAttraction,
		CategoryActivity,
		CategoryAccommodation,
		CategoryViewpoint,
		CategoryMarket,
		CategoryTemple,
		CategoryCafe,
		CategoryOther,
	}
}

// CompanionType 同行者の種別
type CompanionType string

const (
	CompanionSolo    CompanionType = "solo"
	CompanionPartner CompanionType = "partner"
	CompanionFriends CompanionType = "friends"
	CompanionFamily  CompanionType = "family"
)

// TravelStyle 旅行スタイル
type TravelStyle string

const (
	StyleCulture     TravelStyle = "culture"
	StyleFood        TravelStyle = "food"
	StyleNature      TravelStyle = "nature"
	StyleAdventure   TravelStyle = "adventure"
	StyleRelaxation  TravelStyle = "relaxation"
	StyleNightlife   TravelStyle = "nightlife"
	StyleShopping    TravelStyle = "shopping"
	StylePhotography TravelStyle = "photography"
)

// GetAllTravelStyles は全旅行スタイルの一覧を取得する
func GetAllTravelStyles() []TravelStyle {
	return []TravelStyle{
		StyleCulture,
		StyleFood,
		StyleNature,
		StyleAdventure,
		StyleRelaxation,
		StyleNightlife,
		StyleShopping,
		StylePhotography,
	}
}

const (
	// DefaultDayStartTime 1日の開始時刻のデフォルト
	DefaultDayStartTime = "09:00"
	// DefaultDayEndTime 1日の終了時刻のデフォルト
	DefaultDayEndTime = "21:00"
	// DateLayout 日付のフォーマット
	DateLayout = "2006-01-02"
)
