package strategy

import (
	"fmt"

	"Itinerary-App/internal/domain/model"
)

// nightlifeKeywords 家族旅行やカップル旅行に向かない夜遊び系スポットのキーワード
var nightlifeKeywords = []string{" bar ", " bar,", " pub ", "nightclub", " club ", "casino", "cabaret", "lounge", "red light", "hostess", "brewery"}

// FamilyStrategy は家族旅行とカップル旅行で夜遊び系のスポットを除外する
type FamilyStrategy struct{}

func NewFamilyStrategy() StrategyInterface {
	return &FamilyStrategy{}
}

func (s *FamilyStrategy) Name() string {
	return "family"
}

// Applies は同行者が家族かパートナーの場合に適用する
func (s *FamilyStrategy) Applies(prefs model.TripPreferences) bool {
	return prefs.CompanionType == model.CompanionFamily || prefs.CompanionType == model.CompanionPartner
}

func (s *FamilyStrategy) Check(poi *model.POI) (string, bool) {
	kw, ok := matchKeyword(poi.Name, nightlifeKeywords)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Nightlife venue (%s) is not a good fit for this trip", kw), true
}
