package strategy

import (
	"fmt"

	"Itinerary-App/internal/domain/model"
)

// extremeKeywords のんびり旅に向かない激しいアクティビティのキーワード
var extremeKeywords = []string{"bungee", "skydiving", "skydive", "paragliding", "rafting", "zipline", "zip line", "canyoning"}

// RelaxationStrategy はリラックス重視の旅でハードなアクティビティを除外する
type RelaxationStrategy struct{}

func NewRelaxationStrategy() StrategyInterface {
	return &RelaxationStrategy{}
}

func (s *RelaxationStrategy) Name() string {
	return "relaxation"
}

// Applies はrelaxationを含みadventureを含まない場合に適用する
func (s *RelaxationStrategy) Applies(prefs model.TripPreferences) bool {
	return prefs.HasStyle(model.StyleRelaxation) && !prefs.HasStyle(model.StyleAdventure)
}

func (s *RelaxationStrategy) Check(poi *model.POI) (string, bool) {
	if poi.Category != model.CategoryActivity && poi.Category != model.CategoryOther {
		return "", false
	}
	kw, ok := matchKeyword(poi.Name, extremeKeywords)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("High-adrenaline activity (%s) does not match a relaxed trip", kw), true
}
