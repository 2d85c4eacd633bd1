package strategy

import (
	"strings"

	"Itinerary-App/internal/domain/model"
)

// StrategyInterface は、旅行者の同行者や旅行スタイルに合わないPOIを判定する戦略のインターフェース
type StrategyInterface interface {
	// 戦略名（判定理由のログ出力に使う）
	Name() string

	// この戦略が希望条件に対して適用されるか
	Applies(prefs model.TripPreferences) bool

	// POIが希望条件に合わない場合は理由とtrueを返す
	Check(poi *model.POI) (reason string, incompatible bool)
}

// DefaultStrategies は雰囲気フィルタのフォールバックで使う戦略一覧を返す
func DefaultStrategies() []StrategyInterface {
	return []StrategyInterface{
		NewFamilyStrategy(),
		NewRelaxationStrategy(),
	}
}

// matchKeyword は名前にキーワードが含まれていれば最初に一致したものを返す
func matchKeyword(name string, keywords []string) (string, bool) {
	lower := " " + strings.ToLower(name) + " "
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return strings.TrimSpace(kw), true
		}
	}
	return "", false
}
