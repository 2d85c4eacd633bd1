package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"Itinerary-App/internal/domain/helper"
	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/strategy"
)

// fallbackVisionConfidence ファイル名から推定した場合の信頼度
const fallbackVisionConfidence = 0.1

// genericFileTokens ファイル名に含まれる意味のない語
var genericFileTokens = map[string]struct{}{
	"screenshot": {}, "screen": {}, "shot": {}, "img": {}, "image": {}, "photo": {},
	"pic": {}, "dsc": {}, "copy": {}, "final": {}, "edited": {}, "scaled": {},
}

// EstimateVisionFromFileName は画像解析が使えない場合にファイル名からロケーション名を推定する
func EstimateVisionFromFileName(fileName string) *model.VisionResult {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.' || r == '+'
	})

	var kept []string
	for _, w := range words {
		lower := strings.ToLower(w)
		if _, generic := genericFileTokens[lower]; generic {
			continue
		}
		if strings.IndexFunc(w, unicode.IsLetter) < 0 {
			continue
		}
		kept = append(kept, titleWord(lower))
	}

	result := &model.VisionResult{Confidence: fallbackVisionConfidence}
	if len(kept) > 0 {
		name := strings.Join(kept, " ")
		result.LocationNames = []string{name}
		result.ExtractedText = []string{name}
	}
	return result
}

// EstimatePOIs は場所カタログが使えない場合に、名前だけから未検証のPOIを作る（位置情報なし）
func EstimatePOIs(names []string) *model.ValidationResult {
	result := &model.ValidationResult{}
	trimmed := lo.Map(names, func(n string, _ int) string { return strings.TrimSpace(n) })
	for _, name := range lo.Uniq(trimmed) {
		if name == "" {
			continue
		}
		result.VerifiedPOIs = append(result.VerifiedPOIs, &model.POI{
			ID:       uuid.NewString(),
			Name:     name,
			Category: helper.GuessCategory(name),
			Verified: false,
		})
	}
	return result
}

// ClassifyVibeLocally は戦略ルールで希望に合わないPOIを判定する
// 全件が除外対象になる場合は何も除外しない
func ClassifyVibeLocally(pois []*model.POI, prefs model.TripPreferences, strategies []strategy.StrategyInterface) *model.VibeResult {
	result := &model.VibeResult{
		IncompatiblePOIIDs: make(map[string]struct{}),
		Reasons:            make(map[string]string),
	}
	for _, st := range strategies {
		if !st.Applies(prefs) {
			continue
		}
		for _, p := range pois {
			if _, already := result.IncompatiblePOIIDs[p.ID]; already {
				continue
			}
			if reason, ng := st.Check(p); ng {
				result.IncompatiblePOIIDs[p.ID] = struct{}{}
				result.Reasons[p.ID] = reason
			}
		}
	}
	if len(pois) > 0 && len(result.IncompatiblePOIIDs) >= len(pois) {
		return &model.VibeResult{IncompatiblePOIIDs: map[string]struct{}{}, Reasons: map[string]string{}}
	}
	return result
}

// ApplyVibeResult は除外対象を取り除いたPOIを返す。全件除外になる場合は元のまま返す
func ApplyVibeResult(pois []*model.POI, vibe *model.VibeResult) []*model.POI {
	if vibe == nil || len(vibe.IncompatiblePOIIDs) == 0 {
		return pois
	}
	filtered := helper.RemovePOIs(pois, vibe.IncompatiblePOIIDs)
	if len(filtered) == 0 {
		return pois
	}
	return filtered
}

// FallbackNarrative はLLMが使えない場合の定型の紹介文を作る
func FallbackNarrative(it *model.Itinerary) *model.Narrative {
	destination := it.Destination
	if destination == "" {
		destination = "Your Trip"
	}
	n := &model.Narrative{
		Title: fmt.Sprintf("%d-Day %s Itinerary", len(it.Days), destination),
		Summary: fmt.Sprintf("%d stops across %d day(s), grouped by neighbourhood to keep travel short.",
			it.TotalSlots(), len(it.Days)),
	}
	for _, d := range it.Days {
		names := lo.Map(d.Slots, func(s model.TimeSlot, _ int) string { return s.POIName })
		n.DaySummaries = append(n.DaySummaries, fmt.Sprintf("Day %d: %s", d.DayIndex+1, joinNames(names)))
	}
	return n
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "Free day"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func titleWord(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
