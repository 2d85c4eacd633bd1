package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
	"Itinerary-App/internal/domain/strategy"
)

// llmVibeFilterRepository はLLMとルールベースの戦略を組み合わせてVibeFilterRepositoryを実装
type llmVibeFilterRepository struct {
	chat       repository.ChatRepository
	strategies []strategy.StrategyInterface
}

// NewLLMVibeFilterRepository は新しいllmVibeFilterRepositoryインスタンスを作成（chatはnil可）
func NewLLMVibeFilterRepository(chat repository.ChatRepository) repository.VibeFilterRepository {
	return &llmVibeFilterRepository{
		chat:       chat,
		strategies: strategy.DefaultStrategies(),
	}
}

type vibeResponse struct {
	Incompatible []struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"incompatible"`
}

// Classify は希望条件に合わないPOIのIDを判定する
// LLMの判定が使えない場合はルールベースの戦略にフォールバックする
func (v *llmVibeFilterRepository) Classify(ctx context.Context, pois []*model.POI, hashtags []string, prefs model.TripPreferences) (*model.VibeResult, error) {
	if len(pois) == 0 {
		return &model.VibeResult{IncompatiblePOIIDs: map[string]struct{}{}}, nil
	}
	if v.chat == nil {
		return service.ClassifyVibeLocally(pois, prefs, v.strategies), nil
	}

	text, err := v.chat.Ask(ctx, model.AgentVibe, buildVibePrompt(pois, hashtags, prefs))
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ 雰囲気フィルタのLLM判定に失敗、ルールで判定します")
		return service.ClassifyVibeLocally(pois, prefs, v.strategies), nil
	}
	result, err := parseVibeResponse(text, pois)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ 雰囲気フィルタの応答が不正なため、ルールで判定します")
		return service.ClassifyVibeLocally(pois, prefs, v.strategies), nil
	}
	return result, nil
}

func buildVibePrompt(pois []*model.POI, hashtags []string, prefs model.TripPreferences) string {
	var list strings.Builder
	for _, p := range pois {
		fmt.Fprintf(&list, "- id=%s name=%q category=%s\n", p.ID, p.Name, p.Category)
	}
	styles := make([]string, 0, len(prefs.TravelStyles))
	for _, s := range prefs.TravelStyles {
		styles = append(styles, string(s))
	}
	return fmt.Sprintf(`Traveller: %s, styles: %s
Hashtags seen in their saved posts: %s

Spots:
%s
Which spots clearly do NOT fit this traveller? Be conservative; when unsure keep the spot.
Return JSON: {"incompatible": [{"id": "...", "reason": "short reason"}]}`,
		prefs.CompanionType, strings.Join(styles, ", "), strings.Join(hashtags, " "), list.String())
}

// parseVibeResponse は既知のIDのみを採用し、全件除外になる判定は無効として扱う
func parseVibeResponse(text string, pois []*model.POI) (*model.VibeResult, error) {
	var resp vibeResponse
	if err := decodeLLMJSON(text, &resp); err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(pois))
	for _, p := range pois {
		known[p.ID] = struct{}{}
	}
	result := &model.VibeResult{
		IncompatiblePOIIDs: make(map[string]struct{}),
		Reasons:            make(map[string]string),
	}
	for _, item := range resp.Incompatible {
		if _, ok := known[item.ID]; !ok {
			continue
		}
		result.IncompatiblePOIIDs[item.ID] = struct{}{}
		result.Reasons[item.ID] = item.Reason
	}
	if len(result.IncompatiblePOIIDs) >= len(pois) {
		return nil, fmt.Errorf("全てのPOIが除外対象と判定されました")
	}
	return result, nil
}
