package ai

import (
	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"
)

// llmStoryRepository はLLMチャットを使用してStoryGenerationRepositoryを実装
type llmStoryRepository struct {
	chat repository.ChatRepository
}

// NewLLMStoryRepository は新しいllmStoryRepositoryインスタンスを作成
func NewLLMStoryRepository(chat repository.ChatRepository) repository.StoryGenerationRepository {
	return &llmStoryRepository{
		chat: chat,
	}
}

type narrativeResponse struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	DaySummaries []string `json:"day_summaries"`
}

// GenerateNarrative はタイトル・紹介文・日ごとの要約を生成する
// LLMが失敗した場合は定型文にフォールバックする
func (g *llmStoryRepository) GenerateNarrative(ctx context.Context, itinerary *model.Itinerary, prefs model.TripPreferences) (*model.Narrative, error) {
	fallback := service.FallbackNarrative(itinerary)
	if g.chat == nil {
		return fallback, nil
	}

	log.Info().Str("destination", itinerary.Destination).Msg("🤖 LLMで旅程のタイトル・紹介文を生成中...")

	text, err := g.chat.Ask(ctx, model.AgentNarrative, g.buildNarrativePrompt(itinerary, prefs))
	if err != nil {
		log.Warn().Err(err).Msg("❌ タイトル・紹介文の生成に失敗、定型文を使用します")
		return fallback, nil
	}

	var resp narrativeResponse
	if err := decodeLLMJSON(text, &resp); err != nil {
		log.Warn().Err(err).Msg("❌ タイトル・紹介文の解析に失敗、定型文を使用します")
		return fallback, nil
	}

	narrative := &model.Narrative{
		Title:        strings.TrimSpace(resp.Title),
		Summary:      strings.TrimSpace(resp.Summary),
		DaySummaries: fallback.DaySummaries,
	}
	if narrative.Title == "" {
		narrative.Title = fallback.Title
	}
	if narrative.Summary == "" {
		narrative.Summary = fallback.Summary
	}
	// 日数が一致する場合のみLLMの要約を採用
	if len(resp.DaySummaries) == len(itinerary.Days) {
		narrative.DaySummaries = resp.DaySummaries
	}

	log.Info().Str("title", narrative.Title).Msg("✅ タイトル・紹介文生成完了")
	return narrative, nil
}

// buildNarrativePrompt はタイトルと紹介文の生成用プロンプトを構築
func (g *llmStoryRepository) buildNarrativePrompt(itinerary *model.Itinerary, prefs model.TripPreferences) string {
	var days strings.Builder
	for _, d := range itinerary.Days {
		fmt.Fprintf(&days, "Day %d (%s):", d.DayIndex+1, d.Date)
		for _, s := range d.Slots {
			fmt.Fprintf(&days, " %s %s (%s);", s.StartTime, s.POIName, s.Category)
		}
		days.WriteString("\n")
	}

	styles := make([]string, 0, len(prefs.TravelStyles))
	for _, s := range prefs.TravelStyles {
		styles = append(styles, string(s))
	}

	return fmt.Sprintf(`Write copy for this itinerary.

Destination: %s
Travelling as: %s
Travel styles: %s

Schedule:
%s
Return JSON: {"title": "5-10 word catchy title", "summary": "2-3 sentence overview", "day_summaries": ["one sentence per day, in order"]}
There must be exactly %d day_summaries.`,
		itinerary.Destination,
		prefs.CompanionType,
		strings.Join(styles, ", "),
		days.String(),
		len(itinerary.Days))
}
