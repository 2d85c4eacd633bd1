package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
)

func TestGeminiVisionRepository_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("応答を整形して返す", func(t *testing.T) {
		analyzer := &fakeImageAnalyzer{response: `{"extracted_text": [" Kyoto trip "], "location_names": ["Fushimi Inari", "Fushimi Inari", " "], "hashtags": ["#kyoto"], "platform": " Instagram ", "confidence": 1.7}`}
		repo := NewGeminiVisionRepository(analyzer)

		result, err := repo.Analyze(ctx, model.ScreenshotInput{FileName: "a.png", MIMEType: "image/png", Data: []byte{1}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fushimi Inari"}, result.LocationNames)
		assert.Equal(t, []string{"Kyoto trip"}, result.ExtractedText)
		assert.Equal(t, "instagram", result.Platform)
		assert.Equal(t, 1.0, result.Confidence)
		assert.Equal(t, "image/png", analyzer.mimeType)
	})

	t.Run("空の画像はエラー", func(t *testing.T) {
		repo := NewGeminiVisionRepository(&fakeImageAnalyzer{})
		_, err := repo.Analyze(ctx, model.ScreenshotInput{FileName: "empty.png"})
		assert.Error(t, err)
	})

	t.Run("解析失敗はエラーを返す", func(t *testing.T) {
		repo := NewGeminiVisionRepository(&fakeImageAnalyzer{err: errors.New("quota")})
		_, err := repo.Analyze(ctx, model.ScreenshotInput{FileName: "a.png", Data: []byte{1}})
		assert.Error(t, err)
	})
}

func TestLLMStoryRepository_GenerateNarrative(t *testing.T) {
	ctx := context.Background()
	prefs := model.TripPreferences{CompanionType: model.CompanionPartner}

	t.Run("LLMの応答を採用する", func(t *testing.T) {
		chat := &fakeChat{response: `{"title": "Temples and Tastes", "summary": "Two days in Kyoto.", "day_summaries": ["Temples.", "Food."]}`}
		repo := NewLLMStoryRepository(chat)

		n, err := repo.GenerateNarrative(ctx, twoDayItinerary(), prefs)
		require.NoError(t, err)
		assert.Equal(t, "Temples and Tastes", n.Title)
		assert.Equal(t, []string{"Temples.", "Food."}, n.DaySummaries)
		assert.Equal(t, []model.AgentType{model.AgentNarrative}, chat.agents)
		assert.Contains(t, chat.prompts[0], "exactly 2 day_summaries")
	})

	t.Run("日数が合わない要約は定型文を使う", func(t *testing.T) {
		chat := &fakeChat{response: `{"title": "Kyoto", "summary": "", "day_summaries": ["only one"]}`}
		n, err := NewLLMStoryRepository(chat).GenerateNarrative(ctx, twoDayItinerary(), prefs)
		require.NoError(t, err)
		assert.Equal(t, "Kyoto", n.Title)
		assert.Equal(t, []string{"Day 1: Kiyomizu-dera", "Day 2: Nishiki Market"}, n.DaySummaries)
		assert.NotEmpty(t, n.Summary)
	})

	t.Run("LLMが失敗しても定型文を返す", func(t *testing.T) {
		chat := &fakeChat{err: errors.New("timeout")}
		n, err := NewLLMStoryRepository(chat).GenerateNarrative(ctx, twoDayItinerary(), prefs)
		require.NoError(t, err)
		assert.Equal(t, "2-Day Kyoto Itinerary", n.Title)
	})
}

func TestLLMVibeFilterRepository_Classify(t *testing.T) {
	ctx := context.Background()
	family := model.TripPreferences{CompanionType: model.CompanionFamily}

	t.Run("既知のIDのみ採用する", func(t *testing.T) {
		chat := &fakeChat{response: `{"incompatible": [{"id": "p3", "reason": "nightlife"}, {"id": "unknown", "reason": "?"}]}`}
		result, err := NewLLMVibeFilterRepository(chat).Classify(ctx, kyotoPOIs(), []string{"#kyoto"}, family)
		require.NoError(t, err)
		assert.True(t, result.IsIncompatible("p3"))
		assert.False(t, result.IsIncompatible("unknown"))
		assert.Len(t, result.IncompatiblePOIIDs, 1)
	})

	t.Run("全件除外の判定はルールにフォールバックする", func(t *testing.T) {
		chat := &fakeChat{response: `{"incompatible": [{"id": "p1"}, {"id": "p2"}, {"id": "p3"}]}`}
		result, err := NewLLMVibeFilterRepository(chat).Classify(ctx, kyotoPOIs(), nil, family)
		require.NoError(t, err)
		assert.Less(t, len(result.IncompatiblePOIIDs), 3)
		assert.False(t, result.IsIncompatible("p1"))
	})

	t.Run("LLMなしでもルールで判定する", func(t *testing.T) {
		result, err := NewLLMVibeFilterRepository(nil).Classify(ctx, kyotoPOIs(), nil, family)
		require.NoError(t, err)
		assert.True(t, result.IsIncompatible("p3"))
	})
}

func TestLLMBudgetAdvisorRepository_SuggestOptimization(t *testing.T) {
	ctx := context.Background()
	check := model.BudgetCheck{IsOverBudget: true, OverageAmount: 50, BudgetLimit: 100, EstimatedTotal: 150}

	t.Run("応答を最適化案に変換する", func(t *testing.T) {
		chat := &fakeChat{response: `{"keep": ["p1"], "replace": [{"id": "p2", "suggestion": " street food ", "estimated_savings": 20}, {"id": ""}], "remove": ["p3"], "projected_savings": 60}`}
		plan, err := NewLLMBudgetAdvisorRepository(chat).SuggestOptimization(ctx, kyotoPOIs(), check, model.TripPreferences{Currency: "JPY"})
		require.NoError(t, err)
		assert.Equal(t, model.OptimizationSourceLLM, plan.Source)
		require.Len(t, plan.Replace, 1)
		assert.Equal(t, "street food", plan.Replace[0].Suggestion)
		assert.Equal(t, []string{"p3"}, plan.Remove)
		assert.Equal(t, 60.0, plan.ProjectedSavings)
		assert.Contains(t, chat.prompts[0], "overage: 50 JPY")
	})

	t.Run("不正な応答はエラー", func(t *testing.T) {
		chat := &fakeChat{response: "I cannot help with that"}
		_, err := NewLLMBudgetAdvisorRepository(chat).SuggestOptimization(ctx, kyotoPOIs(), check, model.TripPreferences{})
		assert.Error(t, err)
	})

	t.Run("LLMなしはエラー", func(t *testing.T) {
		_, err := NewLLMBudgetAdvisorRepository(nil).SuggestOptimization(ctx, kyotoPOIs(), check, model.TripPreferences{})
		assert.Error(t, err)
	})
}
