package ai

import (
	"context"
	"fmt"
	"strings"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
)

// llmBudgetAdvisorRepository はLLMチャットを使用してBudgetAdvisorRepositoryを実装
type llmBudgetAdvisorRepository struct {
	chat      repository.ChatRepository
	estimator *service.BudgetEstimator
}

// NewLLMBudgetAdvisorRepository は新しいllmBudgetAdvisorRepositoryインスタンスを作成
func NewLLMBudgetAdvisorRepository(chat repository.ChatRepository) repository.BudgetAdvisorRepository {
	return &llmBudgetAdvisorRepository{
		chat:      chat,
		estimator: service.NewBudgetEstimator(),
	}
}

type budgetResponse struct {
	Keep    []string `json:"keep"`
	Replace []struct {
		ID               string  `json:"id"`
		Suggestion       string  `json:"suggestion"`
		EstimatedSavings float64 `json:"estimated_savings"`
	} `json:"replace"`
	Remove           []string `json:"remove"`
	ProjectedSavings float64  `json:"projected_savings"`
}

// SuggestOptimization は予算超過を解消する維持・置換・削除の案をLLMに提案させる
func (b *llmBudgetAdvisorRepository) SuggestOptimization(ctx context.Context, pois []*model.POI, check model.BudgetCheck, prefs model.TripPreferences) (*model.OptimizationPlan, error) {
	if b.chat == nil {
		return nil, fmt.Errorf("LLMクライアントが設定されていません")
	}
	text, err := b.chat.Ask(ctx, model.AgentBudget, b.buildPrompt(pois, check, prefs))
	if err != nil {
		return nil, fmt.Errorf("予算最適化の問い合わせに失敗: %w", err)
	}
	return parseBudgetResponse(text)
}

func (b *llmBudgetAdvisorRepository) buildPrompt(pois []*model.POI, check model.BudgetCheck, prefs model.TripPreferences) string {
	var list strings.Builder
	for _, p := range pois {
		fmt.Fprintf(&list, "- id=%s name=%q category=%s cost=%.0f\n", p.ID, p.Name, p.Category, b.estimator.EstimateCost(p))
	}
	return fmt.Sprintf(`The trip is over budget.
Budget: %.0f %s, estimated total: %.0f %s, overage: %.0f %s.

Spots:
%s
Propose the smallest change that removes the overage. Prefer replacing expensive restaurants and activities
with cheaper alternatives over removing spots, and never remove every spot.
Return JSON: {"keep": ["id"], "replace": [{"id": "...", "suggestion": "...", "estimated_savings": 0}], "remove": ["id"], "projected_savings": 0}`,
		check.BudgetLimit, prefs.Currency, check.EstimatedTotal, prefs.Currency, check.OverageAmount, prefs.Currency,
		list.String())
}

// parseBudgetResponse はLLM応答を最適化案に変換する（IDの検証は呼び出し側で行う）
func parseBudgetResponse(text string) (*model.OptimizationPlan, error) {
	var resp budgetResponse
	if err := decodeLLMJSON(text, &resp); err != nil {
		return nil, err
	}
	plan := &model.OptimizationPlan{
		Keep:             resp.Keep,
		Remove:           resp.Remove,
		ProjectedSavings: resp.ProjectedSavings,
		Source:           model.OptimizationSourceLLM,
	}
	for _, r := range resp.Replace {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		plan.Replace = append(plan.Replace, model.Replacement{
			POIID:            r.ID,
			Suggestion:       strings.TrimSpace(r.Suggestion),
			EstimatedSavings: r.EstimatedSavings,
		})
	}
	return plan, nil
}
