package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
)

const (
	// costlyActivityThreshold これを超える体験は置き換え候補
	costlyActivityThreshold = 50.0
	// removableCostThreshold これを超えるPOIは削除候補
	removableCostThreshold = 30.0
	// minPOIsForRemoval 削除はPOIがこの件数を超える場合のみ行う
	minPOIsForRemoval = 5
	// replacementSavingsRate 置き換えで見込む節約率
	replacementSavingsRate = 0.5
)

// BudgetOptimizer は予算超過時に維持・置換・削除の最適化案を作る
// LLMの提案が使えない場合は決定的なヒューリスティックにフォールバックする
type BudgetOptimizer struct {
	advisor   repository.BudgetAdvisorRepository
	estimator *BudgetEstimator
}

// NewBudgetOptimizer は新しいBudgetOptimizerを作成する（advisorはnil可）
func NewBudgetOptimizer(advisor repository.BudgetAdvisorRepository, estimator *BudgetEstimator) *BudgetOptimizer {
	if estimator == nil {
		estimator = NewBudgetEstimator()
	}
	return &BudgetOptimizer{advisor: advisor, estimator: estimator}
}

// Optimize は最適化案を返す。超過していない場合は全件維持の案を返す
func (o *BudgetOptimizer) Optimize(ctx context.Context, pois []*model.POI, check model.BudgetCheck, prefs model.TripPreferences) model.OptimizationPlan {
	if !check.IsOverBudget {
		return model.OptimizationPlan{Keep: idsOf(pois), Source: model.OptimizationSourceHeuristic}
	}

	if o.advisor != nil {
		plan, err := o.advisor.SuggestOptimization(ctx, pois, check, prefs)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ LLMによる予算最適化に失敗、ヒューリスティックにフォールバックします")
		} else if sanitized, ok := o.sanitize(plan, pois); ok {
			return sanitized
		} else {
			log.Warn().Msg("⚠️ LLMの最適化案が不正なため、ヒューリスティックにフォールバックします")
		}
	}
	return o.Heuristic(pois, check)
}

// Heuristic は費用の高い順（同額は入力順）に、置き換え、削除の順で節約額が超過額に届くまで積み上げる
func (o *BudgetOptimizer) Heuristic(pois []*model.POI, check model.BudgetCheck) model.OptimizationPlan {
	plan := model.OptimizationPlan{Source: model.OptimizationSourceHeuristic}
	if !check.IsOverBudget {
		plan.Keep = idsOf(pois)
		return plan
	}

	costs := make([]float64, len(pois))
	order := make([]int, len(pois))
	for i, p := range pois {
		costs[i] = o.estimator.EstimateCost(p)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return costs[order[a]] > costs[order[b]]
	})

	touched := make(map[int]struct{})
	savings := 0.0

	// 1. 高価な飲食店・体験を安価な代替に置き換える
	for _, idx := range order {
		if savings >= check.OverageAmount {
			break
		}
		p := pois[idx]
		suggestion, ok := replacementSuggestion(p, costs[idx])
		if !ok {
			continue
		}
		saved := costs[idx] * replacementSavingsRate
		plan.Replace = append(plan.Replace, model.Replacement{
			POIID:            p.ID,
			POIName:          p.Name,
			Suggestion:       suggestion,
			EstimatedSavings: roundCurrency(saved),
		})
		touched[idx] = struct{}{}
		savings += saved
	}

	// 2. まだ足りなければ高価なPOIを削除する（件数が十分ある場合のみ）
	remaining := len(pois)
	for _, idx := range order {
		if savings >= check.OverageAmount {
			break
		}
		if _, done := touched[idx]; done {
			continue
		}
		p := pois[idx]
		if p.Category == model.CategoryAccommodation || costs[idx] <= removableCostThreshold || remaining <= minPOIsForRemoval {
			continue
		}
		plan.Remove = append(plan.Remove, p.ID)
		touched[idx] = struct{}{}
		savings += costs[idx]
		remaining--
	}

	removed := make(map[string]struct{}, len(plan.Remove))
	for _, id := range plan.Remove {
		removed[id] = struct{}{}
	}
	for _, p := range pois {
		if _, ok := removed[p.ID]; !ok {
			plan.Keep = append(plan.Keep, p.ID)
		}
	}
	plan.ProjectedSavings = roundCurrency(savings)
	return plan
}

// sanitize はLLMの最適化案を既知のIDに限定し、全件削除になる案を拒否する
func (o *BudgetOptimizer) sanitize(plan *model.OptimizationPlan, pois []*model.POI) (model.OptimizationPlan, bool) {
	if plan == nil {
		return model.OptimizationPlan{}, false
	}
	known := make(map[string]*model.POI, len(pois))
	for _, p := range pois {
		known[p.ID] = p
	}

	result := model.OptimizationPlan{Source: model.OptimizationSourceLLM}
	removed := make(map[string]struct{})
	for _, id := range plan.Remove {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := removed[id]; dup {
			continue
		}
		removed[id] = struct{}{}
		result.Remove = append(result.Remove, id)
	}
	if len(removed) >= len(pois) {
		return model.OptimizationPlan{}, false
	}
	for _, r := range plan.Replace {
		p, ok := known[r.POIID]
		if !ok {
			continue
		}
		if _, gone := removed[r.POIID]; gone {
			continue
		}
		if r.POIName == "" {
			r.POIName = p.Name
		}
		if r.EstimatedSavings < 0 {
			r.EstimatedSavings = 0
		}
		result.Replace = append(result.Replace, r)
	}
	for _, p := range pois {
		if _, ok := removed[p.ID]; !ok {
			result.Keep = append(result.Keep, p.ID)
		}
	}

	savings := plan.ProjectedSavings
	if savings <= 0 {
		for _, id := range result.Remove {
			savings += o.estimator.EstimateCost(known[id])
		}
		for _, r := range result.Replace {
			savings += r.EstimatedSavings
		}
	}
	result.ProjectedSavings = roundCurrency(savings)
	return result, true
}

func replacementSuggestion(p *model.POI, cost float64) (string, bool) {
	switch {
	case p.Category == model.CategoryRestaurant && p.PriceLevelOr(0) >= 3:
		return fmt.Sprintf("Swap %s for a casual local eatery or street food nearby", p.Name), true
	case p.Category == model.CategoryActivity && cost > costlyActivityThreshold:
		return fmt.Sprintf("Look for a cheaper alternative to %s, such as a self-guided visit", p.Name), true
	}
	return "", false
}

func idsOf(pois []*model.POI) []string {
	ids := make([]string, 0, len(pois))
	for _, p := range pois {
		ids = append(ids, p.ID)
	}
	return ids
}

func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
