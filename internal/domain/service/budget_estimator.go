package service

import (
	"math"

	"github.com/samber/lo"

	"Itinerary-App/internal/domain/model"
)

// BudgetEstimator はPOI集合から費用内訳を算出し、予算超過を判定する
type BudgetEstimator struct{}

// NewBudgetEstimator は新しいBudgetEstimatorを作成する
func NewBudgetEstimator() *BudgetEstimator {
	return &BudgetEstimator{}
}

// EstimateCost は1件あたりの費用を返す
// estimatedCost があればそれを使い、なければ 基準費用 × (価格帯 or 2) / 2 とする
func (e *BudgetEstimator) EstimateCost(poi *model.POI) float64 {
	if poi.EstimatedCost != nil {
		return *poi.EstimatedCost
	}
	return BaseCost(poi.Category) * float64(poi.PriceLevelOr(2)) / 2
}

// ApplyCostEstimates は費用未設定のPOIに見積もり費用と通貨を付与したコピーを返す
func (e *BudgetEstimator) ApplyCostEstimates(pois []*model.POI, currency string) []*model.POI {
	return lo.Map(pois, func(p *model.POI, _ int) *model.POI {
		c := p.Clone()
		if c.EstimatedCost == nil {
			c.EstimatedCost = model.Float64Ptr(e.EstimateCost(p))
		}
		if c.Currency == "" {
			c.Currency = currency
		}
		return c
	})
}

// EstimateBudget はカテゴリ別の費用内訳を算出する
// 交通費は体験費の15%、雑費には(食費+体験費)の10%のバッファを加える
func (e *BudgetEstimator) EstimateBudget(pois []*model.POI, numDays int, currency string) model.BudgetBreakdown {
	if numDays < 1 {
		numDays = 1
	}
	b := model.BudgetBreakdown{Currency: currency, NumDays: numDays}

	for _, p := range pois {
		cost := e.EstimateCost(p)
		switch p.Category {
		case model.CategoryRestaurant, model.CategoryCafe:
			b.Food += cost
		case model.CategoryAttraction, model.CategoryActivity, model.CategoryViewpoint,
			model.CategoryMarket, model.CategoryTemple:
			b.Activities += cost
		case model.CategoryAccommodation:
			b.Accommodation += cost * float64(numDays)
		default:
			b.Misc += cost
		}
	}

	b.Transport = math.Round(0.15 * b.Activities)
	b.Misc += math.Round(0.10 * (b.Food + b.Activities))
	b.Total = b.Food + b.Activities + b.Transport + b.Accommodation + b.Misc
	return b
}

// CheckBudget は合計が 日予算 × 日数 を超えているか判定する（同額は超過ではない）
func (e *BudgetEstimator) CheckBudget(b model.BudgetBreakdown, prefs model.TripPreferences) model.BudgetCheck {
	days := b.NumDays
	if days < 1 {
		days = 1
	}
	limit := prefs.DailyBudget * float64(days)
	check := model.BudgetCheck{
		BudgetLimit:    limit,
		EstimatedTotal: b.Total,
	}
	if b.Total > limit {
		check.IsOverBudget = true
		check.OverageAmount = b.Total - limit
	}
	return check
}
