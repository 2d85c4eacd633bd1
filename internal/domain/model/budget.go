package model

// BudgetBreakdown カテゴリ別の費用内訳
type BudgetBreakdown struct {
	Food          float64 `json:"food"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
	Accommodation float64 `json:"accommodation"`
	Misc          float64 `json:"misc"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency,omitempty"`
	NumDays       int     `json:"num_days"`
}

// BudgetCheck 予算超過の判定結果
type BudgetCheck struct {
	IsOverBudget   bool    `json:"is_over_budget"`
	OverageAmount  float64 `json:"overage_amount"`
	BudgetLimit    float64 `json:"budget_limit"`
	EstimatedTotal float64 `json:"estimated_total"`
}

// Replacement より安価な代替を検討すべきPOI
type Replacement struct {
	POIID            string  `json:"poi_id"`
	POIName          string  `json:"poi_name"`
	Suggestion       string  `json:"suggestion"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

// OptimizationSource 予算最適化案の生成元
type OptimizationSource string

const (
	OptimizationSourceLLM       OptimizationSource = "llm"
	OptimizationSourceHeuristic OptimizationSource = "heuristic"
)

// OptimizationPlan 予算最適化案（維持・置換・削除）
type OptimizationPlan struct {
	Keep             []string           `json:"keep"`
	Replace          []Replacement      `json:"replace"`
	Remove           []string           `json:"remove"`
	ProjectedSavings float64            `json:"projected_savings"`
	Source           OptimizationSource `json:"source"`
}
