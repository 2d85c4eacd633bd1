package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
)

// PlanInput は旅程組み立ての入力
type PlanInput struct {
	Destination string
	NumDays     int
	Preferences model.TripPreferences
	POIs        []*model.POI
}

// ItineraryPlanner はクラスタリングから日割り・時刻割り当て・予算調整までを担う単一のサービス
type ItineraryPlanner interface {
	// BuildSchedule はクラスタリング → クラスタ内ルーティング → クラスタ順序付け → 日割り → 時刻割り当てを行い、費用内訳を付与する
	BuildSchedule(input PlanInput) (*model.Itinerary, error)
	// ApplyBudget は予算超過時に最適化案を適用し、必要なら組み直した旅程を返す
	ApplyBudget(ctx context.Context, input PlanInput, itinerary *model.Itinerary) (*model.Itinerary, error)
	// Plan は BuildSchedule と ApplyBudget を続けて実行する
	Plan(ctx context.Context, input PlanInput) (*model.Itinerary, error)
	// ResolveNumDays は入力から旅行日数を決める
	ResolveNumDays(input PlanInput) (int, error)
}

type itineraryPlanner struct {
	settings    PlannerSettings
	clusterer   *ProximityClusterer
	routeHelper *RouteBuilderHelper
	scheduler   *TimeScheduler
	estimator   *BudgetEstimator
	optimizer   *BudgetOptimizer
	now         func() time.Time
}

// NewItineraryPlanner は新しいItineraryPlannerを作成する（optimizerがnilの場合はヒューリスティックのみ）
func NewItineraryPlanner(settings PlannerSettings, optimizer *BudgetOptimizer) ItineraryPlanner {
	return newItineraryPlanner(settings, optimizer, time.Now)
}

// NewItineraryPlannerWithClock は日付計算の基準時刻を差し替えたItineraryPlannerを作成する
func NewItineraryPlannerWithClock(settings PlannerSettings, optimizer *BudgetOptimizer, now func() time.Time) ItineraryPlanner {
	return newItineraryPlanner(settings, optimizer, now)
}

func newItineraryPlanner(settings PlannerSettings, optimizer *BudgetOptimizer, now func() time.Time) *itineraryPlanner {
	settings = settings.normalized()
	estimator := NewBudgetEstimator()
	if optimizer == nil {
		optimizer = NewBudgetOptimizer(nil, estimator)
	}
	return &itineraryPlanner{
		settings:    settings,
		clusterer:   NewProximityClusterer(settings.ClusterRadiusKm),
		routeHelper: NewRouteBuilderHelper(),
		scheduler:   NewTimeScheduler(settings).WithClock(now),
		estimator:   estimator,
		optimizer:   optimizer,
		now:         now,
	}
}

func (p *itineraryPlanner) ResolveNumDays(input PlanInput) (int, error) {
	days, ok, err := input.Preferences.TripDays()
	if err != nil {
		return 0, err
	}
	if ok {
		return days, nil
	}
	if input.NumDays > 0 {
		return input.NumDays, nil
	}
	return DefaultNumDays(len(input.POIs), p.settings.POIsPerDay), nil
}

func (p *itineraryPlanner) BuildSchedule(input PlanInput) (*model.Itinerary, error) {
	if len(input.POIs) == 0 {
		return nil, model.ErrNoUsableLocations
	}
	numDays, err := p.ResolveNumDays(input)
	if err != nil {
		return nil, fmt.Errorf("旅行日数の決定に失敗: %w", err)
	}
	prefs := input.Preferences.WithDefaults()

	pois := p.estimator.ApplyCostEstimates(input.POIs, prefs.Currency)
	var located, unlocated []*model.POI
	for _, poi := range pois {
		if poi.HasCoordinates() {
			located = append(located, poi)
		} else {
			unlocated = append(unlocated, poi)
		}
	}

	// 1. 近接クラスタリングとクラスタ内ルーティング
	clusters := p.clusterer.Cluster(located)
	for i := range clusters {
		clusters[i].Members = p.routeHelper.RouteWithinCluster(clusters[i].Members)
	}

	// 2. クラスタの訪問順を決めて1本の順序に展開
	clusters = p.routeHelper.SequenceClusters(clusters)
	ordered := p.routeHelper.Flatten(clusters)

	// 3. 日割り（位置情報のないPOIは件数の少ない日に追加）
	dayChunks := AllocateDays(ordered, numDays)
	dayChunks = PlaceUnlocated(dayChunks, unlocated, numDays)

	// 4. 日ごとの時刻割り当て
	itinerary := &model.Itinerary{
		Destination: input.Destination,
		Clusters:    clusters,
		Warnings:    []string{},
		Suggestions: []string{},
		GeneratedAt: p.now(),
	}
	for i, chunk := range dayChunks {
		day := p.scheduler.BuildDaySchedule(chunk, i, prefs)
		if warning, ok := p.scheduler.DayEndWarning(day, prefs); ok {
			itinerary.Warnings = append(itinerary.Warnings, warning)
		}
		itinerary.Days = append(itinerary.Days, day)
	}
	if len(unlocated) > 0 {
		itinerary.Warnings = append(itinerary.Warnings,
			fmt.Sprintf("%d location(s) could not be mapped and were added without route optimization", len(unlocated)))
	}

	// 5. 費用内訳
	itinerary.Budget = p.estimator.EstimateBudget(pois, numDays, prefs.Currency)
	itinerary.BudgetCheck = p.estimator.CheckBudget(itinerary.Budget, prefs)

	log.Info().Int("pois", len(pois)).Int("clusters", len(clusters)).Int("days", len(itinerary.Days)).
		Msg("🗺️ スケジュール組み立て完了")
	return itinerary, nil
}

func (p *itineraryPlanner) ApplyBudget(ctx context.Context, input PlanInput, itinerary *model.Itinerary) (*model.Itinerary, error) {
	if itinerary == nil {
		return nil, fmt.Errorf("旅程がありません")
	}
	check := itinerary.BudgetCheck
	if !check.IsOverBudget {
		return itinerary, nil
	}

	prefs := input.Preferences.WithDefaults()
	plan := p.optimizer.Optimize(ctx, input.POIs, check, prefs)

	result := itinerary
	if len(plan.Remove) > 0 {
		removeSet := make(map[string]struct{}, len(plan.Remove))
		for _, id := range plan.Remove {
			removeSet[id] = struct{}{}
		}
		var kept []*model.POI
		for _, poi := range input.POIs {
			if _, ok := removeSet[poi.ID]; !ok {
				kept = append(kept, poi)
			}
		}
		numDays, err := p.ResolveNumDays(input)
		if err != nil {
			return nil, fmt.Errorf("旅行日数の決定に失敗: %w", err)
		}
		rebuilt, err := p.BuildSchedule(PlanInput{
			Destination: input.Destination,
			NumDays:     numDays,
			Preferences: input.Preferences,
			POIs:        kept,
		})
		if err != nil {
			return nil, fmt.Errorf("予算調整後の再計画に失敗: %w", err)
		}
		rebuilt.Suggestions = append(rebuilt.Suggestions,
			fmt.Sprintf("Removed %d location(s) to bring the trip closer to your budget", len(plan.Remove)))
		result = rebuilt
	}

	for _, r := range plan.Replace {
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("%s (saves about %.0f %s)", r.Suggestion, r.EstimatedSavings, prefs.Currency))
	}
	if result.BudgetCheck.IsOverBudget {
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("Estimated total %.0f %s exceeds your budget of %.0f %s by %.0f %s",
				result.BudgetCheck.EstimatedTotal, prefs.Currency, result.BudgetCheck.BudgetLimit, prefs.Currency,
				result.BudgetCheck.OverageAmount, prefs.Currency))
	}
	result.Optimization = &plan

	log.Info().Str("source", string(plan.Source)).Int("replace", len(plan.Replace)).Int("remove", len(plan.Remove)).
		Msg("💰 予算最適化を適用")
	return result, nil
}

func (p *itineraryPlanner) Plan(ctx context.Context, input PlanInput) (*model.Itinerary, error) {
	itinerary, err := p.BuildSchedule(input)
	if err != nil {
		return nil, err
	}
	return p.ApplyBudget(ctx, input, itinerary)
}
