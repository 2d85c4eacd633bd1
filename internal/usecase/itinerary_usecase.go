package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/samber/lo"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
	"Itinerary-App/internal/domain/strategy"
	repoImpl "Itinerary-App/internal/repository"
)

// ItineraryUseCase はスクリーンショットから旅程を生成するパイプライン
type ItineraryUseCase interface {
	// Start はセッションを作成し、バックグラウンドでパイプラインを実行する
	Start(ctx context.Context, req *model.ItineraryRequest) (*model.Session, error)
	// Generate はパイプラインを同期実行し、進捗をreporterに通知する（reporterはnil可）
	Generate(ctx context.Context, req *model.ItineraryRequest, reporter repository.ProgressReporter) (*model.Itinerary, error)
	// Plan は位置情報付きのPOIから旅程を同期で組み立てる
	Plan(ctx context.Context, req *model.PlanRequest) (*model.Itinerary, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// GetResult は完了したセッションの旅程を返す（実行中はErrSessionNotReady、失敗時はErrSessionFailed）
	GetResult(ctx context.Context, id string) (*model.Itinerary, error)
	Subscribe(ctx context.Context, id string) (<-chan model.ProgressEvent, func(), error)
	// Wait は実行中のパイプラインが全て終わるまで待つ
	Wait()
}

// Collaborators はパイプラインが利用する外部コラボレーター（いずれもnil可）
type Collaborators struct {
	Vision repository.VisionRepository
	Places repository.POIsRepository
	Vibe   repository.VibeFilterRepository
	Story  repository.StoryGenerationRepository
}

// Options はパイプラインの実行設定
type Options struct {
	MaxConcurrent int
	Timeout       time.Duration
}

type itineraryUseCaseImpl struct {
	planner  service.ItineraryPlanner
	sessions repository.SessionRepository
	collab   Collaborators
	executor *service.ParallelExecutor
	timeout  time.Duration
	running  sync.WaitGroup
}

// NewItineraryUseCase は新しいItineraryUseCaseインスタンスを作成
func NewItineraryUseCase(
	planner service.ItineraryPlanner,
	sessions repository.SessionRepository,
	collab Collaborators,
	opts Options,
) ItineraryUseCase {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}
	return &itineraryUseCaseImpl{
		planner:  planner,
		sessions: sessions,
		collab:   collab,
		executor: service.NewParallelExecutor(opts.MaxConcurrent),
		timeout:  opts.Timeout,
	}
}

func (u *itineraryUseCaseImpl) Start(ctx context.Context, req *model.ItineraryRequest) (*model.Session, error) {
	session, err := u.sessions.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("セッションの作成に失敗: %w", err)
	}
	log.Info().Str("session_id", session.ID).Int("screenshots", len(req.Screenshots)).
		Str("destination", req.Destination).Msg("🚀 旅程生成を受け付けました")

	u.running.Add(1)
	go func() {
		defer u.running.Done()
		// リクエストのcontextはレスポンス返却で終わるため切り離す
		runCtx := context.Background()
		reporter := repoImpl.NewSessionProgressReporter(u.sessions, session.ID)

		itinerary, err := u.Generate(runCtx, req, reporter)
		if err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("❌ 旅程生成に失敗")
			if ferr := u.sessions.Fail(runCtx, session.ID, failureMessage(err)); ferr != nil {
				log.Warn().Err(ferr).Str("session_id", session.ID).Msg("⚠️ 失敗状態の保存に失敗")
			}
			return
		}
		itinerary.ID = session.ID
		if cerr := u.sessions.Complete(runCtx, session.ID, itinerary); cerr != nil {
			log.Warn().Err(cerr).Str("session_id", session.ID).Msg("⚠️ 結果の保存に失敗")
		}
	}()
	return session, nil
}

func (u *itineraryUseCaseImpl) Generate(ctx context.Context, req *model.ItineraryRequest, reporter repository.ProgressReporter) (*model.Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	cache := model.NewConversationCache()
	defer cache.Reset()
	ctx = model.WithConversationCache(ctx, cache)

	progress := newProgressTracker(reporter)
	start := time.Now()

	// 1. スクリーンショット解析
	progress.report(ctx, model.StageAnalyzing, 5, "Reading your screenshots", string(model.AgentVision))
	vision := u.analyzeScreenshots(ctx, req.Screenshots)
	names := lo.Uniq(append(vision.names, cleanNames(req.ManualLocations)...))
	progress.report(ctx, model.StageAnalyzing, 25, fmt.Sprintf("Found %d candidate location(s)", len(names)), string(model.AgentVision))

	// 2. ロケーション検証
	progress.report(ctx, model.StageValidating, 30, "Checking locations", "places")
	if len(names) == 0 {
		return nil, model.ErrNoUsableLocations
	}
	validation := u.validate(ctx, names, req.Destination)
	if len(validation.VerifiedPOIs) == 0 {
		return nil, model.ErrNoUsableLocations
	}
	progress.report(ctx, model.StageValidating, 40, fmt.Sprintf("Verified %d location(s)", len(validation.VerifiedPOIs)), "places")

	// 3. POI情報の補完
	progress.report(ctx, model.StageEnriching, 45, "Looking up addresses and opening hours", "places")
	pois := u.enrich(ctx, validation.VerifiedPOIs)
	progress.report(ctx, model.StageEnriching, 55, "Location details ready", "places")

	// 4. 雰囲気フィルタ
	progress.report(ctx, model.StageFiltering, 58, "Matching spots to your travel style", string(model.AgentVibe))
	vibe := u.classify(ctx, pois, vision.hashtags, req.Preferences)
	filtered := service.ApplyVibeResult(pois, vibe)
	progress.report(ctx, model.StageFiltering, 65, fmt.Sprintf("%d spot(s) match your style", len(filtered)), string(model.AgentVibe))

	// 5. スケジュール組み立て
	progress.report(ctx, model.StagePlanning, 70, "Grouping nearby spots and building your days", "planner")
	input := service.PlanInput{
		Destination: req.Destination,
		NumDays:     req.NumDays,
		Preferences: req.Preferences,
		POIs:        filtered,
	}
	itinerary, err := u.planner.BuildSchedule(input)
	if err != nil {
		return nil, fmt.Errorf("スケジュールの組み立てに失敗: %w", err)
	}
	progress.report(ctx, model.StagePlanning, 80, fmt.Sprintf("Planned %d day(s)", len(itinerary.Days)), "planner")

	// 6. 予算調整
	progress.report(ctx, model.StageBudgeting, 85, "Checking your budget", string(model.AgentBudget))
	itinerary, err = u.planner.ApplyBudget(ctx, input, itinerary)
	if err != nil {
		return nil, fmt.Errorf("予算調整に失敗: %w", err)
	}
	progress.report(ctx, model.StageBudgeting, 90, "Budget checked", string(model.AgentBudget))

	// 7. タイトル・紹介文
	progress.report(ctx, model.StageNarrating, 92, "Writing your itinerary summary", string(model.AgentNarrative))
	u.narrate(ctx, itinerary, req.Preferences)

	itinerary.Rejected = validation.Rejected
	itinerary.Hashtags = vision.hashtags
	itinerary.Platforms = vision.platforms
	for _, p := range pois {
		if reason, ok := vibe.Reasons[p.ID]; ok && vibe.IsIncompatible(p.ID) && len(filtered) < len(pois) {
			itinerary.Suggestions = append(itinerary.Suggestions, fmt.Sprintf("Skipped %s: %s", p.Name, reason))
		}
	}
	if itinerary.ID == "" {
		itinerary.ID = uuid.NewString()
	}

	log.Info().Str("destination", req.Destination).Int("days", len(itinerary.Days)).
		Int("slots", itinerary.TotalSlots()).Dur("elapsed", time.Since(start)).Msg("🎉 旅程生成完了")
	return itinerary, nil
}

func (u *itineraryUseCaseImpl) Plan(ctx context.Context, req *model.PlanRequest) (*model.Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	ctx = model.WithConversationCache(ctx, model.NewConversationCache())

	itinerary, err := u.planner.Plan(ctx, service.PlanInput{
		Destination: req.Destination,
		NumDays:     req.NumDays,
		Preferences: req.Preferences,
		POIs:        req.POIs,
	})
	if err != nil {
		return nil, err
	}
	u.narrate(ctx, itinerary, req.Preferences)
	itinerary.ID = uuid.NewString()
	return itinerary, nil
}

func (u *itineraryUseCaseImpl) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return u.sessions.Get(ctx, id)
}

func (u *itineraryUseCaseImpl) GetResult(ctx context.Context, id string) (*model.Itinerary, error) {
	session, err := u.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch session.Status.Stage {
	case model.StageCompleted:
		return session.Result, nil
	case model.StageFailed:
		return nil, fmt.Errorf("%w: %s", model.ErrSessionFailed, session.Error)
	default:
		return nil, model.ErrSessionNotReady
	}
}

func (u *itineraryUseCaseImpl) Subscribe(ctx context.Context, id string) (<-chan model.ProgressEvent, func(), error) {
	return u.sessions.Subscribe(ctx, id)
}

func (u *itineraryUseCaseImpl) Wait() {
	u.running.Wait()
}

// visionSummary は全スクリーンショットの解析結果の和集合
type visionSummary struct {
	names     []string
	hashtags  []string
	platforms []string
}

// analyzeScreenshots は画像を並行解析し、失敗したものはファイル名から推定する
func (u *itineraryUseCaseImpl) analyzeScreenshots(ctx context.Context, screenshots []model.ScreenshotInput) visionSummary {
	results := service.RunParallel(ctx, u.executor, "screenshot-analysis", screenshots,
		func(ctx context.Context, shot model.ScreenshotInput) (*model.VisionResult, error) {
			if u.collab.Vision == nil {
				return nil, errors.New("画像解析コラボレーターが設定されていません")
			}
			return u.collab.Vision.Analyze(ctx, shot)
		})

	var summary visionSummary
	for _, r := range results {
		result := r.Value
		if r.Err != nil || result == nil {
			fileName := screenshots[r.Index].FileName
			log.Warn().Err(r.Err).Str("file", fileName).Msg("⚠️ 画像解析に失敗、ファイル名から推定します")
			result = service.EstimateVisionFromFileName(fileName)
		}
		summary.names = append(summary.names, result.LocationNames...)
		summary.hashtags = append(summary.hashtags, result.Hashtags...)
		if result.Platform != "" {
			summary.platforms = append(summary.platforms, result.Platform)
		}
	}
	summary.names = lo.Uniq(cleanNames(summary.names))
	summary.hashtags = lo.Uniq(summary.hashtags)
	summary.platforms = lo.Uniq(summary.platforms)
	return summary
}

func (u *itineraryUseCaseImpl) validate(ctx context.Context, names []string, destination string) *model.ValidationResult {
	if u.collab.Places == nil {
		return service.EstimatePOIs(names)
	}
	result, err := u.collab.Places.ValidateLocations(ctx, names, destination)
	if err != nil || result == nil {
		log.Warn().Err(err).Int("count", len(names)).Msg("⚠️ ロケーション検証に失敗、名前から推定します")
		return service.EstimatePOIs(names)
	}
	return result
}

// enrich はPOIを並行補完する。失敗したPOIは元の値のまま使う
func (u *itineraryUseCaseImpl) enrich(ctx context.Context, pois []*model.POI) []*model.POI {
	if u.collab.Places == nil {
		return pois
	}
	results := service.RunParallel(ctx, u.executor, "poi-enrichment", pois,
		func(ctx context.Context, poi *model.POI) (*model.POI, error) {
			if poi.HasCoordinates() && poi.Address != "" {
				return poi, nil
			}
			return u.collab.Places.EnrichPOI(ctx, poi)
		})

	enriched := make([]*model.POI, len(pois))
	failed := 0
	for _, r := range results {
		if r.Err != nil || r.Value == nil {
			failed++
			enriched[r.Index] = pois[r.Index]
			continue
		}
		enriched[r.Index] = r.Value
	}
	if failed > 0 {
		log.Warn().Int("failed", failed).Msg("⚠️ 一部のPOIの補完に失敗しました")
	}
	return enriched
}

func (u *itineraryUseCaseImpl) classify(ctx context.Context, pois []*model.POI, hashtags []string, prefs model.TripPreferences) *model.VibeResult {
	local := func() *model.VibeResult {
		return service.ClassifyVibeLocally(pois, prefs, strategy.DefaultStrategies())
	}
	if u.collab.Vibe == nil {
		return local()
	}
	result, err := u.collab.Vibe.Classify(ctx, pois, hashtags, prefs)
	if err != nil || result == nil {
		log.Warn().Err(err).Msg("⚠️ 雰囲気フィルタに失敗、ルールで判定します")
		return local()
	}
	return result
}

// narrate はタイトル・紹介文・日ごとの要約を旅程に書き込む
func (u *itineraryUseCaseImpl) narrate(ctx context.Context, itinerary *model.Itinerary, prefs model.TripPreferences) {
	var narrative *model.Narrative
	if u.collab.Story != nil {
		n, err := u.collab.Story.GenerateNarrative(ctx, itinerary, prefs)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ 紹介文の生成に失敗、定型文を使用します")
		}
		narrative = n
	}
	if narrative == nil {
		narrative = service.FallbackNarrative(itinerary)
	}

	itinerary.Title = narrative.Title
	itinerary.Summary = narrative.Summary
	for i := range itinerary.Days {
		if i < len(narrative.DaySummaries) {
			itinerary.Days[i].Summary = narrative.DaySummaries[i]
		}
	}
}

func cleanNames(names []string) []string {
	return lo.FilterMap(names, func(n string, _ int) (string, bool) {
		n = strings.TrimSpace(n)
		return n, n != ""
	})
}

// failureMessage はユーザーに表示する失敗メッセージを返す
func failureMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNoUsableLocations):
		return "No usable locations were found. Try clearer screenshots or add location names manually."
	case errors.Is(err, context.DeadlineExceeded):
		return "Itinerary generation timed out. Please try again."
	default:
		return "Itinerary generation failed. Please try again."
	}
}

// progressTracker は進捗が後戻りしないように通知する
type progressTracker struct {
	reporter repository.ProgressReporter
	last     int
}

func newProgressTracker(reporter repository.ProgressReporter) *progressTracker {
	return &progressTracker{reporter: reporter}
}

func (p *progressTracker) report(ctx context.Context, stage model.Stage, progress int, message, agent string) {
	if progress < p.last {
		progress = p.last
	}
	p.last = progress
	log.Debug().Str("stage", string(stage)).Int("progress", progress).Msg(message)
	if p.reporter == nil {
		return
	}
	p.reporter.Report(ctx, model.ProgressEvent{
		Stage:        stage,
		Progress:     progress,
		Message:      message,
		CurrentAgent: agent,
	})
}
