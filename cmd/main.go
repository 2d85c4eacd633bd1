package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"Itinerary-App/internal/config"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
	"Itinerary-App/internal/export"
	"Itinerary-App/internal/handler"
	"Itinerary-App/internal/infrastructure/ai"
	"Itinerary-App/internal/infrastructure/database"
	"Itinerary-App/internal/infrastructure/maps"
	repoImpl "Itinerary-App/internal/repository"
	"Itinerary-App/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}
	config.SetupLogger(cfg.Logging.Level)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// LLM・画像解析
	chat, vision := buildAIClients(ctx, cfg)

	// 場所カタログ（DB）と Google Places
	healthCheckers := map[string]handler.HealthChecker{}
	var catalog, places repository.POIsRepository
	if cfg.Database.URL != "" {
		pg, err := database.NewPostgreSQLClient(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ 場所カタログDBに接続できません。カタログなしで起動します")
		} else {
			defer pg.Close()
			catalog = repoImpl.NewPostgresPlacesRepository(pg)
			healthCheckers["database"] = pg
			log.Info().Msg("✅ 場所カタログDBに接続しました")
		}
	}
	if cfg.Places.APIKey != "" {
		places = maps.NewGooglePlacesProvider(maps.PlacesOptions{
			APIKey:         cfg.Places.APIKey,
			RequestsPerSec: cfg.Places.RequestsPerSec,
			Burst:          cfg.Places.Burst,
			Timeout:        cfg.PlacesTimeout(),
		})
	} else {
		log.Warn().Msg("⚠️ GOOGLE_MAPS_API_KEYが未設定のため、ロケーションは名前から推定します")
	}

	// ドメインサービス
	settings, err := cfg.Planner.Settings()
	if err != nil {
		log.Fatal().Err(err).Msg("プランナー設定が不正です")
	}
	optimizer := service.NewBudgetOptimizer(ai.NewLLMBudgetAdvisorRepository(chat), service.NewBudgetEstimator())
	planner := service.NewItineraryPlanner(settings, optimizer)

	// セッションと期限切れの削除
	sessions := repoImpl.NewMemorySessionRepository()
	sweeper := repoImpl.NewSessionSweeper(sessions, cfg.SessionTTL())
	if err := sweeper.Start(cfg.Session.SweepSchedule); err != nil {
		log.Fatal().Err(err).Msg("セッション削除スケジューラの開始に失敗")
	}
	defer sweeper.Stop()

	itineraryUseCase := usecase.NewItineraryUseCase(planner, sessions, usecase.Collaborators{
		Vision: vision,
		Places: repoImpl.NewCatalogFirstPOIsRepository(catalog, places),
		Vibe:   ai.NewLLMVibeFilterRepository(chat),
		Story:  ai.NewLLMStoryRepository(chat),
	}, usecase.Options{
		MaxConcurrent: cfg.Pipeline.MaxConcurrentAnalyses,
		Timeout:       cfg.PipelineTimeout(),
	})

	router := handler.NewRouter(
		handler.NewItineraryHandler(itineraryUseCase, export.NewExporter(), handler.UploadLimits{
			MaxScreenshots: cfg.Pipeline.MaxScreenshots,
			MaxUploadBytes: int64(cfg.Pipeline.MaxUploadMB) << 20,
		}),
		handler.NewProgressStreamHandler(itineraryUseCase),
		handler.NewHealthHandler("itinerary-app", healthCheckers),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("🚀 サーバーを起動します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("サーバーの起動に失敗")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 シャットダウンを開始します")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ サーバーの停止に失敗")
	}
	itineraryUseCase.Wait()
	log.Info().Msg("👋 シャットダウン完了")
}

// buildAIClients は設定に応じたチャットクライアントと画像解析リポジトリを作成する
// APIキーがない場合はnilを返し、各処理はルールベースのフォールバックで動く
func buildAIClients(ctx context.Context, cfg *config.Config) (repository.ChatRepository, repository.VisionRepository) {
	var (
		chat   repository.ChatRepository
		vision repository.VisionRepository
	)

	if cfg.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, ai.GeminiOptions{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			VisionModel: cfg.Gemini.VisionModel,
			Temperature: cfg.Gemini.Temperature,
			Timeout:     cfg.LLMTimeout(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Geminiクライアントの初期化に失敗")
		} else {
			vision = ai.NewGeminiVisionRepository(gemini)
			if cfg.LLM.Provider == config.LLMProviderGemini {
				chat = gemini
			}
		}
	} else {
		log.Warn().Msg("⚠️ GEMINI_API_KEYが未設定のため、画像解析はファイル名から推定します")
	}

	if cfg.LLM.Provider == config.LLMProviderClaude {
		claude, err := ai.NewClaudeClient(ai.ClaudeOptions{
			APIKey:      cfg.Claude.APIKey,
			Model:       cfg.Claude.Model,
			MaxTokens:   cfg.Claude.MaxTokens,
			Temperature: cfg.Claude.Temperature,
			Timeout:     cfg.LLMTimeout(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Claudeクライアントの初期化に失敗")
		} else {
			chat = claude
		}
	}

	if chat == nil {
		log.Warn().Msg("⚠️ LLMが利用できないため、定型文とルールベースの判定を使用します")
	}
	return chat, vision
}
