package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/service"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "LOG_LEVEL", "LLM_PROVIDER", "LLM_TIMEOUT", "GEMINI_API_KEY", "GEMINI_MODEL",
		"ANTHROPIC_API_KEY", "CLAUDE_MODEL", "GOOGLE_MAPS_API_KEY", "PLACES_RPS", "DATABASE_URL",
		"SESSION_TTL", "SESSION_SWEEP_SCHEDULE", "PIPELINE_TIMEOUT", "MAX_CONCURRENT_ANALYSES",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("ファイルがなければデフォルト値", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, LLMProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, time.Hour, cfg.SessionTTL())
		assert.Equal(t, 30*time.Second, cfg.LLMTimeout())

		settings, err := cfg.Planner.Settings()
		require.NoError(t, err)
		assert.Equal(t, service.DefaultPlannerSettings(), settings)
	})

	t.Run("設定ファイルの値を読み込む", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
[server]
port = "9090"

[planner]
cluster_radius_km = 1.5
lunch_window = "11:30-12:30"
dinner_window = "17:00-18:00"

[session]
ttl = "30m"
`)
		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
		settings, err := cfg.Planner.Settings()
		require.NoError(t, err)
		assert.Equal(t, 1.5, settings.ClusterRadiusKm)
		assert.Equal(t, service.MealWindow{From: 690, To: 750}, settings.LunchWindow)
		assert.Equal(t, 15.0, settings.UrbanSpeedKmh)
	})

	t.Run("環境変数は設定ファイルより優先", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "7070")
		t.Setenv("LLM_PROVIDER", "CLAUDE")
		t.Setenv("PLACES_RPS", "2.5")
		t.Setenv("MAX_CONCURRENT_ANALYSES", "8")
		path := writeConfig(t, "[server]\nport = \"9090\"\n")

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, LLMProviderClaude, cfg.LLM.Provider)
		assert.Equal(t, 2.5, cfg.Places.RequestsPerSec)
		assert.Equal(t, 8, cfg.Pipeline.MaxConcurrentAnalyses)
	})

	t.Run("不正なLLMプロバイダはエラー", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_PROVIDER", "gpt")
		_, err := LoadFromFile("")
		assert.Error(t, err)
	})

	t.Run("不正な食事時間帯はエラー", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "[planner]\nlunch_window = \"12:00-11:00\"\n")
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("壊れたTOMLはエラー", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "[server\nport = ")
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}
