package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/service"
)

// Config はアプリケーション全体の設定
// 優先順位: 環境変数 > 設定ファイル > デフォルト値
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	LLM      LLMConfig      `toml:"llm"`
	Gemini   GeminiConfig   `toml:"gemini"`
	Claude   ClaudeConfig   `toml:"claude"`
	Places   PlacesConfig   `toml:"places"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Planner  PlannerConfig  `toml:"planner"`
}

type ServerConfig struct {
	Port    string `toml:"port"`
	GinMode string `toml:"gin_mode"` // "debug" or "release"
}

type LoggingConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// LLMProvider 利用するLLMの提供元
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

type LLMConfig struct {
	Provider LLMProvider `toml:"provider"`
	Timeout  string      `toml:"timeout"` // 1回の呼び出しのタイムアウト（例: "30s"）
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	VisionModel string  `toml:"vision_model"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

type PlacesConfig struct {
	APIKey         string  `toml:"api_key"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
	Burst          int     `toml:"burst"`
	Timeout        string  `toml:"timeout"`
}

type DatabaseConfig struct {
	URL string `toml:"url"` // 空の場合は場所カタログDBを使わない
}

type SessionConfig struct {
	TTL           string `toml:"ttl"`
	SweepSchedule string `toml:"sweep_schedule"` // cron形式（例: "@every 10m"）
}

type PipelineConfig struct {
	Timeout               string `toml:"timeout"`
	MaxConcurrentAnalyses int    `toml:"max_concurrent_analyses"`
	MaxUploadMB           int    `toml:"max_upload_mb"`
	MaxScreenshots        int    `toml:"max_screenshots"`
}

// PlannerConfig 旅程組み立てのヒューリスティクス
type PlannerConfig struct {
	ClusterRadiusKm      float64 `toml:"cluster_radius_km"`
	UrbanSpeedKmh        float64 `toml:"urban_speed_kmh"`
	MinTravelMinutes     int     `toml:"min_travel_minutes"`
	UnknownTravelMinutes int     `toml:"unknown_travel_minutes"`
	RestBreakMinutes     int     `toml:"rest_break_minutes"`
	RestBreakEvery       int     `toml:"rest_break_every"`
	POIsPerDay           int     `toml:"pois_per_day"`
	LunchWindow          string  `toml:"lunch_window"`  // "11:00-12:00"
	DinnerWindow         string  `toml:"dinner_window"` // "17:00-18:00"
}

// NewDefaultConfig はデフォルト値の設定を返す
func NewDefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", GinMode: "debug"},
		Logging: LoggingConfig{Level: "info"},
		LLM:     LLMConfig{Provider: LLMProviderGemini, Timeout: "30s"},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			VisionModel: "gemini-2.5-flash",
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   2048,
			Temperature: 0.4,
		},
		Places:  PlacesConfig{RequestsPerSec: 5, Burst: 2, Timeout: "10s"},
		Session: SessionConfig{TTL: "1h", SweepSchedule: "@every 10m"},
		Pipeline: PipelineConfig{
			Timeout:               "3m",
			MaxConcurrentAnalyses: 4,
			MaxUploadMB:           32,
			MaxScreenshots:        10,
		},
		Planner: PlannerConfig{
			ClusterRadiusKm:      3.0,
			UrbanSpeedKmh:        15.0,
			MinTravelMinutes:     10,
			UnknownTravelMinutes: 20,
			RestBreakMinutes:     20,
			RestBreakEvery:       3,
			POIsPerDay:           5,
			LunchWindow:          "11:00-12:00",
			DinnerWindow:         "17:00-18:00",
		},
	}
}

// Load は .env・設定ファイル・環境変数の順に読み込んだ設定を返す
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .envファイルが見つかりません。環境変数を直接使用します")
	}
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.toml"
	}
	return LoadFromFile(path)
}

// LoadFromFile は指定ファイル（存在しなければスキップ）と環境変数から設定を読み込む
func LoadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("設定ファイルがないためデフォルト値を使用します")
		case err != nil:
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides は環境変数で設定を上書きする
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.GinMode, "GIN_MODE")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = LLMProvider(strings.ToLower(v))
	}
	setString(&cfg.LLM.Timeout, "LLM_TIMEOUT")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")
	setString(&cfg.Claude.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Claude.Model, "CLAUDE_MODEL")
	setString(&cfg.Places.APIKey, "GOOGLE_MAPS_API_KEY")
	if v := os.Getenv("PLACES_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Places.RequestsPerSec = rps
		}
	}
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Session.TTL, "SESSION_TTL")
	setString(&cfg.Session.SweepSchedule, "SESSION_SWEEP_SCHEDULE")
	setString(&cfg.Pipeline.Timeout, "PIPELINE_TIMEOUT")
	if v := os.Getenv("MAX_CONCURRENT_ANALYSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.MaxConcurrentAnalyses = n
		}
	}
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// Validate は設定値の整合性をチェックする
func (c *Config) Validate() error {
	if c.LLM.Provider != LLMProviderGemini && c.LLM.Provider != LLMProviderClaude {
		return fmt.Errorf("LLM_PROVIDERはgeminiまたはclaudeを指定してください: %s", c.LLM.Provider)
	}
	for name, value := range map[string]string{
		"llm.timeout":      c.LLM.Timeout,
		"places.timeout":   c.Places.Timeout,
		"session.ttl":      c.Session.TTL,
		"pipeline.timeout": c.Pipeline.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%sの形式が不正です: %w", name, err)
		}
	}
	if _, err := c.Planner.Settings(); err != nil {
		return err
	}
	return nil
}

// LLMTimeout LLM呼び出しのタイムアウト
func (c *Config) LLMTimeout() time.Duration {
	return mustDuration(c.LLM.Timeout, 30*time.Second)
}

// PlacesTimeout Places API呼び出しのタイムアウト
func (c *Config) PlacesTimeout() time.Duration {
	return mustDuration(c.Places.Timeout, 10*time.Second)
}

// SessionTTL セッションの有効期限
func (c *Config) SessionTTL() time.Duration {
	return mustDuration(c.Session.TTL, time.Hour)
}

// PipelineTimeout 1回のパイプライン実行のタイムアウト
func (c *Config) PipelineTimeout() time.Duration {
	return mustDuration(c.Pipeline.Timeout, 3*time.Minute)
}

// Settings はプランナー設定をドメインの設定値に変換する
func (p PlannerConfig) Settings() (service.PlannerSettings, error) {
	settings := service.PlannerSettings{
		ClusterRadiusKm:      p.ClusterRadiusKm,
		UrbanSpeedKmh:        p.UrbanSpeedKmh,
		MinTravelMinutes:     p.MinTravelMinutes,
		UnknownTravelMinutes: p.UnknownTravelMinutes,
		RestBreakMinutes:     p.RestBreakMinutes,
		RestBreakEvery:       p.RestBreakEvery,
		POIsPerDay:           p.POIsPerDay,
	}
	lunch, err := parseWindow(p.LunchWindow)
	if err != nil {
		return service.PlannerSettings{}, fmt.Errorf("planner.lunch_windowの形式が不正です: %w", err)
	}
	dinner, err := parseWindow(p.DinnerWindow)
	if err != nil {
		return service.PlannerSettings{}, fmt.Errorf("planner.dinner_windowの形式が不正です: %w", err)
	}
	settings.LunchWindow = lunch
	settings.DinnerWindow = dinner
	return settings, nil
}

// parseWindow は "HH:MM-HH:MM" を分単位の範囲に変換する
func parseWindow(value string) (service.MealWindow, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return service.MealWindow{}, fmt.Errorf("HH:MM-HH:MM形式ではありません: %q", value)
	}
	from, err := time.Parse("15:04", strings.TrimSpace(parts[0]))
	if err != nil {
		return service.MealWindow{}, err
	}
	to, err := time.Parse("15:04", strings.TrimSpace(parts[1]))
	if err != nil {
		return service.MealWindow{}, err
	}
	w := service.MealWindow{From: from.Hour()*60 + from.Minute(), To: to.Hour()*60 + to.Minute()}
	if w.To <= w.From {
		return service.MealWindow{}, fmt.Errorf("終了時刻は開始時刻より後にしてください: %q", value)
	}
	return w, nil
}

func mustDuration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
