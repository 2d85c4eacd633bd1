package repository

import (
	"context"

	"Itinerary-App/internal/domain/model"
)

// ChatRepository はLLMチャットサービスへの問い合わせ口
// agentごとの会話履歴はcontextに紐づいたConversationCacheに保持される
type ChatRepository interface {
	Ask(ctx context.Context, agent model.AgentType, prompt string) (string, error)
}

// VisionRepository はスクリーンショット画像の解析を担う
type VisionRepository interface {
	Analyze(ctx context.Context, screenshot model.ScreenshotInput) (*model.VisionResult, error)
}

// VibeFilterRepository は旅行者の希望に合わないPOIを判定する
type VibeFilterRepository interface {
	Classify(ctx context.Context, pois []*model.POI, hashtags []string, prefs model.TripPreferences) (*model.VibeResult, error)
}

// BudgetAdvisorRepository は予算超過時の最適化案を提案する
// 返される案は信頼できないテキストから解析されたものとして扱う
type BudgetAdvisorRepository interface {
	SuggestOptimization(ctx context.Context, pois []*model.POI, check model.BudgetCheck, prefs model.TripPreferences) (*model.OptimizationPlan, error)
}
