package model

import (
	"context"
	"sync"
)

// AgentType LLMコラボレーターの種別（会話キャッシュのキー）
type AgentType string

const (
	AgentVision    AgentType = "vision"
	AgentVibe      AgentType = "vibe_filter"
	AgentBudget    AgentType = "budget_optimizer"
	AgentNarrative AgentType = "narrative"
)

// ChatMessage 会話履歴の1メッセージ
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationCache 1回のパイプライン実行に紐づく会話履歴キャッシュ
type ConversationCache struct {
	mu        sync.Mutex
	histories map[AgentType][]ChatMessage
}

// NewConversationCache 新しいConversationCacheを作成
func NewConversationCache() *ConversationCache {
	return &ConversationCache{histories: make(map[AgentType][]ChatMessage)}
}

// History 指定エージェントの履歴のコピーを返す
func (c *ConversationCache) History(agent AgentType) []ChatMessage {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.histories[agent]...)
}

// Append 指定エージェントの履歴にメッセージを追加
func (c *ConversationCache) Append(agent AgentType, msgs ...ChatMessage) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[agent] = append(c.histories[agent], msgs...)
}

// Reset 全履歴を破棄する
func (c *ConversationCache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories = make(map[AgentType][]ChatMessage)
}

type conversationCacheKey struct{}

// WithConversationCache 会話キャッシュをcontextに紐づける
func WithConversationCache(ctx context.Context, cache *ConversationCache) context.Context {
	return context.WithValue(ctx, conversationCacheKey{}, cache)
}

// ConversationCacheFrom contextから会話キャッシュを取り出す（存在しない場合はnil）
func ConversationCacheFrom(ctx context.Context) *ConversationCache {
	cache, _ := ctx.Value(conversationCacheKey{}).(*ConversationCache)
	return cache
}
