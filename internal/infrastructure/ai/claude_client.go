package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
)

// ClaudeClient はAnthropic Claude APIとの通信を担当するクライアント
type ClaudeClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

// ClaudeOptions はClaudeClientの生成オプション
type ClaudeOptions struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClaudeClient は新しいClaudeClientインスタンスを作成
func NewClaudeClient(opts ClaudeOptions) (*ClaudeClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEYが設定されていません")
	}
	if opts.Model == "" {
		opts.Model = "claude-3-5-haiku-latest"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &ClaudeClient{
		client:      anthropic.NewClient(option.WithAPIKey(opts.APIKey)),
		model:       opts.Model,
		maxTokens:   int64(opts.MaxTokens),
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
	}, nil
}

var _ repository.ChatRepository = (*ClaudeClient)(nil)

// Ask はエージェントごとの会話履歴を付けてプロンプトを送り、応答テキストを返す
func (c *ClaudeClient) Ask(ctx context.Context, agent model.AgentType, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cache := model.ConversationCacheFrom(ctx)
	history := cache.History(agent)
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, msg := range history {
		if msg.Role == roleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt(agent)}},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API呼び出しエラー: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("有効なレスポンスが生成されませんでした")
	}

	text := response.String()
	cache.Append(agent,
		model.ChatMessage{Role: roleUser, Content: prompt},
		model.ChatMessage{Role: roleAssistant, Content: text},
	)
	return text, nil
}
