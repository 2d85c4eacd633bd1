package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
)

// GeminiClient はGemini APIとの通信を担当するクライアント
type GeminiClient struct {
	client      *genai.Client
	model       string
	visionModel string
	temperature float32
	timeout     time.Duration
}

// GeminiOptions はGeminiClientの生成オプション
type GeminiOptions struct {
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
	Timeout     time.Duration
}

// NewGeminiClient は新しいGeminiClientインスタンスを作成
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEYが設定されていません")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの初期化に失敗: %w", err)
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &GeminiClient{
		client:      client,
		model:       opts.Model,
		visionModel: opts.VisionModel,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
	}, nil
}

var _ repository.ChatRepository = (*GeminiClient)(nil)

// Ask はエージェントごとの会話履歴を付けてプロンプトを送り、応答テキストを返す
func (c *GeminiClient) Ask(ctx context.Context, agent model.AgentType, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cache := model.ConversationCacheFrom(ctx)
	history := cache.History(agent)
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role string
		switch msg.Role {
		case roleAssistant:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	})

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt(agent), genai.RoleUser),
	}
	text, err := c.generate(ctx, c.model, contents, config)
	if err != nil {
		return "", err
	}

	cache.Append(agent,
		model.ChatMessage{Role: roleUser, Content: prompt},
		model.ChatMessage{Role: roleAssistant, Content: text},
	)
	return text, nil
}

// AnalyzeImage は画像とプロンプトを送り、JSON形式の応答テキストを返す
func (c *GeminiClient) AnalyzeImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			genai.NewPartFromText(prompt),
		},
	}}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}
	return c.generate(ctx, c.visionModel, contents, config)
}

func (c *GeminiClient) generate(ctx context.Context, modelName string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API呼び出しエラー: %w", err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}
	if response.Len() == 0 {
		return "", fmt.Errorf("有効なレスポンスが生成されませんでした")
	}
	return response.String(), nil
}
