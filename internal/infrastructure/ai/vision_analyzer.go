package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"
	"github.com/samber/lo"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
)

// ImageAnalyzer は画像とプロンプトから応答テキストを得るクライアント
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

// geminiVisionRepository はGeminiのマルチモーダル機能でVisionRepositoryを実装
type geminiVisionRepository struct {
	analyzer ImageAnalyzer
}

// NewGeminiVisionRepository は新しいgeminiVisionRepositoryインスタンスを作成
func NewGeminiVisionRepository(analyzer ImageAnalyzer) repository.VisionRepository {
	return &geminiVisionRepository{analyzer: analyzer}
}

const visionPrompt = `This is a screenshot from a travel post (Instagram, TikTok, Xiaohongshu, blog, maps app).
Extract every real-world place that a traveller could visit.

Return JSON with this exact shape:
{"extracted_text": ["..."], "location_names": ["..."], "hashtags": ["#..."], "platform": "instagram|tiktok|xiaohongshu|youtube|blog|maps|other", "confidence": 0.0}

Rules:
- location_names: specific venue or landmark names only, no cities or countries on their own
- hashtags: as written, including the leading #
- confidence: 0 to 1, how sure you are the names are correct`

type visionResponse struct {
	ExtractedText []string `json:"extracted_text"`
	LocationNames []string `json:"location_names"`
	Hashtags      []string `json:"hashtags"`
	Platform      string   `json:"platform"`
	Confidence    float64  `json:"confidence"`
}

// Analyze はスクリーンショットからロケーション名・ハッシュタグ・投稿元を抽出する
func (g *geminiVisionRepository) Analyze(ctx context.Context, screenshot model.ScreenshotInput) (*model.VisionResult, error) {
	if g.analyzer == nil {
		return nil, fmt.Errorf("画像解析クライアントが設定されていません")
	}
	if len(screenshot.Data) == 0 {
		return nil, fmt.Errorf("画像データが空です: %s", screenshot.FileName)
	}

	text, err := g.analyzer.AnalyzeImage(ctx, visionPrompt, screenshot.Data, screenshot.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("画像解析に失敗 (%s): %w", screenshot.FileName, err)
	}
	result, err := parseVisionResponse(text)
	if err != nil {
		return nil, fmt.Errorf("画像解析結果の解析に失敗 (%s): %w", screenshot.FileName, err)
	}

	log.Debug().Str("file", screenshot.FileName).Int("locations", len(result.LocationNames)).
		Str("platform", result.Platform).Msg("🖼️ スクリーンショット解析完了")
	return result, nil
}

func parseVisionResponse(text string) (*model.VisionResult, error) {
	var resp visionResponse
	if err := decodeLLMJSON(text, &resp); err != nil {
		return nil, err
	}

	clean := func(values []string) []string {
		trimmed := lo.FilterMap(values, func(v string, _ int) (string, bool) {
			v = strings.TrimSpace(v)
			return v, v != ""
		})
		return lo.Uniq(trimmed)
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return &model.VisionResult{
		ExtractedText: clean(resp.ExtractedText),
		LocationNames: clean(resp.LocationNames),
		Hashtags:      clean(resp.Hashtags),
		Platform:      strings.ToLower(strings.TrimSpace(resp.Platform)),
		Confidence:    confidence,
	}, nil
}
