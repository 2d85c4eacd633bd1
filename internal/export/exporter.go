package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"Itinerary-App/internal/domain/model"
)

// Format エクスポート形式
type Format string

const (
	FormatJSON        Format = "json"
	FormatText        Format = "text"
	FormatMarkdown    Format = "markdown"
	FormatHTML        Format = "html"
	FormatPDF         Format = "pdf"
	FormatBudgetChart Format = "budget-chart"
)

// SupportedFormats は対応しているエクスポート形式の一覧
func SupportedFormats() []Format {
	return []Format{FormatJSON, FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatBudgetChart}
}

// ParseFormat は文字列をFormatに変換する（空文字はjson）
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return FormatJSON, nil
	case "txt":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	}
	for _, f := range SupportedFormats() {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("未対応のエクスポート形式です: %s", s)
}

// Document エクスポート結果
type Document struct {
	ContentType string
	FileName    string
	Body        []byte
}

// Exporter は旅程を各形式に書き出す
type Exporter interface {
	Export(itinerary *model.Itinerary, format Format) (*Document, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) Export(itinerary *model.Itinerary, format Format) (*Document, error) {
	if itinerary == nil {
		return nil, fmt.Errorf("旅程がありません")
	}

	var (
		body        []byte
		contentType string
		ext         string
		err         error
	)
	switch format {
	case FormatJSON:
		body, err = RenderJSON(itinerary)
		contentType, ext = "application/json; charset=utf-8", "json"
	case FormatText:
		body = []byte(RenderText(itinerary))
		contentType, ext = "text/plain; charset=utf-8", "txt"
	case FormatMarkdown:
		body = []byte(RenderMarkdown(itinerary))
		contentType, ext = "text/markdown; charset=utf-8", "md"
	case FormatHTML:
		body, err = RenderHTML(itinerary)
		contentType, ext = "text/html; charset=utf-8", "html"
	case FormatPDF:
		body, err = RenderPDF(itinerary)
		contentType, ext = "application/pdf", "pdf"
	case FormatBudgetChart:
		body, err = RenderBudgetChart(itinerary)
		contentType, ext = "text/html; charset=utf-8", "html"
	default:
		return nil, fmt.Errorf("未対応のエクスポート形式です: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s形式への書き出しに失敗: %w", format, err)
	}

	return &Document{
		ContentType: contentType,
		FileName:    fileName(itinerary, format, ext),
		Body:        body,
	}, nil
}

// RenderJSON は旅程をインデント付きJSONにする
func RenderJSON(itinerary *model.Itinerary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(itinerary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fileName(itinerary *model.Itinerary, format Format, ext string) string {
	base := slug(itinerary.Destination)
	if base == "" {
		base = "itinerary"
	}
	if format == FormatBudgetChart {
		base += "-budget"
	}
	return base + "." + ext
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// displayTitle はタイトル未設定の場合に目的地から見出しを作る
func displayTitle(itinerary *model.Itinerary) string {
	if itinerary.Title != "" {
		return itinerary.Title
	}
	if itinerary.Destination != "" {
		return itinerary.Destination + " Itinerary"
	}
	return "Itinerary"
}
