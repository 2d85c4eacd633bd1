package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONObject はLLMの応答からJSONオブジェクト部分を取り出す
// コードフェンスや前後の説明文が付いていても最初の { から対応する } までを返す
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return "", fmt.Errorf("JSONオブジェクトが見つかりません")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("JSONオブジェクトが閉じていません")
}

// decodeLLMJSON はLLMの応答からJSONオブジェクトを取り出してデコードする
func decodeLLMJSON(text string, v any) error {
	raw, err := extractJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("LLM応答のJSONパースに失敗: %w", err)
	}
	return nil
}
