package model

// VisionResult スクリーンショット解析結果
type VisionResult struct {
	ExtractedText []string `json:"extracted_text"`
	LocationNames []string `json:"location_names"`
	Hashtags      []string `json:"hashtags"`
	Platform      string   `json:"platform,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// RejectedLocation 検証で除外されたロケーション
type RejectedLocation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ValidationResult ロケーション検証結果
type ValidationResult struct {
	VerifiedPOIs []*POI             `json:"verified_pois"`
	Rejected     []RejectedLocation `json:"rejected"`
}

// VibeResult 雰囲気フィルタの判定結果
type VibeResult struct {
	IncompatiblePOIIDs map[string]struct{} `json:"-"`
	Reasons            map[string]string   `json:"reasons,omitempty"`
}

// IsIncompatible 指定POIが除外対象かチェック
func (v *VibeResult) IsIncompatible(id string) bool {
	if v == nil {
		return false
	}
	_, ok := v.IncompatiblePOIIDs[id]
	return ok
}

// Narrative 旅程の紹介文
type Narrative struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	DaySummaries []string `json:"day_summaries"`
}
