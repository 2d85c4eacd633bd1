package model

import (
	"fmt"
	"time"
)

// TripPreferences 旅行者の希望条件（パイプライン全体で読み取り専用）
type TripPreferences struct {
	DailyBudget   float64       `json:"daily_budget" validate:"gte=0"`
	Currency      string        `json:"currency"`
	CompanionType CompanionType `json:"companion_type" validate:"omitempty,oneof=solo partner friends family"`
	TravelStyles  []TravelStyle `json:"travel_styles" validate:"dive,oneof=culture food nature adventure relaxation nightlife shopping photography"`
	StartDate     string        `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string        `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DayStartTime  string        `json:"day_start_time" validate:"omitempty,datetime=15:04"`
	DayEndTime    string        `json:"day_end_time" validate:"omitempty,datetime=15:04"`
}

// WithDefaults 未設定の項目にデフォルト値を設定したコピーを返す
func (p TripPreferences) WithDefaults() TripPreferences {
	if p.DayStartTime == "" {
		p.DayStartTime = DefaultDayStartTime
	}
	if p.DayEndTime == "" {
		p.DayEndTime = DefaultDayEndTime
	}
	if p.CompanionType == "" {
		p.CompanionType = CompanionSolo
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return p
}

// HasStyle 指定スタイルを含むかチェック
func (p TripPreferences) HasStyle(style TravelStyle) bool {
	for _, s := range p.TravelStyles {
		if s == style {
			return true
		}
	}
	return false
}

// TripDays 開始日と終了日の両方が指定されている場合、日数（両端含む）を返す
func (p TripPreferences) TripDays() (int, bool, error) {
	if p.StartDate == "" || p.EndDate == "" {
		return 0, false, nil
	}
	start, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return 0, false, fmt.Errorf("start_dateの形式が不正です: %w", err)
	}
	end, err := time.Parse(DateLayout, p.EndDate)
	if err != nil {
		return 0, false, fmt.Errorf("end_dateの形式が不正です: %w", err)
	}
	if end.Before(start) {
		return 0, false, fmt.Errorf("end_dateはstart_date以降を指定してください")
	}
	return int(end.Sub(start).Hours()/24) + 1, true, nil
}

// PlanRequest 位置情報付きPOIから旅程を組み立てるためのリクエスト
type PlanRequest struct {
	Destination string          `json:"destination"`
	NumDays     int             `json:"num_days" validate:"gte=0,lte=30"`
	Preferences TripPreferences `json:"preferences"`
	POIs        []*POI          `json:"pois" validate:"required,min=1,dive,required"`
}

// ScreenshotInput アップロードされたスクリーンショット
type ScreenshotInput struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// ItineraryRequest スクリーンショットから旅程を生成するリクエスト
type ItineraryRequest struct {
	Destination     string            `json:"destination"`
	NumDays         int               `json:"num_days"`
	Preferences     TripPreferences   `json:"preferences"`
	Screenshots     []ScreenshotInput `json:"-"`
	ManualLocations []string          `json:"manual_locations,omitempty"`
}
