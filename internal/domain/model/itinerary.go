package model

import "time"

// Itinerary パイプライン全体の出力
type Itinerary struct {
	ID           string             `json:"id,omitempty"`
	Destination  string             `json:"destination"`
	Title        string             `json:"title,omitempty"`
	Summary      string             `json:"summary,omitempty"`
	Days         []DaySchedule      `json:"days"`
	Clusters     []Cluster          `json:"clusters,omitempty"`
	Budget       BudgetBreakdown    `json:"budget"`
	BudgetCheck  BudgetCheck        `json:"budget_check"`
	Optimization *OptimizationPlan  `json:"optimization,omitempty"`
	Warnings     []string           `json:"warnings"`
	Suggestions  []string           `json:"suggestions"`
	Rejected     []RejectedLocation `json:"rejected,omitempty"`
	Hashtags     []string           `json:"hashtags,omitempty"`
	Platforms    []string           `json:"platforms,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// TotalSlots 全日程のスロット数を返す
func (it *Itinerary) TotalSlots() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Slots)
	}
	return n
}

// Stage パイプラインの進行段階
type Stage string

const (
	StageQueued     Stage = "queued"
	StageAnalyzing  Stage = "analyzing"
	StageValidating Stage = "validating"
	StageEnriching  Stage = "enriching"
	StageFiltering  Stage = "filtering"
	StagePlanning   Stage = "planning"
	StageBudgeting  Stage = "budgeting"
	StageNarrating  Stage = "narrating"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// IsTerminal 終了状態かチェック
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageFailed
}

// ProgressEvent 進捗イベント（1回の実行につき順序付きで発行される）
type ProgressEvent struct {
	Stage        Stage     `json:"stage"`
	Progress     int       `json:"progress"` // 0-100
	Message      string    `json:"message"`
	CurrentAgent string    `json:"current_agent,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Session 1回の旅程生成の実行単位
type Session struct {
	ID        string        `json:"id"`
	Status    ProgressEvent `json:"status"`
	Result    *Itinerary    `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
