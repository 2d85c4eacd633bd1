package model

// Cluster 地理的にまとまったPOIのグループ
type Cluster struct {
	ID                       string      `json:"id"`
	Name                     string      `json:"name"`
	Centroid                 GeoPoint    `json:"centroid"`
	Bounds                   BoundingBox `json:"bounds"`
	Members                  []*POI      `json:"members"`
	SuggestedDurationMinutes int         `json:"suggested_duration_minutes"`
}

// MemberIDs クラスタに属するPOIのID一覧を返す
func (c *Cluster) MemberIDs() []string {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// TimeSlot 1つのPOIに割り当てられた時間枠
type TimeSlot struct {
	POIID                string   `json:"poi_id"`
	POIName              string   `json:"poi_name"`
	Category             Category `json:"category"`
	StartTime            string   `json:"start_time"` // "HH:MM"（24時を超える場合あり）
	EndTime              string   `json:"end_time"`
	VisitDurationMinutes int      `json:"visit_duration_minutes"`
	TravelTimeMinutes    int      `json:"travel_time_minutes"`
	IsOptimalTime        bool     `json:"is_optimal_time"`
	Note                 string   `json:"note,omitempty"`
}

// DaySchedule 1日分のスケジュール
type DaySchedule struct {
	DayIndex             int        `json:"day_index"`
	Date                 string     `json:"date"` // "2006-01-02"
	Slots                []TimeSlot `json:"slots"`
	TotalDurationMinutes int        `json:"total_duration_minutes"`
	RestBreakCount       int        `json:"rest_break_count"`
	Summary              string     `json:"summary,omitempty"` // ナラティブ生成で付与される
}

// POIIDs スケジュールに含まれるPOIのID一覧を返す
func (d *DaySchedule) POIIDs() []string {
	ids := make([]string, 0, len(d.Slots))
	for _, s := range d.Slots {
		ids = append(ids, s.POIID)
	}
	return ids
}
