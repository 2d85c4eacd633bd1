package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"Itinerary-App/internal/domain/helper"
	"Itinerary-App/internal/domain/model"
)

// TimeScheduler は1日分のPOIに具体的な開始・終了時刻を割り当てる
type TimeScheduler struct {
	settings PlannerSettings
	now      func() time.Time
}

// NewTimeScheduler は新しいTimeSchedulerを作成する
func NewTimeScheduler(settings PlannerSettings) *TimeScheduler {
	return &TimeScheduler{settings: settings.normalized(), now: time.Now}
}

// WithClock 日付計算に使う現在時刻の取得関数を差し替える
func (s *TimeScheduler) WithClock(now func() time.Time) *TimeScheduler {
	s.now = now
	return s
}

// BuildDaySchedule は1日分のスケジュールを組み立てる
// 空間的な訪問順よりも時間帯の適切さを優先し、理想開始時刻順に並べ替えてから時計を進める
func (s *TimeScheduler) BuildDaySchedule(pois []*model.POI, dayIndex int, prefs model.TripPreferences) model.DaySchedule {
	prefs = prefs.WithDefaults()

	sorted := append([]*model.POI(nil), pois...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return OptimalStartMinute(sorted[i]) < OptimalStartMinute(sorted[j])
	})

	startClock := parseHour(prefs.DayStartTime, 9) * 60
	clock := startClock
	restBreaks := 0
	slots := make([]model.TimeSlot, 0, len(sorted))

	for i, poi := range sorted {
		travel := 0
		if i > 0 {
			travel = s.TravelMinutes(sorted[i-1], poi)
			clock += travel
		}
		if i > 0 && i%s.settings.RestBreakEvery == 0 {
			clock += s.settings.RestBreakMinutes
			restBreaks++
		}
		if poi.Category == model.CategoryRestaurant {
			if i == 0 {
				// その日の最初の食事は理想開始時刻まで待つ
				if optimal := OptimalStartMinute(poi); clock < optimal {
					clock = optimal
				}
			}
			switch {
			case s.settings.LunchWindow.Contains(clock):
				clock = s.settings.LunchWindow.To
			case s.settings.DinnerWindow.Contains(clock):
				clock = s.settings.DinnerWindow.To
			}
		}

		visit := VisitDurationMinutes(poi.Category)
		optimal := IsOptimalHour(poi.Category, clock/60)
		slots = append(slots, model.TimeSlot{
			POIID:                poi.ID,
			POIName:              poi.Name,
			Category:             poi.Category,
			StartTime:            FormatClock(clock),
			EndTime:              FormatClock(clock + visit),
			VisitDurationMinutes: visit,
			TravelTimeMinutes:    travel,
			IsOptimalTime:        optimal,
			Note:                 slotNote(poi, clock, optimal),
		})
		clock += visit
	}

	return model.DaySchedule{
		DayIndex:             dayIndex,
		Date:                 s.dayDate(prefs.StartDate, dayIndex),
		Slots:                slots,
		TotalDurationMinutes: clock - startClock,
		RestBreakCount:       restBreaks,
	}
}

// TravelMinutes は2地点間の移動時間を見積もる
func (s *TimeScheduler) TravelMinutes(from, to *model.POI) int {
	d, ok := helper.DistancePOIKm(from, to)
	if !ok {
		return s.settings.UnknownTravelMinutes
	}
	minutes := int(math.Round(d / s.settings.UrbanSpeedKmh * 60))
	if minutes < s.settings.MinTravelMinutes {
		return s.settings.MinTravelMinutes
	}
	return minutes
}

// DayEndWarning は1日の終了時刻が希望終了時刻を超える場合に警告文を返す
func (s *TimeScheduler) DayEndWarning(day model.DaySchedule, prefs model.TripPreferences) (string, bool) {
	prefs = prefs.WithDefaults()
	if len(day.Slots) == 0 {
		return "", false
	}
	end := parseHour(prefs.DayStartTime, 9)*60 + day.TotalDurationMinutes
	limit, ok := parseClock(prefs.DayEndTime)
	if !ok {
		limit, _ = parseClock(model.DefaultDayEndTime)
	}
	if end <= limit {
		return "", false
	}
	return fmt.Sprintf("Day %d runs until %s, past your preferred end time of %s", day.DayIndex+1, FormatClock(end), prefs.DayEndTime), true
}

func (s *TimeScheduler) dayDate(startDate string, dayIndex int) string {
	base := s.now()
	if startDate != "" {
		if parsed, err := time.Parse(model.DateLayout, startDate); err == nil {
			base = parsed
		}
	}
	return base.AddDate(0, 0, dayIndex).Format(model.DateLayout)
}

// FormatClock は0時からの分を "HH:MM" に変換する（24時を超える値もそのまま表示）
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// parseClock は "HH:MM" を0時からの分に変換する
func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// parseHour は "HH:MM" の時の部分のみを返す（分は切り捨て）
func parseHour(value string, def int) int {
	minutes, ok := parseClock(value)
	if !ok {
		return def
	}
	return minutes / 60
}

func slotNote(poi *model.POI, clock int, optimal bool) string {
	hour := clock / 60
	switch poi.Category {
	case model.CategoryRestaurant:
		switch {
		case hour < 11:
			return "Breakfast"
		case hour < 16:
			return "Lunch"
		default:
			return "Dinner"
		}
	case model.CategoryViewpoint:
		if optimal {
			return "Golden hour views"
		}
	case model.CategoryAttraction, model.CategoryMarket:
		if optimal {
			return "Early visit to beat the crowds"
		}
	}
	if !optimal {
		return "Outside the recommended time window"
	}
	return ""
}
