package service

// MealWindow 食事時間の補正範囲（分単位, [From, To) に入ったら To に揃える）
type MealWindow struct {
	From int
	To   int
}

// Contains 時刻（0時からの分）が範囲内かチェック
func (w MealWindow) Contains(minute int) bool {
	return minute >= w.From && minute < w.To
}

// PlannerSettings 旅程組み立てのヒューリスティクス定数
type PlannerSettings struct {
	ClusterRadiusKm      float64    // クラスタ半径
	UrbanSpeedKmh        float64    // 都市部の実効移動速度
	MinTravelMinutes     int        // 移動時間の下限
	UnknownTravelMinutes int        // 位置情報がない場合の移動時間
	RestBreakMinutes     int        // 休憩時間
	RestBreakEvery       int        // 何件ごとに休憩を入れるか
	POIsPerDay           int        // 日数未指定時の1日あたりの目標件数
	LunchWindow          MealWindow // 昼食補正
	DinnerWindow         MealWindow // 夕食補正
}

// DefaultPlannerSettings デフォルト値を返す
func DefaultPlannerSettings() PlannerSettings {
	return PlannerSettings{
		ClusterRadiusKm:      3.0,
		UrbanSpeedKmh:        15.0,
		MinTravelMinutes:     10,
		UnknownTravelMinutes: 20,
		RestBreakMinutes:     20,
		RestBreakEvery:       3,
		POIsPerDay:           5,
		LunchWindow:          MealWindow{From: 11 * 60, To: 12 * 60},
		DinnerWindow:         MealWindow{From: 17 * 60, To: 18 * 60},
	}
}

// normalized 不正な値をデフォルトで補完したコピーを返す
func (s PlannerSettings) normalized() PlannerSettings {
	def := DefaultPlannerSettings()
	if s.ClusterRadiusKm <= 0 {
		s.ClusterRadiusKm = def.ClusterRadiusKm
	}
	if s.UrbanSpeedKmh <= 0 {
		s.UrbanSpeedKmh = def.UrbanSpeedKmh
	}
	if s.MinTravelMinutes < 0 {
		s.MinTravelMinutes = def.MinTravelMinutes
	}
	if s.UnknownTravelMinutes < 0 {
		s.UnknownTravelMinutes = def.UnknownTravelMinutes
	}
	if s.RestBreakMinutes < 0 {
		s.RestBreakMinutes = def.RestBreakMinutes
	}
	if s.RestBreakEvery <= 0 {
		s.RestBreakEvery = def.RestBreakEvery
	}
	if s.POIsPerDay <= 0 {
		s.POIsPerDay = def.POIsPerDay
	}
	if s.LunchWindow.To <= s.LunchWindow.From {
		s.LunchWindow = def.LunchWindow
	}
	if s.DinnerWindow.To <= s.DinnerWindow.From {
		s.DinnerWindow = def.DinnerWindow
	}
	return s
}
