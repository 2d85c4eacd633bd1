package service

import (
	"Itinerary-App/internal/domain/model"
)

// DefaultNumDays 1日あたりの目標件数から日数を決める（最低1日）
func DefaultNumDays(totalPOIs, perDay int) int {
	if perDay <= 0 {
		perDay = DefaultPlannerSettings().POIsPerDay
	}
	days := (totalPOIs + perDay - 1) / perDay
	if days < 1 {
		return 1
	}
	return days
}

// AllocateDays は訪問順のPOI列を ceil(n/numDays) 件ずつ連続したチャンクに分割する
// 空の日は出力に含めない
func AllocateDays(ordered []*model.POI, numDays int) [][]*model.POI {
	if len(ordered) == 0 {
		return nil
	}
	if numDays <= 0 {
		numDays = DefaultNumDays(len(ordered), 0)
	}
	chunkSize := (len(ordered) + numDays - 1) / numDays

	days := make([][]*model.POI, 0, numDays)
	for start := 0; start < len(ordered) && len(days) < numDays; start += chunkSize {
		end := start + chunkSize
		if end > len(ordered) {
			end = len(ordered)
		}
		days = append(days, append([]*model.POI(nil), ordered[start:end]...))
	}
	return days
}

// PlaceUnlocated は位置情報のないPOIを件数が最も少ない日（同数なら早い日）に追加する
// 日が1つもない場合は位置情報のないPOIだけで日割りする
func PlaceUnlocated(days [][]*model.POI, unlocated []*model.POI, numDays int) [][]*model.POI {
	if len(unlocated) == 0 {
		return days
	}
	if len(days) == 0 {
		return AllocateDays(unlocated, numDays)
	}
	for _, poi := range unlocated {
		smallest := 0
		for i := range days {
			if len(days[i]) < len(days[smallest]) {
				smallest = i
			}
		}
		days[smallest] = append(days[smallest], poi)
	}
	return days
}
