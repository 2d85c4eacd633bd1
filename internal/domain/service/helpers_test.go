package service

import (
	"Itinerary-App/internal/domain/model"
)

// 京都河原町の位置
const (
	kawaramachiLat = 35.004573
	kawaramachiLng = 135.768799
)

func poiAt(id string, category model.Category, lat, lng float64) *model.POI {
	return &model.POI{
		ID:          id,
		Name:        id,
		Category:    category,
		Coordinates: &model.GeoPoint{Latitude: lat, Longitude: lng},
		Verified:    true,
	}
}

func poiWithoutCoordinates(id string, category model.Category) *model.POI {
	return &model.POI{ID: id, Name: id, Category: category}
}

func poiIDs(pois []*model.POI) []string {
	ids := make([]string, 0, len(pois))
	for _, p := range pois {
		ids = append(ids, p.ID)
	}
	return ids
}
