package repository

import (
	"context"

	"Itinerary-App/internal/domain/model"
)

// POIsRepository はロケーション名の検証とPOI情報の補完を担う場所カタログ
type POIsRepository interface {
	// ValidateLocations はロケーション名を実在するPOIに照合する（destinationは検索の絞り込みに使う）
	ValidateLocations(ctx context.Context, names []string, destination string) (*model.ValidationResult, error)
	// EnrichPOI は住所・位置情報・営業時間などを補完したPOIを返す
	EnrichPOI(ctx context.Context, poi *model.POI) (*model.POI, error)
}
