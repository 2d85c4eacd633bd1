package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/infrastructure/database"
)

// PostgresPlacesRepository は事前登録された場所カタログからPOIを照合する
type PostgresPlacesRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPlacesRepository(client *database.PostgreSQLClient) repository.POIsRepository {
	return &PostgresPlacesRepository{
		client: client,
	}
}

const placeColumns = `id, name, address, latitude, longitude, category, rating, price_level, estimated_cost, currency, opening_hours`

// placeRow placesテーブルの1行を受け取るための構造体
type placeRow struct {
	ID            string
	Name          string
	Address       sql.NullString
	Latitude      sql.NullFloat64
	Longitude     sql.NullFloat64
	Category      sql.NullString
	Rating        sql.NullFloat64
	PriceLevel    sql.NullInt64
	EstimatedCost sql.NullFloat64
	Currency      sql.NullString
	OpeningHours  pq.StringArray
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*placeRow, error) {
	var r placeRow
	err := row.Scan(&r.ID, &r.Name, &r.Address, &r.Latitude, &r.Longitude, &r.Category,
		&r.Rating, &r.PriceLevel, &r.EstimatedCost, &r.Currency, &r.OpeningHours)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ToPOI placeRowをmodel.POIに変換（カタログの場所は検証済みとして扱う）
func (r *placeRow) ToPOI() *model.POI {
	poi := &model.POI{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address.String,
		Category: model.ParseCategory(r.Category.String),
		Currency: r.Currency.String,
		Verified: true,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		poi.Coordinates = &model.GeoPoint{Latitude: r.Latitude.Float64, Longitude: r.Longitude.Float64}
	}
	if r.Rating.Valid {
		poi.Rating = model.Float64Ptr(r.Rating.Float64)
	}
	if r.PriceLevel.Valid {
		poi.PriceLevel = model.IntPtr(int(r.PriceLevel.Int64))
	}
	if r.EstimatedCost.Valid {
		poi.EstimatedCost = model.Float64Ptr(r.EstimatedCost.Float64)
	}
	if len(r.OpeningHours) > 0 {
		poi.OpeningHours = []string(r.OpeningHours)
	}
	return poi
}

// ValidateLocations は名前（大文字小文字を区別しない）でカタログを照合する
func (r *PostgresPlacesRepository) ValidateLocations(ctx context.Context, names []string, destination string) (*model.ValidationResult, error) {
	query := `SELECT ` + placeColumns + ` FROM places
		WHERE lower(name) = lower($1) AND ($2 = '' OR destination ILIKE $2)
		ORDER BY rating DESC NULLS LAST LIMIT 1`

	result := &model.ValidationResult{}
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		row, err := scanPlace(r.client.DB.QueryRowContext(ctx, query, name, destination))
		if errors.Is(err, sql.ErrNoRows) {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: name, Reason: "Not found in place catalog"})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("場所カタログの検索に失敗 (%s): %w", name, err)
		}
		if _, dup := seen[row.ID]; dup {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: name, Reason: "Duplicate of another location"})
			continue
		}
		seen[row.ID] = struct{}{}
		result.VerifiedPOIs = append(result.VerifiedPOIs, row.ToPOI())
	}
	return result, nil
}

// EnrichPOI はIDでカタログを引き、欠けている項目のみ補完したコピーを返す
func (r *PostgresPlacesRepository) EnrichPOI(ctx context.Context, poi *model.POI) (*model.POI, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	row, err := scanPlace(r.client.DB.QueryRowContext(ctx, query, poi.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return poi.Clone(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("場所データの取得失敗: %w", err)
	}
	return fillMissing(poi, row.ToPOI()), nil
}

// fillMissing はbaseの空の項目をsrcの値で埋めたコピーを返す
func fillMissing(base, src *model.POI) *model.POI {
	merged := base.Clone()
	if merged.Address == "" {
		merged.Address = src.Address
	}
	if merged.Coordinates == nil && src.Coordinates != nil {
		c := *src.Coordinates
		merged.Coordinates = &c
	}
	if merged.Category == "" || merged.Category == model.CategoryOther {
		merged.Category = src.Category
	}
	if merged.Rating == nil && src.Rating != nil {
		merged.Rating = model.Float64Ptr(*src.Rating)
	}
	if merged.PriceLevel == nil && src.PriceLevel != nil {
		merged.PriceLevel = model.IntPtr(*src.PriceLevel)
	}
	if merged.EstimatedCost == nil && src.EstimatedCost != nil {
		merged.EstimatedCost = model.Float64Ptr(*src.EstimatedCost)
	}
	if merged.Currency == "" {
		merged.Currency = src.Currency
	}
	if len(merged.OpeningHours) == 0 && len(src.OpeningHours) > 0 {
		merged.OpeningHours = append([]string(nil), src.OpeningHours...)
	}
	return merged
}
