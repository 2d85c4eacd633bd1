package repository

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
)

// catalogFirstPOIsRepository は場所カタログを優先し、見つからない名前だけを外部APIに問い合わせる
type catalogFirstPOIsRepository struct {
	catalog repository.POIsRepository
	remote  repository.POIsRepository
}

// NewCatalogFirstPOIsRepository はカタログと外部APIを組み合わせたPOIsRepositoryを作成（どちらかはnil可）
func NewCatalogFirstPOIsRepository(catalog, remote repository.POIsRepository) repository.POIsRepository {
	switch {
	case catalog == nil:
		return remote
	case remote == nil:
		return catalog
	}
	return &catalogFirstPOIsRepository{catalog: catalog, remote: remote}
}

func (r *catalogFirstPOIsRepository) ValidateLocations(ctx context.Context, names []string, destination string) (*model.ValidationResult, error) {
	fromCatalog, err := r.catalog.ValidateLocations(ctx, names, destination)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ 場所カタログの照合に失敗、外部APIのみで検証します")
		return r.remote.ValidateLocations(ctx, names, destination)
	}
	if len(fromCatalog.Rejected) == 0 {
		return fromCatalog, nil
	}

	missing := make([]string, 0, len(fromCatalog.Rejected))
	for _, rej := range fromCatalog.Rejected {
		missing = append(missing, rej.Name)
	}
	fromRemote, err := r.remote.ValidateLocations(ctx, missing, destination)
	if err != nil {
		if len(fromCatalog.VerifiedPOIs) == 0 {
			return nil, fmt.Errorf("外部APIでのロケーション検証に失敗: %w", err)
		}
		// カタログで確認できたPOIは残し、残りは名前から推定する
		log.Warn().Err(err).Int("catalog_hits", len(fromCatalog.VerifiedPOIs)).Int("estimated", len(missing)).
			Msg("⚠️ 外部APIでの検証に失敗、カタログにない名前は推定します")
		fromRemote = service.EstimatePOIs(missing)
	}

	result := &model.ValidationResult{VerifiedPOIs: fromCatalog.VerifiedPOIs}
	seen := make(map[string]struct{}, len(fromCatalog.VerifiedPOIs))
	for _, p := range fromCatalog.VerifiedPOIs {
		seen[p.ID] = struct{}{}
	}
	for _, p := range fromRemote.VerifiedPOIs {
		if _, dup := seen[p.ID]; dup {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: p.Name, Reason: "Duplicate of another location"})
			continue
		}
		seen[p.ID] = struct{}{}
		result.VerifiedPOIs = append(result.VerifiedPOIs, p)
	}
	result.Rejected = append(result.Rejected, fromRemote.Rejected...)
	return result, nil
}

// EnrichPOI はカタログで補完した後、まだ位置情報がなければ外部APIで補完する
func (r *catalogFirstPOIsRepository) EnrichPOI(ctx context.Context, poi *model.POI) (*model.POI, error) {
	enriched, err := r.catalog.EnrichPOI(ctx, poi)
	if err != nil {
		log.Warn().Err(err).Str("poi", poi.Name).Msg("⚠️ 場所カタログでの補完に失敗")
		enriched = poi
	}
	if enriched.HasCoordinates() && enriched.Address != "" {
		return enriched, nil
	}
	return r.remote.EnrichPOI(ctx, enriched)
}
