package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"Itinerary-App/internal/domain/helper"
	"Itinerary-App/internal/domain/model"
	"Itinerary-App/internal/domain/repository"
	"Itinerary-App/internal/domain/service"
)

const defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

// PlacesOptions はGooglePlacesProviderの設定
type PlacesOptions struct {
	APIKey         string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	BaseURL        string // テスト用に差し替え可能
}

// GooglePlacesProvider はGoogle Places APIを使用したPOIsRepositoryの実装
type GooglePlacesProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ repository.POIsRepository = (*GooglePlacesProvider)(nil)

// NewGooglePlacesProvider は新しいプロバイダを生成する
func NewGooglePlacesProvider(opts PlacesOptions) *GooglePlacesProvider {
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultPlacesBaseURL
	}
	return &GooglePlacesProvider{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
	}
}

// ValidateLocations はロケーション名をテキスト検索で実在するスポットに照合する
// 見つからない名前と重複するスポットは除外理由付きで返す
// 一部の名前で通信に失敗した場合は、その名前だけ未検証のPOIとして推定する
func (g *GooglePlacesProvider) ValidateLocations(ctx context.Context, names []string, destination string) (*model.ValidationResult, error) {
	result := &model.ValidationResult{}
	seen := make(map[string]struct{})
	var (
		attempted int
		failed    []string
		lastErr   error
	)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		attempted++
		query := name
		if destination != "" {
			query = fmt.Sprintf("%s, %s", name, destination)
		}

		places, err := g.textSearch(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("ロケーション検証が中断されました: %w", ctx.Err())
			}
			log.Warn().Err(err).Str("name", name).Msg("⚠️ ロケーション検証に失敗、名前から推定します")
			failed = append(failed, name)
			lastErr = err
			continue
		}
		if len(places) == 0 {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: name, Reason: "No matching place found"})
			continue
		}

		place := places[0]
		if _, dup := seen[place.PlaceID]; dup {
			result.Rejected = append(result.Rejected, model.RejectedLocation{Name: name, Reason: "Duplicate of another location"})
			continue
		}
		seen[place.PlaceID] = struct{}{}
		result.VerifiedPOIs = append(result.VerifiedPOIs, place.toPOI(name))
	}

	// 全件失敗した場合は呼び出し側のフォールバックに任せる
	if attempted > 0 && len(failed) == attempted {
		return nil, fmt.Errorf("ロケーション検証に失敗 (%d件): %w", len(failed), lastErr)
	}
	if len(failed) > 0 {
		result.VerifiedPOIs = append(result.VerifiedPOIs, service.EstimatePOIs(failed).VerifiedPOIs...)
	}

	log.Info().Int("verified", len(result.VerifiedPOIs)).Int("rejected", len(result.Rejected)).
		Msg("📍 ロケーション検証完了")
	return result, nil
}

// EnrichPOI は検証済みPOIを詳細APIで、未検証POIをテキスト検索で補完する
func (g *GooglePlacesProvider) EnrichPOI(ctx context.Context, poi *model.POI) (*model.POI, error) {
	var place *placeResult
	if poi.Verified {
		p, err := g.details(ctx, poi.ID)
		if err != nil {
			return nil, err
		}
		place = p
	} else {
		places, err := g.textSearch(ctx, poi.Name)
		if err != nil {
			return nil, err
		}
		if len(places) == 0 {
			return poi.Clone(), nil
		}
		place = &places[0]
	}
	return mergePlace(poi, place), nil
}

func (g *GooglePlacesProvider) textSearch(ctx context.Context, query string) ([]placeResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", "en")

	var resp textSearchResponse
	if err := g.get(ctx, "/textsearch/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (g *GooglePlacesProvider) details(ctx context.Context, placeID string) (*placeResult, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,geometry,types,rating,price_level,opening_hours")
	params.Set("language", "en")

	var resp detailsResponse
	if err := g.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func (g *GooglePlacesProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("レート制限の待機に失敗: %w", err)
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	default:
		return fmt.Errorf("Places APIエラー: %s %s", status, message)
	}
}

// mergePlace は既存の値を優先し、欠けている項目のみ補完したコピーを返す
func mergePlace(poi *model.POI, place *placeResult) *model.POI {
	merged := poi.Clone()
	if merged.Address == "" {
		merged.Address = place.FormattedAddress
	}
	if merged.Coordinates == nil && place.Geometry != nil {
		merged.Coordinates = &model.GeoPoint{
			Latitude:  place.Geometry.Location.Lat,
			Longitude: place.Geometry.Location.Lng,
		}
	}
	if merged.Rating == nil && place.Rating > 0 {
		merged.Rating = model.Float64Ptr(place.Rating)
	}
	if merged.PriceLevel == nil && place.PriceLevel != nil && *place.PriceLevel > 0 {
		merged.PriceLevel = model.IntPtr(*place.PriceLevel)
	}
	if merged.Category == "" || merged.Category == model.CategoryOther {
		merged.Category = helper.CategoryFromPlaceTypes(place.Types, merged.Name)
	}
	if len(merged.OpeningHours) == 0 && place.OpeningHours != nil {
		merged.OpeningHours = append([]string(nil), place.OpeningHours.WeekdayText...)
	}
	return merged
}

// --- Google Places APIのレスポンスをパースするための構造体 ---

type textSearchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type detailsResponse struct {
	Result       placeResult `json:"result"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

type placeResult struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Geometry         *geometry     `json:"geometry"`
	Types            []string      `json:"types"`
	Rating           float64       `json:"rating"`
	PriceLevel       *int          `json:"price_level"`
	OpeningHours     *openingHours `json:"opening_hours"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type openingHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// toPOI は検索結果を検証済みPOIに変換する（名前は検索結果の正式名称を優先）
func (p placeResult) toPOI(query string) *model.POI {
	name := p.Name
	if name == "" {
		name = query
	}
	poi := mergePlace(&model.POI{ID: p.PlaceID, Name: name, Verified: true}, &p)
	return poi
}
