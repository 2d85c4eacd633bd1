package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
)

const kiyomizuJSON = `{
  "place_id": "place-kiyomizu",
  "name": "Kiyomizu-dera",
  "formatted_address": "1-294 Kiyomizu, Higashiyama Ward, Kyoto, Japan",
  "geometry": {"location": {"lat": 34.994856, "lng": 135.785046}},
  "types": ["place_of_worship", "tourist_attraction"],
  "rating": 4.6,
  "price_level": 1,
  "opening_hours": {"weekday_text": ["Monday: 6:00 AM – 6:00 PM"]}
}`

func newPlacesServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/textsearch/json":
			q := r.URL.Query().Get("query")
			queries = append(queries, q)
			switch {
			case strings.HasPrefix(q, "Kiyomizu"):
				_, _ = w.Write([]byte(`{"status": "OK", "results": [` + kiyomizuJSON + `]}`))
			case strings.HasPrefix(q, "Broken"):
				_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key"}`))
			default:
				_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
			}
		case "/details/json":
			assert.Equal(t, "place-kiyomizu", r.URL.Query().Get("place_id"))
			_, _ = w.Write([]byte(`{"status": "OK", "result": ` + kiyomizuJSON + `}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func newTestProvider(baseURL string) *GooglePlacesProvider {
	return NewGooglePlacesProvider(PlacesOptions{APIKey: "test-key", RequestsPerSec: 100, Burst: 10, BaseURL: baseURL})
}

func TestGooglePlacesProvider_ValidateLocations(t *testing.T) {
	ctx := context.Background()

	t.Run("見つかった名前は検証済みPOIになる", func(t *testing.T) {
		srv, queries := newPlacesServer(t)
		provider := newTestProvider(srv.URL)

		result, err := provider.ValidateLocations(ctx, []string{"Kiyomizu Temple", "  ", "Unknown Cafe"}, "Kyoto")
		require.NoError(t, err)

		require.Len(t, result.VerifiedPOIs, 1)
		poi := result.VerifiedPOIs[0]
		assert.Equal(t, "place-kiyomizu", poi.ID)
		assert.Equal(t, "Kiyomizu-dera", poi.Name)
		assert.True(t, poi.Verified)
		assert.Equal(t, model.CategoryTemple, poi.Category)
		require.NotNil(t, poi.Coordinates)
		assert.InDelta(t, 34.994856, poi.Coordinates.Latitude, 1e-9)
		assert.Equal(t, 1, *poi.PriceLevel)

		require.Len(t, result.Rejected, 1)
		assert.Equal(t, "Unknown Cafe", result.Rejected[0].Name)
		assert.Equal(t, []string{"Kiyomizu Temple, Kyoto", "Unknown Cafe, Kyoto"}, *queries)
	})

	t.Run("同じスポットに解決される名前は重複として除外する", func(t *testing.T) {
		srv, _ := newPlacesServer(t)
		result, err := newTestProvider(srv.URL).ValidateLocations(ctx, []string{"Kiyomizu-dera", "Kiyomizu Temple"}, "")
		require.NoError(t, err)
		assert.Len(t, result.VerifiedPOIs, 1)
		require.Len(t, result.Rejected, 1)
		assert.Contains(t, result.Rejected[0].Reason, "Duplicate")
	})

	t.Run("APIエラーはエラーを返す", func(t *testing.T) {
		srv, _ := newPlacesServer(t)
		_, err := newTestProvider(srv.URL).ValidateLocations(ctx, []string{"Broken"}, "")
		assert.Error(t, err)
	})

	t.Run("一部の名前だけ失敗した場合は成功分を残して失敗分を推定する", func(t *testing.T) {
		srv, _ := newPlacesServer(t)
		result, err := newTestProvider(srv.URL).ValidateLocations(ctx, []string{"Kiyomizu Temple", "Broken Ramen Shop"}, "Kyoto")
		require.NoError(t, err)

		require.Len(t, result.VerifiedPOIs, 2)
		assert.Equal(t, "place-kiyomizu", result.VerifiedPOIs[0].ID)
		assert.True(t, result.VerifiedPOIs[0].Verified)

		estimated := result.VerifiedPOIs[1]
		assert.Equal(t, "Broken Ramen Shop", estimated.Name)
		assert.False(t, estimated.Verified)
		assert.Nil(t, estimated.Coordinates)
		assert.Equal(t, model.CategoryRestaurant, estimated.Category)
		assert.Empty(t, result.Rejected)
	})
}

func TestGooglePlacesProvider_EnrichPOI(t *testing.T) {
	ctx := context.Background()

	t.Run("検証済みPOIは詳細APIで補完し既存値を優先する", func(t *testing.T) {
		srv, _ := newPlacesServer(t)
		in := &model.POI{ID: "place-kiyomizu", Name: "Kiyomizu-dera", Verified: true, Address: "custom address"}

		out, err := newTestProvider(srv.URL).EnrichPOI(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "custom address", out.Address)
		assert.NotNil(t, out.Coordinates)
		assert.Equal(t, []string{"Monday: 6:00 AM – 6:00 PM"}, out.OpeningHours)
		assert.Nil(t, in.Coordinates, "入力は変更しない")
	})

	t.Run("見つからない未検証POIはそのまま返す", func(t *testing.T) {
		srv, _ := newPlacesServer(t)
		in := &model.POI{ID: "x", Name: "Nowhere Bistro", Category: model.CategoryRestaurant}

		out, err := newTestProvider(srv.URL).EnrichPOI(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Nowhere Bistro", out.Name)
		assert.Nil(t, out.Coordinates)
	})
}
