package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Itinerary-App/internal/domain/model"
)

func TestProximityClusterer_Cluster(t *testing.T) {
	clusterer := NewProximityClusterer(3.0)

	t.Run("0.5km離れた2件と10km離れた1件は2クラスタ", func(t *testing.T) {
		pois := []*model.POI{
			poiAt("a", model.CategoryAttraction, kawaramachiLat, kawaramachiLng),
			poiAt("b", model.CategoryRestaurant, kawaramachiLat+0.0045, kawaramachiLng),
			poiAt("c", model.CategoryTemple, kawaramachiLat+0.09, kawaramachiLng),
		}

		clusters := clusterer.Cluster(pois)

		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"a", "b"}, clusters[0].MemberIDs())
		assert.Equal(t, []string{"c"}, clusters[1].MemberIDs())
		assert.InDelta(t, kawaramachiLat+0.00225, clusters[0].Centroid.Latitude, 1e-9)
		assert.Equal(t, 90+75, clusters[0].SuggestedDurationMinutes)
	})

	t.Run("位置情報のないPOIはどのクラスタにも含まれない", func(t *testing.T) {
		pois := []*model.POI{
			poiWithoutCoordinates("x", model.CategoryOther),
			poiAt("a", model.CategoryAttraction, kawaramachiLat, kawaramachiLng),
			poiWithoutCoordinates("y", model.CategoryCafe),
		}

		clusters := clusterer.Cluster(pois)

		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"a"}, clusters[0].MemberIDs())
	})

	t.Run("シードとの距離で判定し重心は逐次更新しない", func(t *testing.T) {
		// a-b: 約2.5km, b-c: 約2.5km, a-c: 約5km
		pois := []*model.POI{
			poiAt("a", model.CategoryAttraction, kawaramachiLat, kawaramachiLng),
			poiAt("b", model.CategoryAttraction, kawaramachiLat+0.0225, kawaramachiLng),
			poiAt("c", model.CategoryAttraction, kawaramachiLat+0.045, kawaramachiLng),
		}

		clusters := clusterer.Cluster(pois)

		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"a", "b"}, clusters[0].MemberIDs())
		assert.Equal(t, []string{"c"}, clusters[1].MemberIDs())
	})

	t.Run("位置情報付きPOIはちょうど1回ずつ現れる", func(t *testing.T) {
		var pois []*model.POI
		for i := 0; i < 20; i++ {
			id := string(rune('a' + i))
			pois = append(pois, poiAt(id, model.CategoryOther, kawaramachiLat+float64(i%5)*0.02, kawaramachiLng+float64(i/5)*0.03))
		}
		pois = append(pois, poiWithoutCoordinates("none", model.CategoryOther))

		seen := map[string]int{}
		for _, c := range clusterer.Cluster(pois) {
			for _, id := range c.MemberIDs() {
				seen[id]++
			}
		}

		assert.Len(t, seen, 20)
		for id, n := range seen {
			assert.Equal(t, 1, n, id)
		}
		assert.NotContains(t, seen, "none")
	})

	t.Run("クラスタ名は先頭メンバーの住所から作る", func(t *testing.T) {
		first := poiAt("a", model.CategoryAttraction, kawaramachiLat, kawaramachiLng)
		first.Address = "Shijo-dori, Nakagyo Ward, Kyoto, Japan"

		clusters := clusterer.Cluster([]*model.POI{first})

		require.Len(t, clusters, 1)
		assert.Equal(t, "Kyoto area", clusters[0].Name)
		assert.Equal(t, "cluster-1", clusters[0].ID)
	})

	t.Run("空の入力", func(t *testing.T) {
		assert.Empty(t, clusterer.Cluster(nil))
	})
}

func TestProximityClusterer_Refresh(t *testing.T) {
	clusterer := NewProximityClusterer(0)
	assert.Equal(t, 3.0, clusterer.RadiusKm())

	cluster := model.Cluster{Members: []*model.POI{
		poiAt("a", model.CategoryViewpoint, 35.0, 135.0),
		poiAt("b", model.CategoryMarket, 35.2, 135.2),
	}}
	clusterer.Refresh(&cluster)

	assert.InDelta(t, 35.1, cluster.Centroid.Latitude, 1e-9)
	assert.InDelta(t, 135.1, cluster.Centroid.Longitude, 1e-9)
	assert.Equal(t, 45+60, cluster.SuggestedDurationMinutes)
}
