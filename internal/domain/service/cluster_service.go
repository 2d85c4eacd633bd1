package service

import (
	"fmt"
	"strings"

	"Itinerary-App/internal/domain/helper"
	"Itinerary-App/internal/domain/model"
)

// ProximityClusterer は半径しきい値による近接クラスタリングを行う
type ProximityClusterer struct {
	radiusKm float64
}

// NewProximityClusterer は新しいProximityClustererを作成する
func NewProximityClusterer(radiusKm float64) *ProximityClusterer {
	if radiusKm <= 0 {
		radiusKm = DefaultPlannerSettings().ClusterRadiusKm
	}
	return &ProximityClusterer{radiusKm: radiusKm}
}

// RadiusKm クラスタ半径を返す
func (c *ProximityClusterer) RadiusKm() float64 {
	return c.radiusKm
}

// Cluster は入力順に1パスで貪欲にクラスタを作る
// シードから半径以内の未割り当てPOIを同じクラスタに加える（重心は逐次更新しない）
// 位置情報のないPOIはどのクラスタにも含まれない
func (c *ProximityClusterer) Cluster(pois []*model.POI) []model.Cluster {
	assigned := make([]bool, len(pois))
	var clusters []model.Cluster

	for i, seed := range pois {
		if assigned[i] || !seed.HasCoordinates() {
			continue
		}
		assigned[i] = true
		members := []*model.POI{seed}

		for j := i + 1; j < len(pois); j++ {
			if assigned[j] {
				continue
			}
			d, ok := helper.DistancePOIKm(seed, pois[j])
			if !ok || d > c.radiusKm {
				continue
			}
			assigned[j] = true
			members = append(members, pois[j])
		}

		cluster := model.Cluster{
			ID:      fmt.Sprintf("cluster-%d", len(clusters)+1),
			Name:    clusterName(seed),
			Members: members,
		}
		c.Refresh(&cluster)
		clusters = append(clusters, cluster)
	}
	return clusters
}

// Refresh はメンバー構成から重心・境界・推奨滞在時間を再計算する
func (c *ProximityClusterer) Refresh(cluster *model.Cluster) {
	points := helper.CoordinatesOf(cluster.Members)
	cluster.Centroid = helper.Centroid(points, cluster.Centroid)
	cluster.Bounds = helper.Bounds(points)

	total := 0
	for _, m := range cluster.Members {
		total += VisitDurationMinutes(m.Category)
	}
	cluster.SuggestedDurationMinutes = total
}

// clusterName は先頭メンバーの住所（地区部分）または名前からクラスタ名を作る
func clusterName(first *model.POI) string {
	parts := strings.Split(first.Address, ",")
	if len(parts) >= 2 {
		if district := strings.TrimSpace(parts[len(parts)-2]); district != "" {
			return district + " area"
		}
	}
	return first.Name + " area"
}
