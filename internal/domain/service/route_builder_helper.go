package service

import (
	"Itinerary-App/internal/domain/helper"
	"Itinerary-App/internal/domain/model"
)

// RouteBuilderHelper はクラスタ内・クラスタ間の訪問順を貪欲な最近傍法で組み立てる
// 巡回セールスマン問題の厳密解ではなく O(n²) の近似である
type RouteBuilderHelper struct{}

// NewRouteBuilderHelper は新しいRouteBuilderHelperインスタンスを作成する
func NewRouteBuilderHelper() *RouteBuilderHelper {
	return &RouteBuilderHelper{}
}

// RouteWithinCluster はクラスタ内のPOIを先頭から最近傍順に並べ替える（入力の順列を返す）
func (h *RouteBuilderHelper) RouteWithinCluster(pois []*model.POI) []*model.POI {
	return nearestNeighborOrder(pois, func(p *model.POI) (model.GeoPoint, bool) {
		return p.Point()
	})
}

// SequenceClusters はクラスタの重心を使ってクラスタ同士の訪問順を決める
func (h *RouteBuilderHelper) SequenceClusters(clusters []model.Cluster) []model.Cluster {
	return nearestNeighborOrder(clusters, func(c model.Cluster) (model.GeoPoint, bool) {
		return c.Centroid, true
	})
}

// Flatten は並び替え済みクラスタを1本の訪問順に展開する
func (h *RouteBuilderHelper) Flatten(clusters []model.Cluster) []*model.POI {
	var ordered []*model.POI
	for _, c := range clusters {
		ordered = append(ordered, c.Members...)
	}
	return ordered
}

// nearestNeighborOrder は入力先頭から、直前に置いた要素に最も近い未訪問要素を繰り返し選ぶ
// 同距離の場合は入力順で先の要素を選ぶ。位置を持たない要素は最後に元の順序で追加する
func nearestNeighborOrder[T any](items []T, locate func(T) (model.GeoPoint, bool)) []T {
	if len(items) <= 2 {
		return append([]T(nil), items...)
	}

	used := make([]bool, len(items))
	ordered := make([]T, 0, len(items))
	ordered = append(ordered, items[0])
	used[0] = true

	for {
		current, hasCurrent := locate(ordered[len(ordered)-1])
		best := -1
		bestDist := 0.0
		for i, item := range items {
			if used[i] {
				continue
			}
			pt, ok := locate(item)
			if !ok {
				continue
			}
			if !hasCurrent {
				// 直前の要素が位置を持たない場合は入力順で次の候補を採用
				best = i
				break
			}
			d := helper.DistanceKm(current, pt)
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		ordered = append(ordered, items[best])
	}

	for i, item := range items {
		if !used[i] {
			ordered = append(ordered, item)
		}
	}
	return ordered
}
