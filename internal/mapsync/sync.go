package mapsync

import (
	"resource-map/internal/catalog"
)

// DefaultZoom：初始缩放级别
const DefaultZoom = 11

// 文档注释：将标记可见性同步为可见条目集合
// 约束：先整体复位（关闭弹窗、隐藏全部），再逐条显示；条目无点位或点位尚无标记时跳过。
// 返回：实际显示的点位 ID（按条目顺序，可能重复出现同一点位）。
func Sync(r *Registry, visible []catalog.Entry) []string {
	r.HideAll()
	var shown []string
	for _, e := range visible {
		if e.MapPoint == "" {
			continue
		}
		if r.Show(e.MapPoint) {
			shown = append(shown, e.MapPoint)
		}
	}
	return shown
}

// 文档注释：计算地图初始中心
// 约束：仅统计字面坐标，且纬度与经度都非零；没有可统计点位时 ok=false。
func Center(points []catalog.MapPoint) (catalog.Coordinates, bool) {
	var sumLat, sumLng float64
	n := 0
	for _, p := range points {
		c, ok := p.Literal()
		if !ok || c.Lat == 0 || c.Lng == 0 {
			continue
		}
		sumLat += c.Lat
		sumLng += c.Lng
		n++
	}
	if n == 0 {
		return catalog.Coordinates{}, false
	}
	return catalog.Coordinates{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}, true
}
