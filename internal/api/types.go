package api

import (
	"context"

	"resource-map/internal/catalog"
)

// 文档注释：目录读取契约
// 背景：文件源与数据库源实现同一组只读方法，主入口按配置择一注入。
type Source interface {
	Catalog(ctx context.Context) (*catalog.Catalog, error)
	Associations(ctx context.Context, id string) (map[string]string, error)
}

// resourceView：条目对外结构
type resourceView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Categories   []string `json:"categories"`
	Features     []string `json:"features"`
	Requirements []string `json:"requirements"`
	MapPoint     string   `json:"map_point,omitempty"`
}

// pointView：点位对外结构；Coords 仅在标记已放置时给出
type pointView struct {
	ID      string               `json:"id"`
	Address string               `json:"address"`
	Status  string               `json:"status"`
	Coords  *catalog.Coordinates `json:"coords,omitempty"`
	Popup   string               `json:"popup,omitempty"`
}

type mapView struct {
	City   string               `json:"city"`
	Center *catalog.Coordinates `json:"center,omitempty"`
	Zoom   int                  `json:"zoom"`
}
