// 包 catalog：资源条目、地图点位与筛选控件的静态数据模型；只读，加载后在进程内共享
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ToggleKind：筛选控件归属的选择集合
type ToggleKind string

const (
	KindFeature     ToggleKind = "feature"
	KindCategory    ToggleKind = "category"
	KindRequirement ToggleKind = "requirement"
)

// ToggleStyle：控件外观；仅复选框样式的分类会生成“当前筛选”徽标
type ToggleStyle string

const (
	StyleButton   ToggleStyle = "button"
	StyleCheckbox ToggleStyle = "checkbox"
)

var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrUnknownPoint = errors.New("unknown map point")
	ErrBadToggle    = errors.New("bad toggle")
)

// 文档注释：筛选控件
// 背景：页面上每个按钮/复选框对应一个稳定 ID、可读标签与图标名；点击后 ID 进入对应的选择集合。
type Toggle struct {
	ID    string      `yaml:"id" json:"id"`
	Kind  ToggleKind  `yaml:"kind" json:"kind"`
	Style ToggleStyle `yaml:"style" json:"style"`
	Label string      `yaml:"label" json:"label"`
	Icon  string      `yaml:"icon" json:"icon"`
}

// Coordinates：WGS84 经纬度
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// 文档注释：地图点位
// 约束：Lat/Lng 同时给出才视为字面坐标；否则需要按 Address 地理编码。
type MapPoint struct {
	ID      string   `yaml:"id" json:"id"`
	Address string   `yaml:"address" json:"address"`
	Lat     *float64 `yaml:"lat,omitempty" json:"lat,omitempty"`
	Lng     *float64 `yaml:"lng,omitempty" json:"lng,omitempty"`
	Popup   string   `yaml:"popup,omitempty" json:"popup,omitempty"`
}

// Literal：返回字面坐标；缺任一分量时 ok=false
func (p MapPoint) Literal() (Coordinates, bool) {
	if p.Lat == nil || p.Lng == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *p.Lat, Lng: *p.Lng}, true
}

// 文档注释：资源条目
// 约束：Requirements 为排斥性标签，命中任一已选要求即隐藏；MapPoint 为空表示无地图点位。
type Entry struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Categories   []string          `yaml:"categories" json:"categories"`
	Features     []string          `yaml:"features" json:"features"`
	Requirements []string          `yaml:"requirements" json:"requirements"`
	MapPoint     string            `yaml:"map_point,omitempty" json:"map_point,omitempty"`
	Details      map[string]string `yaml:"details,omitempty" json:"details,omitempty"`
}

func (e Entry) HasCategory(tag string) bool    { return slices.Contains(e.Categories, tag) }
func (e Entry) HasFeature(tag string) bool     { return slices.Contains(e.Features, tag) }
func (e Entry) HasRequirement(tag string) bool { return slices.Contains(e.Requirements, tag) }

// Catalog：一座城市的完整目录
type Catalog struct {
	City    string     `yaml:"city" json:"city"`
	Entries []Entry    `yaml:"entries" json:"entries"`
	Points  []MapPoint `yaml:"points" json:"points"`
	Toggles []Toggle   `yaml:"toggles" json:"toggles"`
}

// Toggle：按控件 ID 查找
func (c *Catalog) Toggle(id string) (Toggle, bool) {
	for _, t := range c.Toggles {
		if t.ID == id {
			return t, true
		}
	}
	return Toggle{}, false
}

// Point：按点位 ID 查找
func (c *Catalog) Point(id string) (MapPoint, bool) {
	for _, p := range c.Points {
		if p.ID == id {
			return p, true
		}
	}
	return MapPoint{}, false
}

func (c *Catalog) Entry(id string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// 文档注释：校验目录一致性
// 约束：条目/点位/控件 ID 各自唯一；条目引用的点位必须存在；控件 kind/style 取值合法。
// 返回：所有问题合并为一个错误，便于一次性修正数据文件。
func (c *Catalog) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for _, e := range c.Entries {
		if e.ID == "" {
			errs = append(errs, errors.New("entry with empty id"))
			continue
		}
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("entry %q: %w", e.ID, ErrDuplicateID))
		}
		seen[e.ID] = true
	}
	points := map[string]bool{}
	for _, p := range c.Points {
		if points[p.ID] {
			errs = append(errs, fmt.Errorf("point %q: %w", p.ID, ErrDuplicateID))
		}
		points[p.ID] = true
	}
	for _, e := range c.Entries {
		if e.MapPoint != "" && !points[e.MapPoint] {
			errs = append(errs, fmt.Errorf("entry %q references %q: %w", e.ID, e.MapPoint, ErrUnknownPoint))
		}
	}
	toggles := map[string]bool{}
	for _, t := range c.Toggles {
		if toggles[t.ID] {
			errs = append(errs, fmt.Errorf("toggle %q: %w", t.ID, ErrDuplicateID))
		}
		toggles[t.ID] = true
		switch t.Kind {
		case KindFeature, KindCategory, KindRequirement:
		default:
			errs = append(errs, fmt.Errorf("toggle %q kind %q: %w", t.ID, t.Kind, ErrBadToggle))
		}
		switch t.Style {
		case StyleButton, StyleCheckbox:
		default:
			errs = append(errs, fmt.Errorf("toggle %q style %q: %w", t.ID, t.Style, ErrBadToggle))
		}
	}
	return errors.Join(errs...)
}

// NormalizeTag：将 "Dental Care" 形式的描述值转为 "dental_care" 标签
func NormalizeTag(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
