// 包 mapsync：地图标记的归属登记与可见性同步；标记按点位 ID 持有，可见集合由标记状态派生
package mapsync

import (
	"sort"
	"sync"

	"resource-map/internal/catalog"
)

// Marker：地图标记原语，仅暴露二值可见性
type Marker interface {
	SetVisible(v bool)
	Visible() bool
}

// Pin：进程内标记实现，记录位置与弹窗内容
type Pin struct {
	PointID  string
	Position catalog.Coordinates
	Popup    string

	mu      sync.Mutex
	visible bool
}

func (p *Pin) SetVisible(v bool) {
	p.mu.Lock()
	p.visible = v
	p.mu.Unlock()
}

func (p *Pin) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// InfoWindow：全图共享的单个弹窗
type InfoWindow struct {
	Open    bool   `json:"open"`
	PointID string `json:"point_id,omitempty"`
	Content string `json:"content,omitempty"`
}

// 文档注释：标记登记表
// 背景：替代“以地址为键的全局映射”，每个点位至多一个标记；地理编码完成回调与点击事件可能并发，读写加锁。
// 约束：Place 新建的标记默认隐藏；未放置标记的点位（待解析/失败）不会出现在可见集合中。
type Registry struct {
	mu      sync.RWMutex
	markers map[string]*Pin
	info    InfoWindow
	render  func(catalog.MapPoint) string
}

// NewRegistry：render 为弹窗渲染函数，为空时直接使用点位原始 Popup 文本
func NewRegistry(render func(catalog.MapPoint) string) *Registry {
	if render == nil {
		render = func(p catalog.MapPoint) string { return p.Popup }
	}
	return &Registry{markers: make(map[string]*Pin), render: render}
}

// Place：为点位创建（或更新位置）标记；新建标记默认隐藏，已存在的标记保持当前可见性
func (r *Registry) Place(p catalog.MapPoint, at catalog.Coordinates) *Pin {
	content := r.render(p)
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.markers[p.ID]; ok {
		m.Position = at
		m.Popup = content
		return m
	}
	m := &Pin{PointID: p.ID, Position: at, Popup: content}
	r.markers[p.ID] = m
	return m
}

// Marker：按点位 ID 取标记
func (r *Registry) Marker(pointID string) (*Pin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[pointID]
	return m, ok
}

// Len：已放置的标记数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markers)
}

// HideAll：关闭弹窗并隐藏全部标记
func (r *Registry) HideAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = InfoWindow{}
	for _, m := range r.markers {
		m.SetVisible(false)
	}
}

// Show：显示指定点位的标记；标记不存在时返回 false
func (r *Registry) Show(pointID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[pointID]
	if !ok {
		return false
	}
	m.SetVisible(true)
	return true
}

// Open：模拟点击标记，在其上打开弹窗；标记不存在或不可见时返回 false
func (r *Registry) Open(pointID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[pointID]
	if !ok || !m.Visible() {
		return false
	}
	r.info = InfoWindow{Open: true, PointID: pointID, Content: m.Popup}
	return true
}

// Info：当前弹窗状态
func (r *Registry) Info() InfoWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Visible：可见标记的点位 ID（排序后返回）
func (r *Registry) Visible() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for id, m := range r.markers {
		if m.Visible() {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Pins：全部标记快照，按点位 ID 排序
func (r *Registry) Pins() []*Pin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Pin, 0, len(r.markers))
	for _, m := range r.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointID < out[j].PointID })
	return out
}
