// 包 page：单个页面会话的事件处理；串行执行控件点击，重新求值并同步地图标记
package page

import (
	"context"
	"sync"

	"resource-map/internal/catalog"
	"resource-map/internal/filter"
	"resource-map/internal/geocode"
	"resource-map/internal/logger"
	"resource-map/internal/mapsync"
	"resource-map/internal/selection"
)

// 文档注释：页面会话
// 背景：点击事件逐个处理并运行至完成；地理编码完成回调只写登记表，不触发重新求值。
// 约束：reg 为 nil 表示地图未初始化，此时只计算可见条目不同步标记；选择状态不跨会话保存。
type Page struct {
	mu   sync.Mutex
	cat  *catalog.Catalog
	sel  selection.State
	reg  *mapsync.Registry
	last filter.Result
}

func New(cat *catalog.Catalog, reg *mapsync.Registry) *Page {
	return &Page{cat: cat, reg: reg}
}

// InitMap：为全部点位启动解析；字面坐标立即放置隐藏标记，地址点位异步解析
func (p *Page) InitMap(ctx context.Context, r *geocode.Resolver) *geocode.Batch {
	p.mu.Lock()
	reg := p.reg
	p.mu.Unlock()
	if reg == nil {
		return nil
	}
	return r.Start(ctx, reg, p.cat.Points)
}

// Click：按控件 ID 切换；控件不存在时返回 ok=false 且状态不变
func (p *Page) Click(toggleID string) (filter.Result, bool) {
	t, ok := p.cat.Toggle(toggleID)
	if !ok {
		logger.L().Debug("page_click_unknown", "toggle", toggleID)
		return p.Result(), false
	}
	return p.Toggle(t.Kind, t.ID), true
}

// Toggle：切换某集合中的 ID 并刷新
func (p *Page) Toggle(kind catalog.ToggleKind, id string) filter.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sel = p.sel.Toggle(kind, id)
	logger.L().Debug("page_toggle", "kind", kind, "id", id, "selected", p.sel.Has(kind, id))
	return p.refreshLocked()
}

// Refresh：按当前选择重新求值并同步标记
func (p *Page) Refresh() filter.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked()
}

func (p *Page) refreshLocked() filter.Result {
	r := filter.Evaluate(p.cat, p.sel)
	if p.reg != nil {
		mapsync.Sync(p.reg, r.Visible)
	}
	p.last = r
	return r
}

// Selection：当前选择状态
func (p *Page) Selection() selection.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sel
}

// Result：最近一次求值结果
func (p *Page) Result() filter.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Registry：页面持有的标记登记表，可能为 nil
func (p *Page) Registry() *mapsync.Registry { return p.reg }

// Center：地图初始中心与缩放级别
func (p *Page) Center() (catalog.Coordinates, int, bool) {
	c, ok := mapsync.Center(p.cat.Points)
	return c, mapsync.DefaultZoom, ok
}
