// 包 filter：根据选择状态计算可见条目，并生成“当前筛选”徽标
package filter

import (
	"resource-map/internal/catalog"
	"resource-map/internal/metrics"
	"resource-map/internal/selection"
)

// Badge：打印视图中展示的已选分类
type Badge struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Result：一次求值的输出
type Result struct {
	Visible []catalog.Entry `json:"visible"`
	Badges  []Badge         `json:"badges"`
}

// VisibleIDs：可见条目 ID，按条目原顺序
func (r Result) VisibleIDs() []string {
	out := make([]string, 0, len(r.Visible))
	for _, e := range r.Visible {
		out = append(out, e.ID)
	}
	return out
}

// 文档注释：单条目判定
// 约束：分类与特性均未选时恒为 false；特性取交（全部命中），分类取并（命中任一），要求为排除（命中任一即隐藏）。
func Matches(e catalog.Entry, sel selection.State) bool {
	cats := sel.Categories()
	feats := sel.Features()
	if len(cats) == 0 && len(feats) == 0 {
		return false
	}
	for _, f := range feats {
		if !e.HasFeature(f) {
			return false
		}
	}
	if len(cats) > 0 {
		hit := false
		for _, c := range cats {
			if e.HasCategory(c) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, r := range sel.Requirements() {
		if e.HasRequirement(r) {
			return false
		}
	}
	return true
}

// ComputeVisible：返回满足选择的条目子集，保持输入顺序
func ComputeVisible(entries []catalog.Entry, sel selection.State) []catalog.Entry {
	var out []catalog.Entry
	for _, e := range entries {
		if Matches(e, sel) {
			out = append(out, e)
		}
	}
	return out
}

// Badges：按选择顺序为复选框样式的已选分类生成徽标；按钮样式或目录中不存在的控件跳过
func Badges(c *catalog.Catalog, sel selection.State) []Badge {
	var out []Badge
	for _, id := range sel.Categories() {
		t, ok := c.Toggle(id)
		if !ok || t.Style != catalog.StyleCheckbox {
			continue
		}
		out = append(out, Badge{ID: t.ID, Label: t.Label, Icon: t.Icon})
	}
	return out
}

// Evaluate：计算可见条目与徽标
func Evaluate(c *catalog.Catalog, sel selection.State) Result {
	r := Result{Visible: ComputeVisible(c.Entries, sel), Badges: Badges(c, sel)}
	metrics.FilterEvaluationsTotal.Inc()
	metrics.VisibleEntries.Set(float64(len(r.Visible)))
	return r
}
