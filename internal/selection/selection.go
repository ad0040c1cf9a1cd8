// 包 selection：三组选择集合（分类/特性/要求）的不可变值；每次切换返回新值，不共享可变状态
package selection

import (
	"slices"

	"resource-map/internal/catalog"
)

// 文档注释：选择状态
// 约束：每个集合内 ID 唯一且保持选择顺序（徽标按此顺序展示）；零值即“全部未选”。
type State struct {
	categories   []string
	features     []string
	requirements []string
}

// Toggle：已选则移除，未选则追加到末尾；返回新状态，原值不变
// 约束：未知 kind 原样返回
func (s State) Toggle(kind catalog.ToggleKind, id string) State {
	out := s.clone()
	switch kind {
	case catalog.KindCategory:
		out.categories = flip(out.categories, id)
	case catalog.KindFeature:
		out.features = flip(out.features, id)
	case catalog.KindRequirement:
		out.requirements = flip(out.requirements, id)
	}
	return out
}

func flip(list []string, id string) []string {
	if i := slices.Index(list, id); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return append(list, id)
}

func (s State) clone() State {
	return State{
		categories:   slices.Clone(s.categories),
		features:     slices.Clone(s.features),
		requirements: slices.Clone(s.requirements),
	}
}

// Has：判断某 ID 是否在对应集合中
func (s State) Has(kind catalog.ToggleKind, id string) bool {
	switch kind {
	case catalog.KindCategory:
		return slices.Contains(s.categories, id)
	case catalog.KindFeature:
		return slices.Contains(s.features, id)
	case catalog.KindRequirement:
		return slices.Contains(s.requirements, id)
	}
	return false
}

func (s State) Categories() []string   { return slices.Clone(s.categories) }
func (s State) Features() []string     { return slices.Clone(s.features) }
func (s State) Requirements() []string { return slices.Clone(s.requirements) }

// Empty：三组集合均为空
func (s State) Empty() bool {
	return len(s.categories) == 0 && len(s.features) == 0 && len(s.requirements) == 0
}

// Equal：按集合内容比较，忽略顺序
func (s State) Equal(o State) bool {
	return sameSet(s.categories, o.categories) && sameSet(s.features, o.features) && sameSet(s.requirements, o.requirements)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}
