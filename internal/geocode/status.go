package geocode

import (
	"fmt"
	"sort"
	"sync"

	"resource-map/internal/metrics"
)

// Status：点位解析状态
type Status int

const (
	Unresolved Status = iota
	Resolving
	Resolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal：Resolved/Failed 不再迁移
func (s Status) Terminal() bool { return s == Resolved || s == Failed }

// 合法迁移：Unresolved→Resolving→Resolved|Failed，Unresolved→Failed（无法发起请求）；字面坐标直接登记为 Resolved
var transitions = map[Status][]Status{
	Unresolved: {Resolving, Failed},
	Resolving:  {Resolved, Failed},
}

// ErrTransition：非法状态迁移
type ErrTransition struct {
	PointID  string
	From, To Status
}

func (e *ErrTransition) Error() string {
	return fmt.Sprintf("point %q: illegal transition %s -> %s", e.PointID, e.From, e.To)
}

// 文档注释：点位状态表
// 背景：每个解析任务只写自己点位的状态；完成顺序任意，状态表加锁保证并发回调安全。
// 约束：Failed 为终态，失败点位永不放置标记，也不会被重新请求。
type Tracker struct {
	mu     sync.RWMutex
	states map[string]Status
}

func NewTracker() *Tracker { return &Tracker{states: make(map[string]Status)} }

// Register：登记初始状态；已登记的点位保持原状态并返回 false
func (t *Tracker) Register(pointID string, s Status) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.states[pointID]; ok {
		return false
	}
	t.states[pointID] = s
	t.publish()
	return true
}

// Move：执行状态迁移；非法迁移返回 *ErrTransition，状态不变
func (t *Tracker) Move(pointID string, to Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	from, ok := t.states[pointID]
	if !ok {
		from = Unresolved
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			t.states[pointID] = to
			t.publish()
			return nil
		}
	}
	return &ErrTransition{PointID: pointID, From: from, To: to}
}

// State：未登记的点位视为 Unresolved
func (t *Tracker) State(pointID string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[pointID]
}

// Snapshot：全部点位状态副本
func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.states))
	for k, v := range t.states {
		out[k] = v
	}
	return out
}

// IDs：处于指定状态的点位 ID，排序后返回
func (t *Tracker) IDs(s Status) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for id, st := range t.states {
		if st == s {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) publish() {
	counts := map[Status]int{}
	for _, s := range t.states {
		counts[s]++
	}
	for _, s := range []Status{Unresolved, Resolving, Resolved, Failed} {
		metrics.PointStates.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
