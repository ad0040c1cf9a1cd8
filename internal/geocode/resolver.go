package geocode

import (
	"context"
	"errors"

	"resource-map/internal/catalog"
	"resource-map/internal/logger"
	"resource-map/internal/mapsync"

	"golang.org/x/sync/errgroup"
)

var errNoGeocoder = errors.New("no geocoder configured")

// Task：单个点位的解析任务
type Task struct {
	PointID string
	Address string
}

// Result：任务结果槽；Status 为任务结束时的状态
type Result struct {
	PointID string
	Status  Status
	Coords  catalog.Coordinates
	Err     error
}

// 文档注释：点位解析器
// 背景：每个仅有地址的点位拆为独立任务并发请求，完成顺序任意；任务只写自己的结果槽与自己的标记。
// 约束：不重试、不因选择变化取消；成功即放置默认隐藏的标记，失败只记日志与指标。
type Resolver struct {
	geocoder   Geocoder
	limit      int
	tracker    *Tracker
	onResolved func(catalog.MapPoint, catalog.Coordinates)
}

// NewResolver：limit<=0 时不限制并发；g 为 nil 时地址点位保持 Unresolved
func NewResolver(g Geocoder, limit int) *Resolver {
	return &Resolver{geocoder: g, limit: limit, tracker: NewTracker()}
}

// Tracker：解析器持有的状态表
func (r *Resolver) Tracker() *Tracker { return r.tracker }

// OnResolved：注册成功回调（例如坐标回写），在标记放置之后调用
func (r *Resolver) OnResolved(fn func(catalog.MapPoint, catalog.Coordinates)) { r.onResolved = fn }

// Batch：一次 Start 发起的任务集合
type Batch struct {
	eg      errgroup.Group
	fed     chan struct{}
	results []Result
}

// Wait：等待全部任务结束并返回结果槽（与输入点位同序）
func (b *Batch) Wait() []Result {
	<-b.fed
	_ = b.eg.Wait()
	return b.results
}

// 文档注释：启动点位解析
// 背景：字面坐标点位同步登记为 Resolved 并放置隐藏标记；地址点位登记为 Unresolved 后异步排队，真正发出请求时才迁移到 Resolving。
// 约束：同一 Resolver 上重复 Start 时，已登记的点位不会再次请求；Start 本身不阻塞。
func (r *Resolver) Start(ctx context.Context, reg *mapsync.Registry, points []catalog.MapPoint) *Batch {
	b := &Batch{fed: make(chan struct{}), results: make([]Result, len(points))}
	if r.limit > 0 {
		b.eg.SetLimit(r.limit)
	}
	type pending struct {
		idx int
		p   catalog.MapPoint
	}
	var queue []pending
	for i, p := range points {
		b.results[i] = Result{PointID: p.ID, Status: r.tracker.State(p.ID)}
		if c, ok := p.Literal(); ok {
			if r.tracker.Register(p.ID, Resolved) {
				reg.Place(p, c)
			}
			b.results[i] = Result{PointID: p.ID, Status: Resolved, Coords: c}
			continue
		}
		if !r.tracker.Register(p.ID, Unresolved) && r.tracker.State(p.ID) != Unresolved {
			b.results[i].Status = r.tracker.State(p.ID)
			continue
		}
		if p.Address == "" {
			_ = r.tracker.Move(p.ID, Failed)
			b.results[i] = Result{PointID: p.ID, Status: Failed, Err: ErrEmptyAddress}
			logger.L().Info("geocode_skip", "point", p.ID, "reason", "empty_address")
			continue
		}
		if r.geocoder == nil {
			b.results[i] = Result{PointID: p.ID, Status: Unresolved, Err: errNoGeocoder}
			continue
		}
		queue = append(queue, pending{idx: i, p: p})
	}
	logger.L().Debug("geocode_batch_start", "points", len(points), "tasks", len(queue))
	go func() {
		defer close(b.fed)
		for _, q := range queue {
			q := q
			b.eg.Go(func() error {
				b.results[q.idx] = r.run(ctx, reg, q.p)
				return nil
			})
		}
	}()
	return b
}

func (r *Resolver) run(ctx context.Context, reg *mapsync.Registry, p catalog.MapPoint) Result {
	t := Task{PointID: p.ID, Address: p.Address}
	if err := r.tracker.Move(t.PointID, Resolving); err != nil {
		return Result{PointID: t.PointID, Status: r.tracker.State(t.PointID), Err: err}
	}
	c, err := r.geocoder.Geocode(ctx, t.Address)
	if err != nil {
		_ = r.tracker.Move(t.PointID, Failed)
		logger.L().Info("geocode_fail", "point", t.PointID, "address", t.Address, "status", StatusOf(err), "err", err)
		return Result{PointID: t.PointID, Status: Failed, Err: err}
	}
	reg.Place(p, c)
	_ = r.tracker.Move(t.PointID, Resolved)
	logger.L().Debug("geocode_ok", "point", t.PointID, "lat", c.Lat, "lng", c.Lng)
	if r.onResolved != nil {
		r.onResolved(p, c)
	}
	return Result{PointID: t.PointID, Status: Resolved, Coords: c}
}
