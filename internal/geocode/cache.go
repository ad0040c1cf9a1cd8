package geocode

import (
	"container/list"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"resource-map/internal/catalog"
	"resource-map/internal/logger"
	"resource-map/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// 文档注释：进程内 LRU（地址为键）
// 背景：同一地址常被多个点位或多次启动引用，进程内缓存避免重复请求服务商；TTL 可调。
// 约束：仅缓存成功结果；键由 cacheKey 归一化。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type lruItem struct {
	k   string
	v   catalog.Coordinates
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1024
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(k string) (catalog.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return catalog.Coordinates{}, false
	}
	it := e.Value.(lruItem)
	if c.now().Before(it.exp) {
		c.lst.MoveToFront(e)
		return it.v, true
	}
	c.lst.Remove(e)
	delete(c.dict, k)
	return catalog.Coordinates{}, false
}

func (c *LRU) Set(k string, v catalog.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := lruItem{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(lruItem).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

func cacheKey(address string) string {
	return "geo:" + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// 文档注释：带两级缓存的地理编码器
// 背景：进程内 LRU 优先，其次 Redis 共享缓存，最后请求服务商；成功结果回填两级缓存。
// 约束：失败不缓存（点位已进入 Failed 终态，本进程不会再次请求）；Redis 为 nil 时仅使用进程内缓存；Redis 错误静默降级。
type Cached struct {
	inner Geocoder
	lru   *LRU
	rc    *redis.Client
	ttl   time.Duration
}

func NewCached(inner Geocoder, lru *LRU, rc *redis.Client, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Cached{inner: inner, lru: lru, rc: rc, ttl: ttl}
}

func (c *Cached) Geocode(ctx context.Context, address string) (catalog.Coordinates, error) {
	key := cacheKey(address)
	if c.lru != nil {
		if v, ok := c.lru.Get(key); ok {
			metrics.GeocodeCacheHitsTotal.WithLabelValues("lru").Inc()
			return v, nil
		}
	}
	if c.rc != nil {
		if s, _ := c.rc.Get(ctx, key).Result(); s != "" {
			var v catalog.Coordinates
			if err := json.Unmarshal([]byte(s), &v); err == nil {
				metrics.GeocodeCacheHitsTotal.WithLabelValues("redis").Inc()
				if c.lru != nil {
					c.lru.Set(key, v)
				}
				return v, nil
			}
		}
	}
	metrics.GeocodeCacheMissesTotal.Inc()
	v, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return v, err
	}
	if c.lru != nil {
		c.lru.Set(key, v)
	}
	if c.rc != nil {
		b, _ := json.Marshal(v)
		if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
			logger.L().Debug("geocode_cache_write_error", "err", err)
		}
	}
	return v, nil
}
