// geocode-backfill：离线为数据库中仅有地址的资源解析坐标并回写，之后的加载即为字面坐标
package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resource-map/internal/catalog"
	"resource-map/internal/geocode"
	"resource-map/internal/logger"
	"resource-map/internal/migrate"
	"resource-map/internal/store"
	"resource-map/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：简单令牌桶限流（每分钟）
// 背景：受服务商配额限制，控制每分钟最大请求数；超出时阻塞等待下一分钟刷新。
type minuteLimiter struct {
	capacity int
	used     int
	lastMin  int64
	mu       sync.Mutex
	now      func() time.Time
}

func (ml *minuteLimiter) allow() bool {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	nowMin := ml.now().Unix() / 60
	if ml.lastMin != nowMin {
		ml.lastMin = nowMin
		ml.used = 0
	}
	if ml.used < ml.capacity {
		ml.used++
		return true
	}
	return false
}

// coordinateSink：坐标回写目标
type coordinateSink interface {
	SaveCoordinates(ctx context.Context, id string, c catalog.Coordinates) error
}

// pending：尚无字面坐标且地址非空的点位
func pending(c *catalog.Catalog) []catalog.MapPoint {
	var out []catalog.MapPoint
	for _, p := range c.Points {
		if _, ok := p.Literal(); ok || p.Address == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// 文档注释：并发解析并回写
// 约束：每个点位只请求一次，失败记日志后跳过；返回成功回写的数量。
func backfill(ctx context.Context, g geocode.Geocoder, sink coordinateSink, points []catalog.MapPoint, workers int, limiter *minuteLimiter) int {
	jobs := make(chan catalog.MapPoint, workers*4)
	var wg sync.WaitGroup
	var mu sync.Mutex
	saved := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				// 限流阻塞直到允许
				for !limiter.allow() {
					select {
					case <-ctx.Done():
						return
					case <-time.After(250 * time.Millisecond):
					}
				}
				cctx, cancel := context.WithTimeout(ctx, 6*time.Second)
				c, err := g.Geocode(cctx, p.Address)
				cancel()
				if err != nil {
					logger.L().Warn("backfill_geocode_fail", "point", p.ID, "address", p.Address, "status", geocode.StatusOf(err), "err", err)
					continue
				}
				if err := sink.SaveCoordinates(ctx, p.ID, c); err != nil {
					logger.L().Error("backfill_save_error", "point", p.ID, "err", err)
					continue
				}
				mu.Lock()
				saved++
				mu.Unlock()
				logger.L().Debug("backfill_ok", "point", p.ID, "lat", c.Lat, "lng", c.Lng)
			}
		}()
	}
	for _, p := range points {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
	return saved
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Info("backfill_start")

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	st := store.AttachDB(db, utils.EnvString("CATALOG_CITY", "Seattle, Washington"))

	rc := utils.OpenRedisFromEnv()
	if rc != nil {
		defer rc.Close()
	}
	g, name := utils.GeocoderFromEnv(rc)
	if g == nil {
		l.Error("geocoder_missing")
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := st.Catalog(ctx)
	if err != nil {
		l.Error("catalog_load_error", "err", err)
		os.Exit(1)
	}
	points := pending(c)
	limiter := &minuteLimiter{capacity: utils.EnvInt("BACKFILL_RATE_LIMIT_PER_MIN", 120), now: time.Now}
	saved := backfill(ctx, g, st, points, utils.EnvInt("BACKFILL_WORKERS", 4), limiter)
	l.Info("backfill_done", "geocoder", name, "total", len(points), "saved", saved)
}
