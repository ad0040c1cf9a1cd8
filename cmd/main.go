// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"resource-map/internal/api"
	"resource-map/internal/catalog"
	"resource-map/internal/geocode"
	"resource-map/internal/ingest"
	"resource-map/internal/logger"
	"resource-map/internal/mapsync"
	"resource-map/internal/metrics"
	"resource-map/internal/middleware"
	"resource-map/internal/migrate"
	"resource-map/internal/store"
	"resource-map/internal/utils"
	"resource-map/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := utils.EnvString("API_BASE", "/api")
	l.Debug("config_api_base", "base", apiBase)
	ui := utils.EnvString("UI_DIST", filepath.Join("ui", "dist"))
	l.Debug("config_ui_dir", "dir", ui)
	catalogPath := utils.EnvString("CATALOG_PATH", filepath.Join("data", "catalog.yaml"))
	city := utils.EnvString("CATALOG_CITY", "Seattle, Washington")

	// 目录来源：配置了 PG_HOST 时使用数据库，否则读取目录文件
	var src api.Source
	var st *store.Store
	if utils.PostgresConfigured() {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		// 空库时从目录文件导入一次；文件缺失不阻断启动
		if os.Getenv("IMPORT_CATALOG_TO_DB") != "false" {
			if _, err := os.Stat(catalogPath); err == nil {
				if err := ingest.EnsureInitialized(context.Background(), db, catalogPath); err != nil {
					l.Error("catalog_import_error", "err", err)
				}
			}
		}
		st = store.AttachDB(db, city)
		src = st
	} else {
		l.Info("catalog_file", "path", catalogPath)
		src = &catalog.FileSource{Path: catalogPath}
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// 文档注释：后台解析地图点位
	// 背景：字面坐标立即放置标记，地址点位按并发上限异步请求；结果只写登记表与状态表，由 /map-points 暴露。
	g, _ := utils.GeocoderFromEnv(rc)
	resolver := geocode.NewResolver(g, utils.EnvInt("GEOCODE_CONCURRENCY", 4))
	if st != nil && os.Getenv("GEOCODE_WRITEBACK") == "true" {
		resolver.OnResolved(func(p catalog.MapPoint, c catalog.Coordinates) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.SaveCoordinates(ctx, p.ID, c); err != nil {
				l.Error("geocode_writeback_error", "point", p.ID, "err", err)
			}
		})
	}
	reg := mapsync.NewRegistry(catalog.PopupHTML)
	if cat, err := src.Catalog(context.Background()); err != nil {
		l.Error("catalog_load_error", "err", err)
	} else {
		b := resolver.Start(context.Background(), reg, cat.Points)
		go func() {
			results := b.Wait()
			failed := 0
			for _, r := range results {
				if r.Status == geocode.Failed {
					failed++
				}
			}
			l.Info("geocode_batch_done", "points", len(results), "failed", failed, "markers", reg.Len())
		}()
	}

	mux := http.NewServeMux()
	apiHandler := api.BuildRoutes(src, resolver.Tracker(), reg)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiHandler))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	fs := http.FileServer(http.Dir(ui))
	mux.Handle("/", fs)

	// NOTE: 向前端暴露 API 基础路径，避免硬编码；生产环境由后端统一提供
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'"))
		_, _ = w.Write([]byte("\n"))
		cityJSON, _ := json.Marshal(city)
		_, _ = w.Write([]byte("window.__CITY__=" + string(cityJSON)))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'"))
	})

	addr := utils.EnvString("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	l.Info("listening", "addr", addr, "commit", version.Commit)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
	}
}
