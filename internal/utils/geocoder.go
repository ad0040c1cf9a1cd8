package utils

import (
	"net/http"
	"os"
	"strings"
	"time"

	"resource-map/internal/amap"
	"resource-map/internal/geocode"
	"resource-map/internal/gmaps"
	"resource-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// 文档注释：按环境变量选择地理编码服务商
// 背景：GEOCODER 取 google|amap，缺省时按已配置的密钥推断（Google 优先）；结果外包两级缓存。
// 约束：未配置任何密钥时返回 nil，调用方据此让地址点位保持 Unresolved；rc 可为 nil。
func GeocoderFromEnv(rc *redis.Client) (geocode.Geocoder, string) {
	client := &http.Client{Timeout: 5 * time.Second}
	name := strings.ToLower(os.Getenv("GEOCODER"))
	gkey := os.Getenv("GOOGLE_MAPS_KEY")
	akey := os.Getenv("AMAP_SERVER_KEY")
	if name == "" {
		switch {
		case gkey != "":
			name = "google"
		case akey != "":
			name = "amap"
		}
	}
	var inner geocode.Geocoder
	switch name {
	case "google":
		if gkey != "" {
			inner = gmaps.NewClient(gkey, client)
		}
	case "amap":
		if akey != "" {
			inner = amap.NewClient(akey, client)
		}
	}
	if inner == nil {
		logger.L().Info("geocoder_disabled", "geocoder", name)
		return nil, ""
	}
	ttl := time.Duration(EnvInt("GEOCODE_CACHE_TTL_S", 30*24*3600)) * time.Second
	lru := geocode.NewLRU(EnvInt("GEOCODE_CACHE_SIZE", 4096), ttl)
	logger.L().Info("geocoder_ready", "geocoder", name, "redis", rc != nil, "ttl_s", int(ttl.Seconds()))
	return geocode.NewCached(inner, lru, rc, ttl), name
}
