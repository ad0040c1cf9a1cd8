package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resmap_geocode_requests_total",
		Help: "Total geocoding requests by provider",
	}, []string{"provider"})
	GeocodeSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resmap_geocode_success_total",
		Help: "Total geocoding successes by provider",
	}, []string{"provider"})
	GeocodeFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resmap_geocode_fail_total",
		Help: "Total geocoding failures by provider and status",
	}, []string{"provider", "status"})
	GeocodeDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resmap_geocode_duration_ms",
		Help:    "Geocoding call duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000},
	}, []string{"provider"})
	GeocodeCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resmap_geocode_cache_hits_total",
		Help: "Geocode cache hits by tier (lru, redis)",
	}, []string{"tier"})
	GeocodeCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resmap_geocode_cache_misses_total",
		Help: "Geocode cache misses",
	})
	PointStates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resmap_point_states",
		Help: "Map points by resolution state",
	}, []string{"state"})
	FilterEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resmap_filter_evaluations_total",
		Help: "Total filter evaluations",
	})
	VisibleEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "resmap_visible_entries",
		Help: "Entries visible after the last evaluation",
	})
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resmap_api_requests_total",
		Help: "Total API requests by route",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeSuccessTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheHitsTotal)
	prometheus.MustRegister(GeocodeCacheMissesTotal)
	prometheus.MustRegister(PointStates)
	prometheus.MustRegister(FilterEvaluationsTotal)
	prometheus.MustRegister(VisibleEntries)
	prometheus.MustRegister(APIRequestsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
