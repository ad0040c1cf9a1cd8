package amap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"resource-map/internal/catalog"
	"resource-map/internal/geocode"
	"resource-map/internal/logger"
	"resource-map/internal/metrics"
	"strconv"
	"strings"
	"time"
)

const defaultBase = "https://restapi.amap.com"

// 文档注释：高德地理编码响应结构
// 背景：对齐高德 REST API 的返回字段，仅解析坐标与格式化地址。
// 约束：status/infocode 用于错误判定与分类聚合；location 形如 "lng,lat"。
type GeoResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Count    string `json:"count"`
	Geocodes []struct {
		FormattedAddress string `json:"formatted_address"`
		Location         string `json:"location"`
	} `json:"geocodes"`
}

// Client：高德地理编码客户端
type Client struct {
	key    string
	base   string
	client *http.Client
}

// NewClient：client 为空时使用 5s 超时的默认客户端
func NewClient(key string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{key: key, base: defaultBase, client: client}
}

// WithBase：替换服务地址（测试或代理）
func (c *Client) WithBase(base string) *Client {
	c.base = strings.TrimRight(base, "/")
	return c
}

// 文档注释：地址地理编码（REST）
// 返回：首个候选的坐标；status!="1" 时返回 *geocode.StatusError（Status 为 infocode），无候选返回 geocode.ErrNoResult。
// 约束：不重试；错误由解析器统一记为失败。
func (c *Client) Geocode(ctx context.Context, address string) (catalog.Coordinates, error) {
	var zero catalog.Coordinates
	if c.key == "" {
		return zero, errors.New("missing key")
	}
	if strings.TrimSpace(address) == "" {
		return zero, geocode.ErrEmptyAddress
	}
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v3/geocode/geo?"+q.Encode(), nil)
	if err != nil {
		return zero, err
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.WithLabelValues("amap").Inc()
	logger.L().Debug("amap_req", "address", address)
	resp, err := c.client.Do(req)
	if err != nil {
		logger.L().Error("amap_http_error", "err", err)
		metrics.GeocodeFailTotal.WithLabelValues("amap", "http").Inc()
		return zero, err
	}
	defer resp.Body.Close()
	var r GeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("amap_decode_error", "err", err)
		metrics.GeocodeFailTotal.WithLabelValues("amap", "decode").Inc()
		return zero, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.WithLabelValues("amap").Observe(float64(dur))
	logger.L().Debug("amap_resp", "address", address, "status", r.Status, "infocode", r.Infocode, "count", r.Count, "duration_ms", dur)
	if r.Status != "1" {
		metrics.GeocodeFailTotal.WithLabelValues("amap", r.Infocode).Inc()
		return zero, &geocode.StatusError{Provider: "amap", Status: r.Infocode, Info: r.Info}
	}
	if len(r.Geocodes) == 0 {
		metrics.GeocodeFailTotal.WithLabelValues("amap", "empty").Inc()
		return zero, geocode.ErrNoResult
	}
	out, err := parseLocation(r.Geocodes[0].Location)
	if err != nil {
		metrics.GeocodeFailTotal.WithLabelValues("amap", "location").Inc()
		return zero, err
	}
	metrics.GeocodeSuccessTotal.WithLabelValues("amap").Inc()
	return out, nil
}

// parseLocation："116.480881,39.989410" → 坐标
func parseLocation(s string) (catalog.Coordinates, error) {
	lngS, latS, ok := strings.Cut(s, ",")
	if !ok {
		return catalog.Coordinates{}, errors.New("bad location")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return catalog.Coordinates{}, err
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return catalog.Coordinates{}, err
	}
	return catalog.Coordinates{Lat: lat, Lng: lng}, nil
}
