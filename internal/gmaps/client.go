// 包 gmaps：Google Geocoding API 客户端，实现 geocode.Geocoder
package gmaps

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
	"strings"
	"time"
)

const defaultBase = "https://maps.googleapis.com"

// GeoResponse：仅解析状态与首个候选的几何位置
type GeoResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type Client struct {
	key    string
	base   string
	client *http.Client
}

func NewClient(key string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{key: key, base: defaultBase, client: client}
}

func (c *Client) WithBase(base string) *Client {
	c.base = strings.TrimRight(base, "/")
	return c
}

// 文档注释：地址地理编码
// 约束：status 非 "OK"（含 ZERO_RESULTS）一律返回 *geocode.StatusError；不重试。
func (c *Client) Geocode(ctx context.Context, address string) (catalog.Coordinates, error) {
	var zero catalog.Coordinates
	if c.key == "" {
		return zero, errors.New("missing key")
	}
	if strings.TrimSpace(address) == "" {
		return zero, geocode.ErrEmptyAddress
	}
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/maps/api/geocode/json?"+q.Encode(), nil)
	if err != nil {
		return zero, err
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.WithLabelValues("google").Inc()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.L().Error("gmaps_http_error", "err", err)
		metrics.GeocodeFailTotal.WithLabelValues("google", "http").Inc()
		return zero, err
	}
	defer resp.Body.Close()
	var r GeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.L().Error("gmaps_decode_error", "err", err)
		metrics.GeocodeFailTotal.WithLabelValues("google", "decode").Inc()
		return zero, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.GeocodeDurationMs.WithLabelValues("google").Observe(float64(dur))
	logger.L().Debug("gmaps_resp", "address", address, "status", r.Status, "results", len(r.Results), "duration_ms", dur)
	if r.Status != "OK" {
		metrics.GeocodeFailTotal.WithLabelValues("google", r.Status).Inc()
		return zero, &geocode.StatusError{Provider: "google", Status: r.Status, Info: r.ErrorMessage}
	}
	if len(r.Results) == 0 {
		metrics.GeocodeFailTotal.WithLabelValues("google", "empty").Inc()
		return zero, geocode.ErrNoResult
	}
	loc := r.Results[0].Geometry.Location
	metrics.GeocodeSuccessTotal.WithLabelValues("google").Inc()
	return catalog.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
