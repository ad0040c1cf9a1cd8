// 包 geocode：地址到坐标的解析；包含服务商契约、缓存与按点位拆分的解析任务
package geocode

import (
	"context"
	"errors"
	"fmt"

	"resource-map/internal/catalog"
)

var (
	ErrEmptyAddress = errors.New("empty address")
	ErrNoResult     = errors.New("no geocoding result")
)

// Geocoder：地图服务的地理编码契约
type Geocoder interface {
	Geocode(ctx context.Context, address string) (catalog.Coordinates, error)
}

// GeocoderFunc：函数适配器
type GeocoderFunc func(ctx context.Context, address string) (catalog.Coordinates, error)

func (f GeocoderFunc) Geocode(ctx context.Context, address string) (catalog.Coordinates, error) {
	return f(ctx, address)
}

// 文档注释：服务商返回的非成功状态
// 约束：Status 保留服务商原始状态码（如 ZERO_RESULTS、INVALID_USER_KEY），用于日志与指标分类。
type StatusError struct {
	Provider string
	Status   string
	Info     string
}

func (e *StatusError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s geocode status %s: %s", e.Provider, e.Status, e.Info)
	}
	return fmt.Sprintf("%s geocode status %s", e.Provider, e.Status)
}

// StatusOf：提取失败状态码，非 StatusError 归为 "error"
func StatusOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
