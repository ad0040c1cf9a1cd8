// 包 api：集中注册只读 HTTP API 路由以解耦主入口；选择与筛选在客户端完成，服务端只提供数据
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"resource-map/internal/catalog"
	"resource-map/internal/geocode"
	"resource-map/internal/logger"
	"resource-map/internal/mapsync"
	"resource-map/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// 文档注释：构建并返回 API 路由
// 背景：主入口挂载到 API_BASE 前缀下；tracker/reg 为空时点位一律按 unresolved 输出、不带坐标。
func BuildRoutes(src Source, tracker *geocode.Tracker, reg *mapsync.Registry) http.Handler {
	h := &handlers{src: src, tracker: tracker, reg: reg}
	r := chi.NewRouter()
	r.Get("/resources", h.resources)
	r.Get("/associations/{id}", h.associations)
	r.Get("/toggles", h.toggles)
	r.Get("/map-points", h.mapPoints)
	r.Get("/map", h.mapCenter)
	return r
}

type handlers struct {
	src     Source
	tracker *geocode.Tracker
	reg     *mapsync.Registry
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// load：读取目录，失败时直接写 500 并返回 nil
func (h *handlers) load(w http.ResponseWriter, r *http.Request, route string) *catalog.Catalog {
	metrics.APIRequestsTotal.WithLabelValues(route).Inc()
	c, err := h.src.Catalog(r.Context())
	if err != nil {
		logger.L().Error("catalog_load_error", "route", route, "err", err)
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return nil
	}
	return c
}

func (h *handlers) resources(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r, "resources")
	if c == nil {
		return
	}
	out := make([]resourceView, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, resourceView{
			ID:           e.ID,
			Name:         e.Name,
			Categories:   nonNil(e.Categories),
			Features:     nonNil(e.Features),
			Requirements: nonNil(e.Requirements),
			MapPoint:     e.MapPoint,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) associations(w http.ResponseWriter, r *http.Request) {
	metrics.APIRequestsTotal.WithLabelValues("associations").Inc()
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	m, err := h.src.Associations(r.Context(), id)
	if err != nil {
		logger.L().Error("associations_error", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "associations unavailable")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handlers) toggles(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r, "toggles")
	if c == nil {
		return
	}
	out := c.Toggles
	if out == nil {
		out = []catalog.Toggle{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) mapPoints(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r, "map_points")
	if c == nil {
		return
	}
	out := make([]pointView, 0, len(c.Points))
	for _, p := range c.Points {
		v := pointView{ID: p.ID, Address: p.Address, Status: geocode.Unresolved.String()}
		if h.tracker != nil {
			v.Status = h.tracker.State(p.ID).String()
		}
		if h.reg != nil {
			if pin, ok := h.reg.Marker(p.ID); ok {
				pos := pin.Position
				v.Coords = &pos
				v.Popup = pin.Popup
			}
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) mapCenter(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r, "map")
	if c == nil {
		return
	}
	v := mapView{City: c.City, Zoom: mapsync.DefaultZoom}
	if center, ok := mapsync.Center(c.Points); ok {
		v.Center = &center
	}
	writeJSON(w, http.StatusOK, v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
