package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resource-map/internal/catalog"
	"resource-map/internal/geocode"
	"resource-map/internal/mapsync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	c       *catalog.Catalog
	details map[string]map[string]string
	err     error
}

func (m *memSource) Catalog(ctx context.Context) (*catalog.Catalog, error) { return m.c, m.err }

func (m *memSource) Associations(ctx context.Context, id string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[string]string{}
	for k, v := range m.details[id] {
		out[k] = v
	}
	return out, nil
}

func f(v float64) *float64 { return &v }

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		City: "Seattle, Washington",
		Entries: []catalog.Entry{
			{ID: "1", Name: "Clinic", Categories: []string{"health"}, Features: []string{"free"}, MapPoint: "p1"},
			{ID: "2", Name: "Pantry", Categories: []string{"food"}, MapPoint: "p2"},
		},
		Points: []catalog.MapPoint{
			{ID: "p1", Address: "1 First Ave", Lat: f(47.6), Lng: f(-122.3)},
			{ID: "p2", Address: "2 Second Ave"},
		},
		Toggles: []catalog.Toggle{
			{ID: "health", Kind: catalog.KindCategory, Style: catalog.StyleCheckbox, Label: "Health"},
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestResources(t *testing.T) {
	h := BuildRoutes(&memSource{c: testCatalog()}, nil, nil)
	rr := get(t, h, "/resources")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("content-type"), "application/json")
	var out []resourceView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Clinic", out[0].Name)
	assert.Equal(t, []string{}, out[1].Features)
}

func TestAssociations(t *testing.T) {
	src := &memSource{c: testCatalog(), details: map[string]map[string]string{"1": {"hours": "9-5"}}}
	h := BuildRoutes(src, nil, nil)
	rr := get(t, h, "/associations/1")
	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "9-5", out["hours"])

	rr = get(t, h, "/associations/unknown")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestToggles(t *testing.T) {
	h := BuildRoutes(&memSource{c: testCatalog()}, nil, nil)
	rr := get(t, h, "/toggles")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []catalog.Toggle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, catalog.StyleCheckbox, out[0].Style)
}

func TestMapPoints_StatusAndCoords(t *testing.T) {
	c := testCatalog()
	reg := mapsync.NewRegistry(nil)
	tr := geocode.NewTracker()
	tr.Register("p1", geocode.Resolved)
	tr.Register("p2", geocode.Unresolved)
	lit, _ := c.Points[0].Literal()
	reg.Place(c.Points[0], lit)

	h := BuildRoutes(&memSource{c: c}, tr, reg)
	rr := get(t, h, "/map-points")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []pointView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "resolved", out[0].Status)
	require.NotNil(t, out[0].Coords)
	assert.InDelta(t, 47.6, out[0].Coords.Lat, 1e-9)
	assert.Equal(t, "unresolved", out[1].Status)
	assert.Nil(t, out[1].Coords)
}

func TestMapCenter(t *testing.T) {
	h := BuildRoutes(&memSource{c: testCatalog()}, nil, nil)
	rr := get(t, h, "/map")
	require.Equal(t, http.StatusOK, rr.Code)
	var out mapView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Seattle, Washington", out.City)
	assert.Equal(t, mapsync.DefaultZoom, out.Zoom)
	require.NotNil(t, out.Center)
	assert.InDelta(t, -122.3, out.Center.Lng, 1e-9)
}

func TestSourceError(t *testing.T) {
	h := BuildRoutes(&memSource{err: errors.New("db down")}, nil, nil)
	for _, p := range []string{"/resources", "/toggles", "/map-points", "/map", "/associations/1"} {
		rr := get(t, h, p)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, p)
	}
}

func TestFileSource(t *testing.T) {
	h := BuildRoutes(&catalog.FileSource{Path: "../../data/catalog.yaml"}, nil, nil)
	rr := get(t, h, "/resources")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []resourceView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.NotEmpty(t, out)
}
