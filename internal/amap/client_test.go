package amap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-map/internal/geocode"
)

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/geocode/geo", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.NotEmpty(t, r.URL.Query().Get("address"))
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeocode_OK(t *testing.T) {
	srv := serve(t, `{"status":"1","info":"OK","infocode":"10000","count":"1","geocodes":[{"formatted_address":"北京市朝阳区阜通东大街6号","location":"116.480881,39.989410"}]}`)
	c := NewClient("k", srv.Client()).WithBase(srv.URL)

	got, err := c.Geocode(context.Background(), "北京市朝阳区阜通东大街6号")
	require.NoError(t, err)
	assert.InDelta(t, 39.989410, got.Lat, 1e-9)
	assert.InDelta(t, 116.480881, got.Lng, 1e-9)
}

func TestGeocode_StatusError(t *testing.T) {
	srv := serve(t, `{"status":"0","info":"INVALID_USER_KEY","infocode":"10001"}`)
	c := NewClient("k", srv.Client()).WithBase(srv.URL)

	_, err := c.Geocode(context.Background(), "somewhere")
	var se *geocode.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "10001", se.Status)
	assert.Equal(t, "amap", se.Provider)
}

func TestGeocode_NoResult(t *testing.T) {
	srv := serve(t, `{"status":"1","info":"OK","infocode":"10000","count":"0","geocodes":[]}`)
	c := NewClient("k", srv.Client()).WithBase(srv.URL)

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, geocode.ErrNoResult)
}

func TestGeocode_InputChecks(t *testing.T) {
	_, err := NewClient("", nil).Geocode(context.Background(), "x")
	assert.Error(t, err)
	_, err = NewClient("k", nil).Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, geocode.ErrEmptyAddress)
}

func TestParseLocation(t *testing.T) {
	c, err := parseLocation("116.1, 39.2")
	require.NoError(t, err)
	assert.Equal(t, 39.2, c.Lat)
	assert.Equal(t, 116.1, c.Lng)
	_, err = parseLocation("garbage")
	assert.Error(t, err)
}
