package gmaps

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
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "123 Main St", r.URL.Query().Get("address"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeocode_OK(t *testing.T) {
	srv := serve(t, `{"status":"OK","results":[{"formatted_address":"123 Main St, Seattle, WA","geometry":{"location":{"lat":47.6,"lng":-122.33}}}]}`)
	got, err := NewClient("k", srv.Client()).WithBase(srv.URL).Geocode(context.Background(), "123 Main St")
	require.NoError(t, err)
	assert.Equal(t, 47.6, got.Lat)
	assert.Equal(t, -122.33, got.Lng)
}

func TestGeocode_ZeroResults(t *testing.T) {
	srv := serve(t, `{"status":"ZERO_RESULTS","results":[]}`)
	_, err := NewClient("k", srv.Client()).WithBase(srv.URL).Geocode(context.Background(), "123 Main St")
	var se *geocode.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ZERO_RESULTS", se.Status)
	assert.Equal(t, "ZERO_RESULTS", geocode.StatusOf(err))
}

func TestGeocode_DeniedCarriesMessage(t *testing.T) {
	srv := serve(t, `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`)
	_, err := NewClient("k", srv.Client()).WithBase(srv.URL).Geocode(context.Background(), "123 Main St")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "invalid")
}

func TestGeocode_BadJSON(t *testing.T) {
	srv := serve(t, `not json`)
	_, err := NewClient("k", srv.Client()).WithBase(srv.URL).Geocode(context.Background(), "123 Main St")
	assert.Error(t, err)
}
