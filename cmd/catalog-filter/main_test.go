package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"resource-map/internal/catalog"
	"resource-map/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "../../data/catalog.yaml"

func execute(t *testing.T, opts *options, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--catalog", sample}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestClickCategory_Text(t *testing.T) {
	out, err := execute(t, &options{}, "--click", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "visible (2):")
	assert.Contains(t, out, "Downtown Clinic")
	assert.Contains(t, out, "Phone Counseling")
	assert.Contains(t, out, "badges: Health\n")
	assert.Contains(t, out, "markers: downtown-clinic\n")
}

func TestNothingSelected(t *testing.T) {
	out, err := execute(t, &options{}, "--format", "json")
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Empty(t, rep.Visible)
	assert.Empty(t, rep.Markers)
	assert.Equal(t, "resolved", rep.Points["downtown-clinic"])
	assert.Equal(t, "unresolved", rep.Points["1000 E Pike St, Seattle, WA"])
	require.NotNil(t, rep.Center)
	assert.Equal(t, 11, rep.Zoom)
}

func TestFeatureWithRequirementExcluded(t *testing.T) {
	out, err := execute(t, &options{}, "--feature", "free", "--requirement", "ID Required", "--format", "json")
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	ids := []string{}
	for _, e := range rep.Visible {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"1", "4"}, ids)
	assert.Empty(t, rep.Badges)
}

func TestGeocodedPointBecomesVisible(t *testing.T) {
	g := geocode.GeocoderFunc(func(ctx context.Context, address string) (catalog.Coordinates, error) {
		return catalog.Coordinates{Lat: 47.61, Lng: -122.32}, nil
	})
	out, err := execute(t, &options{geocoder: g}, "--geocode", "--click", "food", "--format", "json")
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, []string{"1000 E Pike St, Seattle, WA"}, rep.Markers)
	assert.Equal(t, "resolved", rep.Points["1000 E Pike St, Seattle, WA"])
}

func TestFailedGeocodeHasNoMarker(t *testing.T) {
	g := geocode.GeocoderFunc(func(ctx context.Context, address string) (catalog.Coordinates, error) {
		return catalog.Coordinates{}, &geocode.StatusError{Provider: "google", Status: "ZERO_RESULTS"}
	})
	out, err := execute(t, &options{geocoder: g}, "--geocode", "--click", "food", "--format", "json")
	require.NoError(t, err)
	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Visible, 1)
	assert.Empty(t, rep.Markers)
	assert.Equal(t, "failed", rep.Points["1000 E Pike St, Seattle, WA"])
}

func TestUnknownClickReported(t *testing.T) {
	out, err := execute(t, &options{}, "--click", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown clicks: nope")
}

func TestBadFormat(t *testing.T) {
	_, err := execute(t, &options{}, "--format", "xml")
	assert.Error(t, err)
}

func TestGeocodeWithoutProvider(t *testing.T) {
	t.Setenv("GEOCODER", "")
	t.Setenv("GOOGLE_MAPS_KEY", "")
	t.Setenv("AMAP_SERVER_KEY", "")
	t.Setenv("REDIS_HOST", "")
	_, err := execute(t, &options{}, "--geocode")
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
