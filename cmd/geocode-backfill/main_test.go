package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resource-map/internal/catalog"
	"resource-map/internal/geocode"

	"github.com/stretchr/testify/assert"
)

type memSink struct {
	mu    sync.Mutex
	saved map[string]catalog.Coordinates
}

func (m *memSink) SaveCoordinates(ctx context.Context, id string, c catalog.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[id] = c
	return nil
}

func f(v float64) *float64 { return &v }

func TestPending(t *testing.T) {
	c := &catalog.Catalog{Points: []catalog.MapPoint{
		{ID: "lit", Address: "x", Lat: f(1), Lng: f(2)},
		{ID: "addr", Address: "1 Main St"},
		{ID: "empty"},
	}}
	ps := pending(c)
	assert.Len(t, ps, 1)
	assert.Equal(t, "addr", ps[0].ID)
}

func TestBackfill_SkipsFailures(t *testing.T) {
	g := geocode.GeocoderFunc(func(ctx context.Context, address string) (catalog.Coordinates, error) {
		if address == "bad" {
			return catalog.Coordinates{}, errors.New("boom")
		}
		return catalog.Coordinates{Lat: 1, Lng: 2}, nil
	})
	sink := &memSink{saved: map[string]catalog.Coordinates{}}
	lim := &minuteLimiter{capacity: 100, now: time.Now}
	n := backfill(context.Background(), g, sink, []catalog.MapPoint{
		{ID: "1", Address: "good"}, {ID: "2", Address: "bad"}, {ID: "3", Address: "also good"},
	}, 2, lim)
	assert.Equal(t, 2, n)
	assert.Contains(t, sink.saved, "1")
	assert.NotContains(t, sink.saved, "2")
}

func TestMinuteLimiter(t *testing.T) {
	now := time.Unix(600, 0)
	lim := &minuteLimiter{capacity: 2, now: func() time.Time { return now }}
	assert.True(t, lim.allow())
	assert.True(t, lim.allow())
	assert.False(t, lim.allow())
	now = now.Add(time.Minute)
	assert.True(t, lim.allow())
}
