package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "secret")
	t.Setenv("PG_DB", "")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://app:secret@db:5433/resources?sslmode=disable", BuildPostgresDSNFromEnv())
	assert.True(t, PostgresConfigured())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "7")
	t.Setenv("X_BAD", "-3")
	assert.Equal(t, 7, EnvInt("X_INT", 1))
	assert.Equal(t, 1, EnvInt("X_BAD", 1))
	assert.Equal(t, 1, EnvInt("X_MISSING_INT", 1))
	t.Setenv("X_STR", "amap")
	assert.Equal(t, "amap", EnvString("X_STR", "google"))
	assert.Equal(t, "google", EnvString("X_MISSING_STR", "google"))
}

func TestOpenRedisFromEnv_Disabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, OpenRedisFromEnv())
}

func TestOpenRedisFromEnv_Options(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "2")
	rc := OpenRedisFromEnv()
	defer rc.Close()
	assert.Equal(t, "cache:6379", rc.Options().Addr)
	assert.Equal(t, 2, rc.Options().DB)
}

func TestGeocoderFromEnv(t *testing.T) {
	t.Setenv("GEOCODER", "")
	t.Setenv("GOOGLE_MAPS_KEY", "")
	t.Setenv("AMAP_SERVER_KEY", "")
	g, name := GeocoderFromEnv(nil)
	assert.Nil(t, g)
	assert.Equal(t, "", name)

	t.Setenv("AMAP_SERVER_KEY", "k")
	g, name = GeocoderFromEnv(nil)
	assert.NotNil(t, g)
	assert.Equal(t, "amap", name)

	t.Setenv("GOOGLE_MAPS_KEY", "g")
	_, name = GeocoderFromEnv(nil)
	assert.Equal(t, "google", name)

	t.Setenv("GEOCODER", "amap")
	_, name = GeocoderFromEnv(nil)
	assert.Equal(t, "amap", name)

	t.Setenv("GEOCODER", "bing")
	g, _ = GeocoderFromEnv(nil)
	assert.Nil(t, g)
}
