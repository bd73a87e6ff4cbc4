package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("evroute-test")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "*", cfg.CORS.AllowOrigins)
	assert.Equal(t, "https://router.project-osrm.org/route/v1/driving", cfg.Upstream.Routing.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Routing.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Stations.Timeout)
	assert.Equal(t, 100, cfg.Upstream.Stations.Distance)
	assert.Equal(t, "KM", cfg.Upstream.Stations.DistanceUnit)
	assert.Equal(t, 25, cfg.Upstream.Stations.MaxResults)
	assert.Empty(t, cfg.Upstream.Stations.APIKey, "the API key must never have a built-in value")
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "evroute-test", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EVROUTE_UPSTREAM_STATIONS_API_KEY", "secret-key")
	t.Setenv("EVROUTE_UPSTREAM_ROUTING_TIMEOUT", "3s")
	t.Setenv("EVROUTE_SERVER_PORT", "8088")
	t.Setenv("EVROUTE_CACHE_ENABLED", "true")

	cfg, err := Load("evroute-test")
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Upstream.Stations.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Routing.Timeout)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("EVROUTE_SERVER_PORT", "70000")
	t.Setenv("EVROUTE_UPSTREAM_GEOCODING_BASE_URL", "ftp://example.org")

	_, err := Load("evroute-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "upstream.geocoding.base_url")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "config validation failed"))
	for _, want := range []string{
		"server.port",
		"upstream.routing.base_url is required",
		"upstream.stations.timeout must be positive",
		"upstream.stations.distance_unit",
	} {
		assert.Contains(t, msg, want)
	}
}
