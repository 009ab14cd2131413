package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "BACKEND_URL", "NEXT_PUBLIC_BACKEND_URL", "OPENWEATHER_API_KEY",
	"HTTP_TIMEOUT", "UPSTREAM_MAX_RETRIES", "CONNECTION_CHECK_TIMEOUT", "CONNECTION_CHECK_TTL",
	"DASHBOARD_PROXY_URL", "DEFAULT_CITY", "CACHE_TTL", "CACHE_PATH", "CACHE_MAX_ENTRIES",
	"WATCH_INTERVAL", "GEOCODER_API_KEY", "HOME_ADDRESS_CITY", "HOME_ADDRESS_COUNTRY",
	"HOME_LAT", "HOME_LON",
}

// clearEnv empties every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.BackendURL)
	assert.False(t, cfg.BackendConfigured())
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2, cfg.UpstreamMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.ConnectionCheckTimeout)
	assert.Equal(t, 5*time.Second, cfg.ConnectionCheckTTL)
	assert.Equal(t, "http://localhost:8080", cfg.ProxyURL)
	assert.Equal(t, "Nairobi", cfg.DefaultCity)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.CachePath)
	assert.Equal(t, 256, cfg.CacheMaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.WatchInterval)
	assert.Nil(t, cfg.HomeLat)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_BACKEND_URL", "http://backend:8000/")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("UPSTREAM_MAX_RETRIES", "not-a-number")
	t.Setenv("HOME_LAT", "-1.2921")
	t.Setenv("HOME_LON", "36.8219")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8000", cfg.BackendURL)
	assert.True(t, cfg.BackendConfigured())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2, cfg.UpstreamMaxRetries)
	require.NotNil(t, cfg.HomeLat)
	assert.Equal(t, -1.2921, *cfg.HomeLat)
	assert.Equal(t, 36.8219, *cfg.HomeLon)

	t.Setenv("BACKEND_URL", "http://primary")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "http://primary", cfg.BackendURL)
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"HTTP_TIMEOUT", "ten"},
		{"CACHE_TTL", "soon"},
		{"HOME_LAT", "95"},
		{"HOME_LON", "1"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if tc.key == "HOME_LAT" {
				t.Setenv("HOME_LON", "1")
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
