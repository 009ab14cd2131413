// Package bootstrap builds the dashboard-side dependencies from configuration.
package bootstrap

import (
	"fmt"
	"log"
	"net/http"

	"github.com/i474232898/weather-dashboard/internal/client"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Dashboard holds everything a dashboard front end needs.
type Dashboard struct {
	Client *client.Client
	Cache  *store.WeatherCache

	closeKV func() error
}

// Close releases the cache storage.
func (d *Dashboard) Close() error {
	if d.closeKV == nil {
		return nil
	}
	return d.closeKV()
}

// NewDashboard opens the cache storage and builds a client for the proxy.
func NewDashboard(cfg *config.AppConfig) (*Dashboard, error) {
	var (
		kv      store.KV
		closeKV func() error
	)
	if cfg.CachePath != "" {
		s, err := store.NewSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", cfg.CachePath, err)
		}
		kv, closeKV = s, s.Close
		log.Printf("INFO: using sqlite cache at %s", cfg.CachePath)
	} else {
		kv = store.NewMemoryStore(cfg.CacheMaxEntries)
	}

	cache := store.NewWeatherCache(kv, store.WithTTL(cfg.CacheTTL))

	opts := []client.Option{client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})}
	if loc := Locator(cfg); loc != nil {
		opts = append(opts, client.WithGeolocator(loc))
	}

	return &Dashboard{
		Client:  client.New(cfg.ProxyURL, cache, opts...),
		Cache:   cache,
		closeKV: closeKV,
	}, nil
}

// Locator picks the device position source: fixed coordinates first, then
// a geocoded home address. It returns nil when neither is configured.
func Locator(cfg *config.AppConfig) client.Geolocator {
	switch {
	case cfg.HomeLat != nil && cfg.HomeLon != nil:
		return client.StaticLocator{Position: weather.Coordinates{Lat: *cfg.HomeLat, Lon: *cfg.HomeLon}}
	case cfg.GeocoderAPIKey != "" && cfg.HomeCity != "":
		return client.NewAddressLocator(cfg.GeocoderAPIKey, cfg.HomeCity, cfg.HomeCountry)
	default:
		return nil
	}
}

// APIStatus returns the connection indicator for cfg before any check has
// run. Configured follows BACKEND_URL, NEXT_PUBLIC_BACKEND_URL and
// OPENWEATHER_API_KEY; the proxy URL always has a default.
func APIStatus(cfg *config.AppConfig) dashboard.APIStatus {
	return dashboard.APIStatus{Configured: cfg.BackendConfigured()}
}
