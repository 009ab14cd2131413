package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// BackendURL is the weather backend the proxy forwards to. Empty means
	// not configured.
	BackendURL        string
	OpenWeatherAPIKey string

	HTTPTimeout        time.Duration
	UpstreamMaxRetries int

	ConnectionCheckTimeout time.Duration
	ConnectionCheckTTL     time.Duration

	// Dashboard side.
	ProxyURL        string
	DefaultCity     string
	CacheTTL        time.Duration
	CachePath       string // empty keeps the cache in memory
	CacheMaxEntries int
	WatchInterval   time.Duration

	// Home address used as the device position when set.
	GeocoderAPIKey string
	HomeCity       string
	HomeCountry    string
	HomeLat        *float64
	HomeLon        *float64
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.BackendURL = strings.TrimRight(getenvDefault("BACKEND_URL", os.Getenv("NEXT_PUBLIC_BACKEND_URL")), "/")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 2)

	if cfg.ConnectionCheckTimeout, err = getenvDuration("CONNECTION_CHECK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ConnectionCheckTTL, err = getenvDuration("CONNECTION_CHECK_TTL", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.ProxyURL = strings.TrimRight(getenvDefault("DASHBOARD_PROXY_URL", "http://localhost:8080"), "/")
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Nairobi")
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	cfg.CachePath = os.Getenv("CACHE_PATH")
	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 256)
	if cfg.WatchInterval, err = getenvDuration("WATCH_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.HomeCity = os.Getenv("HOME_ADDRESS_CITY")
	cfg.HomeCountry = os.Getenv("HOME_ADDRESS_COUNTRY")

	if err := loadHomePosition(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BackendConfigured reports whether a weather backend was set explicitly.
func (c *AppConfig) BackendConfigured() bool {
	return c.BackendURL != "" || c.OpenWeatherAPIKey != ""
}

func loadHomePosition(cfg *AppConfig) error {
	latStr := os.Getenv("HOME_LAT")
	lonStr := os.Getenv("HOME_LON")
	if latStr == "" && lonStr == "" {
		return nil
	}
	if latStr == "" || lonStr == "" {
		return fmt.Errorf("HOME_LAT and HOME_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return fmt.Errorf("invalid HOME_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid HOME_LON %q", lonStr)
	}

	cfg.HomeLat, cfg.HomeLon = &lat, &lon
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
