package store

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultTTL is how long a cached snapshot is served.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "weather_"

// CityKey derives the cache key for a city search.
func CityKey(name string) string {
	return strings.ToLower(name)
}

// CoordinatesKey derives the cache key for a coordinate lookup.
func CoordinatesKey(lat, lon float64) string {
	return "coords_" + FormatCoord(lat) + "_" + FormatCoord(lon)
}

// FormatCoord renders a coordinate the way it appears in keys and query strings.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WeatherCache stores snapshots in a KV under "weather_{key}" and serves
// them while now - lastUpdated < TTL. Storage failures never reach the
// caller: a failed read is a miss and a failed write is dropped.
type WeatherCache struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

// CacheOption configures a WeatherCache.
type CacheOption func(*WeatherCache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *WeatherCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *WeatherCache) { c.now = now }
}

// NewWeatherCache creates a cache over kv.
func NewWeatherCache(kv KV, opts ...CacheOption) *WeatherCache {
	c := &WeatherCache{
		kv:  kv,
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL reports the configured time-to-live.
func (c *WeatherCache) TTL() time.Duration { return c.ttl }

// Get returns the snapshot stored under key (case-insensitive). Expired
// entries are deleted and reported as absent.
func (c *WeatherCache) Get(key string) (weather.WeatherData, bool) {
	k := storageKey(key)

	raw, err := c.kv.Get(k)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("cache: read %s failed: %v", k, err)
		}
		return weather.WeatherData{}, false
	}

	var snap weather.WeatherData
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("cache: corrupt entry %s: %v", k, err)
		return weather.WeatherData{}, false
	}

	if c.expired(snap) {
		if err := c.kv.Delete(k); err != nil {
			log.Printf("cache: delete %s failed: %v", k, err)
		}
		return weather.WeatherData{}, false
	}

	return snap, true
}

// Put stores snap under key, replacing any previous entry.
func (c *WeatherCache) Put(key string, snap weather.WeatherData) {
	k := storageKey(key)

	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("cache: encode %s failed: %v", k, err)
		return
	}
	if err := c.kv.Put(k, raw); err != nil {
		log.Printf("cache: write %s failed: %v", k, err)
	}
}

// Sweep deletes every expired or unreadable entry and returns how many were removed.
func (c *WeatherCache) Sweep() int {
	keys, err := c.kv.Keys(keyPrefix)
	if err != nil {
		log.Printf("cache: list keys failed: %v", err)
		return 0
	}

	removed := 0
	for _, k := range keys {
		raw, err := c.kv.Get(k)
		if err != nil {
			continue
		}
		var snap weather.WeatherData
		if err := json.Unmarshal(raw, &snap); err == nil && !c.expired(snap) {
			continue
		}
		if err := c.kv.Delete(k); err != nil {
			log.Printf("cache: delete %s failed: %v", k, err)
			continue
		}
		removed++
	}
	return removed
}

func (c *WeatherCache) expired(snap weather.WeatherData) bool {
	return c.now().Sub(snap.LastUpdated) >= c.ttl
}

func storageKey(key string) string {
	return keyPrefix + strings.ToLower(key)
}
