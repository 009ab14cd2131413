package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func snapshot(name string, at time.Time) weather.WeatherData {
	return weather.WeatherData{
		Location: weather.Location{Name: name, Country: "KE", Lat: -1.2921, Lon: 36.8219},
		Current:  weather.Current{Temp: 23, TempF: 73, Condition: "Clouds", Icon: weather.IconCloud},
		Forecast: []weather.ForecastDay{
			{Date: "2026-10-20", Day: "Tue 20", TempMin: 13, TempMax: 26, Icon: weather.IconRain},
			{Date: "2026-10-21", Day: "Wed 21", TempMin: 14, TempMax: 27, Icon: weather.IconSnow},
			{Date: "2026-10-22", Day: "Thu 22", TempMin: 15, TempMax: 28, Icon: weather.IconMist},
		},
		LastUpdated: at.UTC(),
	}
}

func newTestCache(t *testing.T) (*WeatherCache, *MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)}
	kv := NewMemoryStore(0)
	return NewWeatherCache(kv, WithClock(clock.Now)), kv, clock
}

func TestWeatherCacheRoundTrip(t *testing.T) {
	c, kv, clock := newTestCache(t)
	snap := snapshot("Nairobi", clock.Now())

	c.Put("Nairobi", snap)

	got, ok := c.Get("nairobi")
	require.True(t, ok)
	assert.Equal(t, snap, got)

	got, ok = c.Get("NAIROBI")
	require.True(t, ok)
	assert.Equal(t, snap, got)

	keys, err := kv.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"weather_nairobi"}, keys)
}

func TestWeatherCacheReturnsCopies(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.Put("nairobi", snapshot("Nairobi", clock.Now()))

	got, ok := c.Get("nairobi")
	require.True(t, ok)
	got.Forecast[0].TempMax = 99

	again, ok := c.Get("nairobi")
	require.True(t, ok)
	assert.Equal(t, 26, again.Forecast[0].TempMax)
}

func TestWeatherCacheExpiry(t *testing.T) {
	c, kv, clock := newTestCache(t)
	c.Put("nairobi", snapshot("Nairobi", clock.Now()))

	clock.Advance(DefaultTTL - time.Millisecond)
	_, ok := c.Get("nairobi")
	require.True(t, ok, "entry must be served just before the TTL")

	clock.Advance(2 * time.Millisecond)
	_, ok = c.Get("nairobi")
	require.False(t, ok)

	_, err := kv.Get("weather_nairobi")
	assert.True(t, errors.Is(err, ErrNotFound), "expired entry must be removed on read")
}

func TestWeatherCacheExpiresExactlyAtTTL(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.Put("nairobi", snapshot("Nairobi", clock.Now()))

	clock.Advance(DefaultTTL)
	_, ok := c.Get("nairobi")
	assert.False(t, ok)
}

func TestWeatherCachePutOverwrites(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.Put("nairobi", snapshot("Nairobi", clock.Now()))

	clock.Advance(time.Minute)
	fresh := snapshot("Nairobi", clock.Now())
	fresh.Current.Temp = 30
	c.Put("Nairobi", fresh)

	got, ok := c.Get("nairobi")
	require.True(t, ok)
	assert.Equal(t, 30, got.Current.Temp)
	assert.Equal(t, clock.Now(), got.LastUpdated)
}

func TestWeatherCacheCorruptEntryIsMiss(t *testing.T) {
	c, kv, _ := newTestCache(t)
	require.NoError(t, kv.Put("weather_nairobi", []byte("{not json")))

	_, ok := c.Get("nairobi")
	assert.False(t, ok)
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error)    { return nil, errors.New("disk on fire") }
func (failingKV) Put(string, []byte) error      { return errors.New("quota exceeded") }
func (failingKV) Delete(string) error           { return errors.New("disk on fire") }
func (failingKV) Keys(string) ([]string, error) { return nil, errors.New("disk on fire") }

func TestWeatherCacheSwallowsStorageErrors(t *testing.T) {
	c := NewWeatherCache(failingKV{})

	assert.NotPanics(t, func() {
		c.Put("nairobi", snapshot("Nairobi", time.Now()))
	})
	_, ok := c.Get("nairobi")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Sweep())
}

func TestWeatherCacheSweep(t *testing.T) {
	c, kv, clock := newTestCache(t)
	c.Put("old", snapshot("Old", clock.Now()))
	clock.Advance(6 * time.Minute)
	c.Put("new", snapshot("New", clock.Now()))
	require.NoError(t, kv.Put("weather_broken", []byte("[")))
	require.NoError(t, kv.Put("unrelated", []byte("x")))

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 2, c.Sweep())

	keys, err := kv.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated", "weather_new"}, keys)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "nairobi", CityKey("Nairobi"))
	assert.Equal(t, "new york", CityKey("New York"))
	assert.Equal(t, "coords_-1.2921_36.8219", CoordinatesKey(-1.2921, 36.8219))
	assert.Equal(t, "coords_40_-74", CoordinatesKey(40, -74))
}

func TestWithTTL(t *testing.T) {
	c := NewWeatherCache(NewMemoryStore(0), WithTTL(time.Minute))
	assert.Equal(t, time.Minute, c.TTL())

	c = NewWeatherCache(NewMemoryStore(0), WithTTL(0))
	assert.Equal(t, DefaultTTL, c.TTL())
}
