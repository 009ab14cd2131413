// Package client fetches weather snapshots through the proxy routes, with a
// local cache in front of the network.
package client

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const defaultErrorMessage = "Failed to fetch weather data"

// Client is the dashboard's weather client. It never retries; retries are
// user initiated and simply call the same method again.
type Client struct {
	http    *resty.Client
	cache   *store.WeatherCache
	locator Geolocator
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithGeolocator sets the device location source. Without one,
// ResolveCurrentLocation reports geolocation as unavailable.
func WithGeolocator(g Geolocator) Option {
	return func(c *Client) { c.locator = g }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.SetTransport(hc.Transport).SetTimeout(hc.Timeout) }
}

// WithClock overrides time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for the proxy at baseURL backed by cache.
func New(baseURL string, cache *store.WeatherCache, opts ...Option) *Client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	c := &Client{
		http:  r,
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchByCity returns the snapshot for a city, from cache when fresh.
func (c *Client) FetchByCity(ctx context.Context, name string) (weather.WeatherData, error) {
	key := store.CityKey(name)
	if snap, ok := c.cache.Get(key); ok {
		return snap, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("city", name).
		Get("/api/weather/city")

	snap, err := c.complete(key, resp, err)
	if err != nil {
		log.Printf("ERROR: fetching weather for city %q: %v", name, err)
	}
	return snap, err
}

// FetchByCoordinates returns the snapshot for a position, from cache when fresh.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.WeatherData, error) {
	key := store.CoordinatesKey(lat, lon)
	if snap, ok := c.cache.Get(key); ok {
		return snap, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat": store.FormatCoord(lat),
			"lon": store.FormatCoord(lon),
		}).
		Get("/api/weather/coordinates")

	snap, err := c.complete(key, resp, err)
	if err != nil {
		log.Printf("ERROR: fetching weather by coordinates %s: %v", key, err)
	}
	return snap, err
}

// CheckConnection asks the proxy whether the upstream backend is reachable.
func (c *Client) CheckConnection(ctx context.Context) bool {
	var result struct {
		Success bool `json:"success"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/connection-check")
	if err != nil {
		log.Printf("ERROR: API connection check: %v", err)
		return false
	}
	return resp.IsSuccess() && result.Success
}

func (c *Client) complete(key string, resp *resty.Response, err error) (weather.WeatherData, error) {
	if err != nil {
		return weather.WeatherData{}, &weather.Error{
			Kind:    weather.KindNetwork,
			Message: err.Error(),
			Err:     err,
		}
	}
	if !resp.IsSuccess() {
		return weather.WeatherData{}, upstreamError(resp)
	}

	snap, err := weather.Normalize(resp.Body(), c.now())
	if err != nil {
		return weather.WeatherData{}, err
	}

	c.cache.Put(key, snap)
	return snap, nil
}

func upstreamError(resp *resty.Response) *weather.Error {
	var body struct {
		Message string `json:"message"`
	}
	msg := defaultErrorMessage
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	return &weather.Error{
		Kind:    weather.KindUpstream,
		Message: msg,
		Code:    resp.StatusCode(),
	}
}
