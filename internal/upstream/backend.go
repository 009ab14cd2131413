package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
)

// DefaultBackendURL is used when no backend URL is configured.
const DefaultBackendURL = "http://localhost:8000"

// Backend forwards lookups to a weather backend exposing
// /api/weather/city, /api/weather/coordinates and /api/weather/health.
type Backend struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewBackend(client *http.Client, baseURL string, maxRetries int) *Backend {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	return &Backend{
		name:    "backend",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff(maxRetries),
		},
		circuit: newBreaker("backend"),
	}
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) City(ctx context.Context, city string) (Response, error) {
	values := url.Values{}
	values.Set("city", city)
	return b.get(ctx, "/api/weather/city", values)
}

func (b *Backend) Coordinates(ctx context.Context, lat, lon float64) (Response, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	return b.get(ctx, "/api/weather/coordinates", values)
}

// Health probes /api/weather/health once, without retries.
func (b *Backend) Health(ctx context.Context) error {
	cfg := b.httpCfg
	cfg.Backoff.MaxRetries = 0

	resp, err := doRequestWithResilience(ctx, cfg, b.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, b.baseURL+"/api/weather/health", nil)
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("backend health returned status %d", resp.StatusCode)
	}
	return nil
}

func (b *Backend) get(ctx context.Context, path string, values url.Values) (Response, error) {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", b.baseURL, path, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	return passThrough(doRequestWithResilience(ctx, b.httpCfg, b.circuit, buildRequest))
}
