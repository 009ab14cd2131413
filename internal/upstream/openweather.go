package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

// OpenWeather serves the raw provider payload straight from OpenWeatherMap:
// the current-weather document with the One Call "daily" list and "uvi"
// merged in.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, apiKey string, maxRetries int) *OpenWeather {
	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff(maxRetries),
		},
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *OpenWeather) WithBaseURL(u string) *OpenWeather {
	p.baseURL = strings.TrimRight(u, "/")
	return p
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) City(ctx context.Context, city string) (Response, error) {
	values := url.Values{}
	values.Set("q", city)
	return p.fetch(ctx, values)
}

func (p *OpenWeather) Coordinates(ctx context.Context, lat, lon float64) (Response, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	return p.fetch(ctx, values)
}

// Health issues a single current-weather request for 0,0.
func (p *OpenWeather) Health(ctx context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}

	cfg := p.httpCfg
	cfg.Backoff.MaxRetries = 0

	values := url.Values{}
	values.Set("lat", "0")
	values.Set("lon", "0")
	resp, err := doRequestWithResilience(ctx, cfg, p.circuit, p.builder("/data/2.5/weather", values))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("openweather health returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *OpenWeather) fetch(ctx context.Context, values url.Values) (Response, error) {
	if p.apiKey == "" {
		return Response{}, fmt.Errorf("openweather api key is not configured")
	}

	current, err := passThrough(doRequestWithResilience(ctx, p.httpCfg, p.circuit, p.builder("/data/2.5/weather", values)))
	if err != nil || !current.OK() {
		// OpenWeather errors ({"cod":"404","message":"city not found"}) are relayed as is.
		return current, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(current.Body, &doc); err != nil {
		return Response{}, fmt.Errorf("decode current weather: %w", err)
	}

	var coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if raw, ok := doc["coord"]; !ok || json.Unmarshal(raw, &coord) != nil {
		return Response{}, fmt.Errorf("current weather has no coordinates")
	}

	oneCallValues := url.Values{}
	oneCallValues.Set("lat", formatCoord(coord.Lat))
	oneCallValues.Set("lon", formatCoord(coord.Lon))
	oneCallValues.Set("exclude", "minutely,hourly,alerts")

	oneCall, err := passThrough(doRequestWithResilience(ctx, p.httpCfg, p.circuit, p.builder("/data/3.0/onecall", oneCallValues)))
	if err != nil || !oneCall.OK() {
		return oneCall, err
	}

	var payload struct {
		Current struct {
			UVI float64 `json:"uvi"`
		} `json:"current"`
		Daily json.RawMessage `json:"daily"`
	}
	if err := json.Unmarshal(oneCall.Body, &payload); err != nil {
		return Response{}, fmt.Errorf("decode one call: %w", err)
	}

	uvi, err := json.Marshal(payload.Current.UVI)
	if err != nil {
		return Response{}, err
	}
	doc["uvi"] = uvi
	if len(payload.Daily) > 0 {
		doc["daily"] = payload.Daily
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: http.StatusOK, Body: body}, nil
}

func (p *OpenWeather) builder(path string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		q.Set("units", "metric")

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, q.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}
}
