// Package mcptools exposes weather lookups as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"strings"

	"github.com/miyamo2/qilin"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Fetcher is the weather client as seen by the tools.
type Fetcher interface {
	FetchByCity(ctx context.Context, name string) (weather.WeatherData, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.WeatherData, error)
}

// CityRequest contains input parameters for the get_weather tool.
type CityRequest struct {
	City string `json:"city" jsonschema:"title=City,description=City name to look up"`
}

// CoordinatesRequest contains input parameters for the get_weather_by_coordinates tool.
type CoordinatesRequest struct {
	Lat float64 `json:"lat" jsonschema:"title=Latitude,minimum=-90,maximum=90"`
	Lon float64 `json:"lon" jsonschema:"title=Longitude,minimum=-180,maximum=180"`
}

var (
	errCityRequired = errors.New("city is required")
	errOutOfRange   = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// Register adds the weather tools to q.
func Register(q *qilin.Qilin, f Fetcher) {
	q.Tool("get_weather",
		(*CityRequest)(nil),
		func(c qilin.ToolContext) error {
			var req CityRequest
			if err := c.Bind(&req); err != nil {
				return err
			}
			data, err := ByCity(c.Context(), f, req)
			if err != nil {
				return err
			}
			return c.JSON(data)
		},
		qilin.ToolWithDescription("Current conditions and a 3-day forecast for a city"))

	q.Tool("get_weather_by_coordinates",
		(*CoordinatesRequest)(nil),
		func(c qilin.ToolContext) error {
			var req CoordinatesRequest
			if err := c.Bind(&req); err != nil {
				return err
			}
			data, err := ByCoordinates(c.Context(), f, req)
			if err != nil {
				return err
			}
			return c.JSON(data)
		},
		qilin.ToolWithDescription("Current conditions and a 3-day forecast for a latitude/longitude pair"))
}

// ByCity validates req and looks up the weather for its city.
func ByCity(ctx context.Context, f Fetcher, req CityRequest) (weather.WeatherData, error) {
	city := strings.TrimSpace(req.City)
	if city == "" {
		return weather.WeatherData{}, errCityRequired
	}
	return f.FetchByCity(ctx, city)
}

// ByCoordinates validates req and looks up the weather at its position.
func ByCoordinates(ctx context.Context, f Fetcher, req CoordinatesRequest) (weather.WeatherData, error) {
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return weather.WeatherData{}, errOutOfRange
	}
	return f.FetchByCoordinates(ctx, req.Lat, req.Lon)
}
