package weather

import (
	"time"
)

// Icon is the simplified icon bucket shown by the dashboard.
type Icon string

const (
	IconSun   Icon = "sun"
	IconCloud Icon = "cloud"
	IconRain  Icon = "rain"
	IconStorm Icon = "storm"
	IconSnow  Icon = "snow"
	IconMist  Icon = "mist"
)

// Location identifies the place a snapshot was taken for.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Current holds current conditions. Temperatures are whole degrees.
type Current struct {
	Temp          int     `json:"temp"`
	TempF         int     `json:"tempF"`
	Condition     string  `json:"condition"`
	Icon          Icon    `json:"icon"`
	Wind          int     `json:"wind"`
	Humidity      int     `json:"humidity"`
	Precipitation float64 `json:"precipitation"` // mm in the last hour
	FeelsLike     int     `json:"feelsLike"`
	UV            float64 `json:"uv"`
}

// ForecastDay is one day of the short forecast.
type ForecastDay struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Day       string `json:"day"`  // e.g. "Tue 21"
	TempMin   int    `json:"tempMin"`
	TempMax   int    `json:"tempMax"`
	TempMinF  int    `json:"tempMinF"`
	TempMaxF  int    `json:"tempMaxF"`
	Icon      Icon   `json:"icon"`
	Condition string `json:"condition"`

	// Precipitation is the chance of precipitation, 0-100.
	Precipitation int `json:"precipitation"`
}

// ForecastDays is the number of forecast entries in every snapshot.
const ForecastDays = 3

// WeatherData is the normalized weather snapshot for one location.
// A snapshot is never patched; a refresh replaces it wholesale.
type WeatherData struct {
	Location    Location      `json:"location"`
	Current     Current       `json:"current"`
	Forecast    []ForecastDay `json:"forecast"`
	LastUpdated time.Time     `json:"lastUpdated"` // always UTC
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
