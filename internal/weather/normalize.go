package weather

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

// rawPayload is the provider payload served by the proxy routes: the
// OpenWeather current-weather document with the One Call "daily" list and
// "uvi" merged in.
type rawPayload struct {
	Name     string `json:"name"`
	Timezone int    `json:"timezone"` // offset from UTC in seconds
	Coord    *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys *struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain    map[string]float64 `json:"rain"`
	Weather []rawCondition     `json:"weather"`
	UVI     float64            `json:"uvi"`
	Daily   []rawDaily         `json:"daily"`
}

// rawCondition is one entry of a provider "weather" list.
type rawCondition struct {
	Main string `json:"main"`
	Icon string `json:"icon"`
}

// rawDaily is one day of the provider daily forecast.
type rawDaily struct {
	Dt   int64 `json:"dt"`
	Temp *struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Weather []rawCondition `json:"weather"`
	Pop     float64        `json:"pop"`
}

// Normalize decodes a raw provider payload into a WeatherData snapshot
// stamped with now. It fails with ErrMalformedPayload when a required field
// is missing.
func Normalize(data []byte, now time.Time) (WeatherData, error) {
	var p rawPayload
	if err := json.Unmarshal(data, &p); err != nil {
		e := malformed("invalid weather payload")
		e.Err = err
		return WeatherData{}, e
	}
	return normalizePayload(p, now)
}

// normalizePayload maps an already decoded payload into a WeatherData snapshot.
func normalizePayload(p rawPayload, now time.Time) (WeatherData, error) {
	switch {
	case p.Name == "":
		return WeatherData{}, malformed("missing location name")
	case p.Sys == nil:
		return WeatherData{}, malformed("missing sys.country")
	case p.Coord == nil:
		return WeatherData{}, malformed("missing coord")
	case p.Main == nil:
		return WeatherData{}, malformed("missing main")
	case p.Wind == nil:
		return WeatherData{}, malformed("missing wind")
	case len(p.Weather) == 0:
		return WeatherData{}, malformed("missing weather conditions")
	case len(p.Daily) < ForecastDays+1:
		return WeatherData{}, malformed("daily forecast has %d entries, need %d", len(p.Daily), ForecastDays+1)
	}

	zone := time.UTC
	if p.Timezone != 0 {
		zone = time.FixedZone("", p.Timezone)
	}

	forecast := make([]ForecastDay, 0, ForecastDays)
	// Index 0 is today.
	for i, d := range p.Daily[1 : ForecastDays+1] {
		if d.Temp == nil || len(d.Weather) == 0 {
			return WeatherData{}, malformed("daily entry %d is incomplete", i+1)
		}
		date := time.Unix(d.Dt, 0).In(zone)
		forecast = append(forecast, ForecastDay{
			Date:          date.Format("2006-01-02"),
			Day:           DayLabel(date),
			TempMin:       Round(d.Temp.Min),
			TempMax:       Round(d.Temp.Max),
			TempMinF:      Fahrenheit(d.Temp.Min),
			TempMaxF:      Fahrenheit(d.Temp.Max),
			Icon:          MapIcon(d.Weather[0].Icon),
			Condition:     d.Weather[0].Main,
			Precipitation: PrecipitationChance(d.Pop),
		})
	}

	return WeatherData{
		Location: Location{
			Name:    p.Name,
			Country: p.Sys.Country,
			Lat:     p.Coord.Lat,
			Lon:     p.Coord.Lon,
		},
		Current: Current{
			Temp:          Round(p.Main.Temp),
			TempF:         Fahrenheit(p.Main.Temp),
			Condition:     p.Weather[0].Main,
			Icon:          MapIcon(p.Weather[0].Icon),
			Wind:          Round(p.Wind.Speed),
			Humidity:      Round(p.Main.Humidity),
			Precipitation: p.Rain["1h"],
			FeelsLike:     Round(p.Main.FeelsLike),
			UV:            p.UVI,
		},
		Forecast:    forecast,
		LastUpdated: now.UTC(),
	}, nil
}

// Round rounds half up to the nearest integer (2.5 -> 3, -2.5 -> -2).
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Fahrenheit converts Celsius to whole degrees Fahrenheit.
func Fahrenheit(c float64) int {
	return Round(c*9/5 + 32)
}

// MapIcon buckets a provider icon code ("01d", "10n", ...) by its two-character
// prefix. Unknown codes map to IconSun.
func MapIcon(code string) Icon {
	if len(code) < 2 {
		return IconSun
	}
	switch code[:2] {
	case "01":
		return IconSun
	case "02", "03", "04":
		return IconCloud
	case "09", "10":
		return IconRain
	case "11":
		return IconStorm
	case "13":
		return IconSnow
	case "50":
		return IconMist
	default:
		return IconSun
	}
}

// DayLabel formats a short day label such as "Tue 21".
func DayLabel(t time.Time) string {
	return t.Format("Mon 2")
}

// PrecipitationChance scales a 0-1 probability of precipitation to a percentage.
func PrecipitationChance(pop float64) int {
	pct := Round(pop * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
