// Package weathertest provides provider payload fixtures for tests.
package weathertest

import (
	"time"

	"github.com/goccy/go-json"
)

// Today is the date of the first daily entry in fixtures built by Payload.
var Today = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

// Payload returns a raw provider payload for city with four daily entries,
// the first of which is Today.
func Payload(city, country string, lat, lon float64) []byte {
	daily := make([]map[string]any, 0, 4)
	icons := []string{"01d", "10d", "13d", "50n"}
	conds := []string{"Clear", "Rain", "Snow", "Mist"}
	for i := 0; i < 4; i++ {
		daily = append(daily, map[string]any{
			"dt":      Today.AddDate(0, 0, i).Unix(),
			"temp":    map[string]any{"min": 12.4 + float64(i), "max": 24.6 + float64(i)},
			"weather": []map[string]any{{"main": conds[i], "icon": icons[i]}},
			"pop":     0.1 * float64(i+1),
		})
	}

	doc := map[string]any{
		"name":     city,
		"timezone": 0,
		"coord":    map[string]any{"lat": lat, "lon": lon},
		"sys":      map[string]any{"country": country},
		"main":     map[string]any{"temp": 22.5, "feels_like": 21.6, "humidity": 64},
		"wind":     map[string]any{"speed": 3.6},
		"rain":     map[string]any{"1h": 0.4},
		"weather":  []map[string]any{{"main": "Clouds", "icon": "04d"}},
		"uvi":      5.2,
		"daily":    daily,
	}

	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return b
}
