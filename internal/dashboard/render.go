package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Unit is the temperature unit used for display.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// ParseUnit accepts c, f, celsius, fahrenheit, metric and imperial in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	}
	return Celsius, fmt.Errorf("unknown unit %q", s)
}

var glyphs = map[weather.Icon]string{
	weather.IconSun:   "☀",
	weather.IconCloud: "☁",
	weather.IconRain:  "☂",
	weather.IconStorm: "⚡",
	weather.IconSnow:  "❄",
	weather.IconMist:  "≋",
}

func glyph(i weather.Icon) string {
	if g, ok := glyphs[i]; ok {
		return g
	}
	return glyphs[weather.IconSun]
}

func temp(c, f int, u Unit) string {
	if u == Fahrenheit {
		return fmt.Sprintf("%d%s", f, u.Symbol())
	}
	return fmt.Sprintf("%d%s", c, u.Symbol())
}

// Render writes a text dashboard for data. Feels-like is stored in Celsius
// only and is converted for Fahrenheit display.
func Render(w io.Writer, data weather.WeatherData, unit Unit) error {
	bw := bufio.NewWriter(w)
	cur := data.Current
	title := cases.Title(language.English)

	place := title.String(data.Location.Name)
	if data.Location.Country != "" {
		place += ", " + data.Location.Country
	}

	fmt.Fprintf(bw, "%s\n", place)
	fmt.Fprintf(bw, "%s  %s  %s\n", glyph(cur.Icon), temp(cur.Temp, cur.TempF, unit), title.String(cur.Condition))
	fmt.Fprintf(bw, "Last updated: %s\n\n", data.LastUpdated.Format("Mon 2 Jan 15:04:05 MST"))

	feels := cur.FeelsLike
	if unit == Fahrenheit {
		feels = weather.Fahrenheit(float64(cur.FeelsLike))
	}
	fmt.Fprintf(bw, "%-14s %d m/s\n", "Wind", cur.Wind)
	fmt.Fprintf(bw, "%-14s %d%%\n", "Humidity", cur.Humidity)
	fmt.Fprintf(bw, "%-14s %.1f mm\n", "Precipitation", cur.Precipitation)
	fmt.Fprintf(bw, "%-14s %d%s\n", "Feels like", feels, unit.Symbol())
	fmt.Fprintf(bw, "%-14s %.1f\n", "UV index", cur.UV)

	if len(data.Forecast) > 0 {
		fmt.Fprintf(bw, "\n%d-Day Forecast\n", len(data.Forecast))
	}
	for _, d := range data.Forecast {
		fmt.Fprintf(bw, "  %-7s %s  %s / %s  %3d%%  %s\n",
			d.Day,
			glyph(d.Icon),
			temp(d.TempMin, d.TempMinF, unit),
			temp(d.TempMax, d.TempMaxF, unit),
			d.Precipitation,
			title.String(d.Condition),
		)
	}

	return bw.Flush()
}

// RenderError writes the presentation of err, with a retry hint.
func RenderError(w io.Writer, err *weather.Error) error {
	p := Present(err)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", p.Title, p.Summary)
	if p.Details != "" {
		fmt.Fprintf(&b, "%s\n", p.Details)
	}
	b.WriteString("Try again or search for another city.\n")
	_, werr := io.WriteString(w, b.String())
	return werr
}
