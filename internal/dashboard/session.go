// Package dashboard drives what the user sees: it runs weather lookups,
// tracks their state and renders the result.
package dashboard

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Status is the UI-observable state of the latest lookup.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of the session. Data stays set while a new lookup is
// loading or after it fails, so the last good weather remains visible.
type State struct {
	Status Status
	Data   *weather.WeatherData
	Err    *weather.Error
	Seq    uint64
}

// Fetcher is the weather client as seen by the session.
type Fetcher interface {
	FetchByCity(ctx context.Context, name string) (weather.WeatherData, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.WeatherData, error)
	ResolveCurrentLocation(ctx context.Context) (weather.Coordinates, error)
}

// Result is the outcome of one lookup. Stale is set when a later lookup was
// issued before this one finished; stale results are never applied.
type Result struct {
	Seq   uint64
	Data  weather.WeatherData
	Err   *weather.Error
	Stale bool
}

// Session runs lookups for one dashboard. Lookups may overlap; the one
// issued last wins no matter which finishes last.
type Session struct {
	fetcher     Fetcher
	defaultCity string

	mu       sync.Mutex
	seq      uint64
	state    State
	onChange func(State)
}

// NewSession creates a session that falls back to defaultCity when the
// device location cannot be resolved.
func NewSession(f Fetcher, defaultCity string) *Session {
	return &Session{
		fetcher:     f,
		defaultCity: defaultCity,
	}
}

// OnChange registers fn to be called after every applied state transition.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SearchCity looks up the weather for a city.
func (s *Session) SearchCity(ctx context.Context, city string) Result {
	seq := s.begin()
	data, err := s.fetcher.FetchByCity(ctx, city)
	return s.finish(seq, data, err)
}

// UseCurrentLocation looks up the weather at the device position, or for
// the default city when the position is unavailable.
func (s *Session) UseCurrentLocation(ctx context.Context) Result {
	seq := s.begin()
	data, err := s.currentLocation(ctx)
	return s.finish(seq, data, err)
}

// Retry repeats the lookup for the location on screen, or the current
// location when nothing has loaded yet.
func (s *Session) Retry(ctx context.Context) Result {
	s.mu.Lock()
	data := s.state.Data
	s.mu.Unlock()

	if data != nil && data.Location.Name != "" {
		return s.SearchCity(ctx, data.Location.Name)
	}
	return s.UseCurrentLocation(ctx)
}

// Refresh repeats the lookup the user asked for. A non-empty city is always
// searched again, even when an earlier search for it failed; otherwise it
// behaves like Retry.
func (s *Session) Refresh(ctx context.Context, city string) Result {
	if city = strings.TrimSpace(city); city != "" {
		return s.SearchCity(ctx, city)
	}
	return s.Retry(ctx)
}

func (s *Session) currentLocation(ctx context.Context) (weather.WeatherData, error) {
	pos, err := s.fetcher.ResolveCurrentLocation(ctx)
	if err != nil {
		log.Printf("INFO: geolocation failed (%v); falling back to %s", err, s.defaultCity)
		return s.fetcher.FetchByCity(ctx, s.defaultCity)
	}
	return s.fetcher.FetchByCoordinates(ctx, pos.Lat, pos.Lon)
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	s.seq++
	s.state.Seq = s.seq
	s.state.Status = StatusLoading
	s.state.Err = nil
	st, fn, seq := s.state, s.onChange, s.seq
	s.mu.Unlock()

	if fn != nil {
		fn(st)
	}
	return seq
}

func (s *Session) finish(seq uint64, data weather.WeatherData, err error) Result {
	res := Result{Seq: seq, Data: data, Err: asWeatherError(err)}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		res.Stale = true
		log.Printf("DEBUG: dropping stale result %d (latest %d)", seq, s.latest())
		return res
	}

	if res.Err != nil {
		s.state.Status = StatusError
		s.state.Err = res.Err
	} else {
		s.state.Status = StatusSuccess
		s.state.Data = &data
	}
	st, fn := s.state, s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(st)
	}
	return res
}

func (s *Session) latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func asWeatherError(err error) *weather.Error {
	if err == nil {
		return nil
	}
	var werr *weather.Error
	if errors.As(err, &werr) {
		return werr
	}
	return &weather.Error{Kind: weather.KindNetwork, Message: err.Error(), Code: 500, Err: err}
}
