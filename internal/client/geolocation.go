package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Position error codes, as reported by device location APIs.
const (
	PermissionDenied    = 1
	PositionUnavailable = 2
	Timeout             = 3
)

// PositionError is a platform geolocation failure.
type PositionError struct {
	Code    int
	Message string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position error %d: %s", e.Code, e.Message)
}

// Geolocator reports the device's current position.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (weather.Coordinates, error)
}

// ResolveCurrentLocation asks the configured Geolocator for the device
// position and maps failures onto the geolocation error kinds.
func (c *Client) ResolveCurrentLocation(ctx context.Context) (weather.Coordinates, error) {
	if c.locator == nil {
		return weather.Coordinates{}, &weather.Error{
			Kind:    weather.KindGeolocationUnavailable,
			Message: "Geolocation is not supported on this device",
		}
	}

	pos, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		return weather.Coordinates{}, mapPositionError(err)
	}
	return pos, nil
}

func mapPositionError(err error) *weather.Error {
	const msg = "Unable to retrieve your location"

	var pe *PositionError
	switch {
	case errors.As(err, &pe):
		kind := weather.KindGeolocationUnavailable
		switch pe.Code {
		case PermissionDenied:
			kind = weather.KindGeolocationDenied
		case Timeout:
			kind = weather.KindGeolocationTimeout
		}
		return &weather.Error{Kind: kind, Message: msg, Code: pe.Code, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &weather.Error{Kind: weather.KindGeolocationTimeout, Message: msg, Code: Timeout, Err: err}
	default:
		return &weather.Error{Kind: weather.KindGeolocationUnavailable, Message: msg, Code: PositionUnavailable, Err: err}
	}
}

// StaticLocator always answers with the same position or error.
type StaticLocator struct {
	Position weather.Coordinates
	Err      error
}

func (l StaticLocator) CurrentPosition(context.Context) (weather.Coordinates, error) {
	return l.Position, l.Err
}

// geocoder keeps its API key in a package variable.
var geocoderMu sync.Mutex

// AddressLocator resolves a configured home address with the Google
// geocoding API and uses it as the device position.
type AddressLocator struct {
	apiKey  string
	address geocoder.Address
	geocode func(geocoder.Address) (geocoder.Location, error)
}

func NewAddressLocator(apiKey, city, country string) *AddressLocator {
	return &AddressLocator{
		apiKey:  apiKey,
		address: geocoder.Address{City: city, Country: country},
		geocode: geocoder.Geocoding,
	}
}

func (l *AddressLocator) CurrentPosition(ctx context.Context) (weather.Coordinates, error) {
	if l.apiKey == "" || l.address.City == "" {
		return weather.Coordinates{}, &PositionError{Code: PositionUnavailable, Message: "home address is not configured"}
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)

	go func() {
		geocoderMu.Lock()
		defer geocoderMu.Unlock()

		geocoder.ApiKey = l.apiKey
		loc, err := l.geocode(l.address)
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, &PositionError{Code: Timeout, Message: ctx.Err().Error()}
	case r := <-ch:
		if r.err != nil {
			code := PositionUnavailable
			if strings.Contains(r.err.Error(), "REQUEST_DENIED") {
				code = PermissionDenied
			}
			return weather.Coordinates{}, &PositionError{Code: code, Message: r.err.Error()}
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
