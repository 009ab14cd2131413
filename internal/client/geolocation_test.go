package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestResolveCurrentLocationWithoutGeolocator(t *testing.T) {
	c, _ := newTestClient("http://unused")

	_, err := c.ResolveCurrentLocation(context.Background())
	assert.True(t, errors.Is(err, weather.ErrGeolocationUnavailable))
}

func TestResolveCurrentLocationMapsErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
		code int
	}{
		{"denied", &PositionError{Code: PermissionDenied}, weather.ErrGeolocationDenied, PermissionDenied},
		{"unavailable", &PositionError{Code: PositionUnavailable}, weather.ErrGeolocationUnavailable, PositionUnavailable},
		{"timeout", &PositionError{Code: Timeout}, weather.ErrGeolocationTimeout, Timeout},
		{"deadline", context.DeadlineExceeded, weather.ErrGeolocationTimeout, Timeout},
		{"other", errors.New("gps exploded"), weather.ErrGeolocationUnavailable, PositionUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient("http://unused", WithGeolocator(StaticLocator{Err: tc.err}))

			_, err := c.ResolveCurrentLocation(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)

			var werr *weather.Error
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, tc.code, werr.Code)
			assert.Equal(t, "Unable to retrieve your location", werr.Message)
		})
	}
}

func TestResolveCurrentLocation(t *testing.T) {
	want := weather.Coordinates{Lat: -1.2921, Lon: 36.8219}
	c, _ := newTestClient("http://unused", WithGeolocator(StaticLocator{Position: want}))

	got, err := c.ResolveCurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAddressLocator(t *testing.T) {
	l := NewAddressLocator("key", "Nairobi", "Kenya")
	l.geocode = func(a geocoder.Address) (geocoder.Location, error) {
		assert.Equal(t, "Nairobi", a.City)
		assert.Equal(t, "key", geocoder.ApiKey)
		return geocoder.Location{Latitude: -1.2921, Longitude: 36.8219}, nil
	}

	got, err := l.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: -1.2921, Lon: 36.8219}, got)
}

func TestAddressLocatorErrors(t *testing.T) {
	_, err := NewAddressLocator("", "Nairobi", "Kenya").CurrentPosition(context.Background())
	var pe *PositionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PositionUnavailable, pe.Code)

	denied := NewAddressLocator("key", "Nairobi", "Kenya")
	denied.geocode = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("REQUEST_DENIED")
	}
	_, err = denied.CurrentPosition(context.Background())
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PermissionDenied, pe.Code)

	slow := NewAddressLocator("key", "Nairobi", "Kenya")
	release := make(chan struct{})
	defer close(release)
	slow.geocode = func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.CurrentPosition(ctx)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Timeout, pe.Code)
}
