// Package upstream implements the weather backends the proxy routes forward to.
package upstream

import (
	"context"
	"strconv"
)

// Response is an upstream reply relayed to the dashboard as is.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Upstream is a weather backend reachable by city name or coordinates.
// A non-nil error means the backend could not be reached at all; HTTP
// failures are reported through Response.StatusCode.
type Upstream interface {
	Name() string
	City(ctx context.Context, city string) (Response, error)
	Coordinates(ctx context.Context, lat, lon float64) (Response, error)
	Health(ctx context.Context) error
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
