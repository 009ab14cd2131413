package weather

import "fmt"

// Kind classifies errors surfaced to the dashboard.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUpstream
	KindMalformed
	KindGeolocationUnavailable
	KindGeolocationDenied
	KindGeolocationTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network failure"
	case KindUpstream:
		return "upstream error"
	case KindMalformed:
		return "malformed payload"
	case KindGeolocationUnavailable:
		return "geolocation unavailable"
	case KindGeolocationDenied:
		return "geolocation denied"
	case KindGeolocationTimeout:
		return "geolocation timeout"
	default:
		return "unknown"
	}
}

// Error is the error shape shown to the UI as {message, code}.
// Code is the HTTP status for upstream errors, 0 for network failures and
// the platform position error code for geolocation errors.
type Error struct {
	Kind    Kind
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrUpstream) works
// regardless of message and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNetworkFailure         = &Error{Kind: KindNetwork}
	ErrUpstream               = &Error{Kind: KindUpstream}
	ErrMalformedPayload       = &Error{Kind: KindMalformed}
	ErrGeolocationUnavailable = &Error{Kind: KindGeolocationUnavailable}
	ErrGeolocationDenied      = &Error{Kind: KindGeolocationDenied}
	ErrGeolocationTimeout     = &Error{Kind: KindGeolocationTimeout}
)

func malformed(format string, args ...any) *Error {
	return &Error{
		Kind:    KindMalformed,
		Message: fmt.Sprintf(format, args...),
		Code:    500,
	}
}
