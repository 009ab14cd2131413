package dashboard

import "github.com/i474232898/weather-dashboard/internal/weather"

// Presentation is how an error is shown to the user.
type Presentation struct {
	Title   string
	Summary string
	Details string

	// Connection marks errors shown as API connection problems.
	Connection bool
}

// Present chooses the presentation for err. Network and upstream errors
// with code 0, 404 or 500 are shown as API connection errors.
func Present(err *weather.Error) Presentation {
	if err == nil {
		return Presentation{}
	}

	if isConnectionError(err) {
		p := Presentation{
			Title:      "API Connection Error",
			Details:    "Details: " + err.Message,
			Connection: true,
		}
		switch err.Code {
		case 404:
			p.Summary = "The requested resource was not found."
		case 500:
			p.Summary = "The server encountered an error."
		default:
			p.Summary = "Could not connect to the weather API."
		}
		return p
	}

	return Presentation{
		Title:   "Error",
		Summary: err.Message,
	}
}

func isConnectionError(err *weather.Error) bool {
	switch err.Kind {
	case weather.KindNetwork, weather.KindUpstream, weather.KindMalformed:
	default:
		return false
	}
	return err.Code == 0 || err.Code == 404 || err.Code == 500
}

// APIStatus is the proxy connection indicator.
type APIStatus struct {
	Configured bool
	Connected  bool
	Checking   bool
}

func (s APIStatus) Label() string {
	switch {
	case s.Checking:
		return "Checking API..."
	case s.Connected:
		return "API Connected"
	case s.Configured:
		return "API Not Connected"
	default:
		return "API Not Configured"
	}
}
