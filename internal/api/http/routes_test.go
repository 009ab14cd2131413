package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/upstream"
)

type fakeUpstream struct {
	mu        sync.Mutex
	resp      upstream.Response
	err       error
	healthErr error

	cities      []string
	coords      [][2]float64
	healthCalls int
	requestIDs  []string
}

func (f *fakeUpstream) Name() string { return "fake" }

func (f *fakeUpstream) City(ctx context.Context, city string) (upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cities = append(f.cities, city)
	f.requestIDs = append(f.requestIDs, upstream.RequestID(ctx))
	return f.resp, f.err
}

func (f *fakeUpstream) Coordinates(ctx context.Context, lat, lon float64) (upstream.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coords = append(f.coords, [2]float64{lat, lon})
	return f.resp, f.err
}

func (f *fakeUpstream) Health(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthCalls++
	return f.healthErr
}

func newTestApp(up upstream.Upstream, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(RequestID())
	RegisterRoutes(app, up, opts)
	return app
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func do(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestCityRequiresParameter(t *testing.T) {
	up := &fakeUpstream{}
	app := newTestApp(up, Options{})

	for _, target := range []string{"/api/weather/city", "/api/weather/city?city=", "/api/weather/city?city=%20%20"} {
		resp, body := do(t, app, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, envelope{Success: false, Message: msgCityRequired}, decode(t, body))
	}
	assert.Empty(t, up.cities)
}

func TestCityPassesThroughUpstream(t *testing.T) {
	up := &fakeUpstream{resp: upstream.Response{StatusCode: 404, Body: []byte(`{"cod":"404","message":"city not found"}`)}}
	app := newTestApp(up, Options{})

	resp, body := do(t, app, "/api/weather/city?city=Atlantis")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"cod":"404","message":"city not found"}`, string(body))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
	assert.Equal(t, []string{"Atlantis"}, up.cities)
}

func TestCityForwardsRequestID(t *testing.T) {
	up := &fakeUpstream{resp: upstream.Response{StatusCode: 200, Body: []byte(`{}`)}}
	app := newTestApp(up, Options{})

	resp, _ := do(t, app, "/api/weather/city?city=Nairobi")
	id := resp.Header.Get(fiber.HeaderXRequestID)
	require.NotEmpty(t, id)
	assert.Equal(t, []string{id}, up.requestIDs)
}

func TestTransportFailure(t *testing.T) {
	up := &fakeUpstream{err: errors.New("dial tcp: connection refused")}
	app := newTestApp(up, Options{})

	resp, body := do(t, app, "/api/weather/city?city=Nairobi")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, envelope{Success: false, Message: msgFetchFailed}, decode(t, body))
}

func TestCoordinatesValidation(t *testing.T) {
	up := &fakeUpstream{}
	app := newTestApp(up, Options{})

	cases := map[string]string{
		"/api/weather/coordinates":               msgCoordsRequired,
		"/api/weather/coordinates?lat=1":         msgCoordsRequired,
		"/api/weather/coordinates?lon=1":         msgCoordsRequired,
		"/api/weather/coordinates?lat=91&lon=0":  msgCoordsInvalid,
		"/api/weather/coordinates?lat=0&lon=181": msgCoordsInvalid,
		"/api/weather/coordinates?lat=abc&lon=0": msgCoordsInvalid,
	}
	for target, msg := range cases {
		resp, body := do(t, app, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, msg, decode(t, body).Message, target)
	}
	assert.Empty(t, up.coords)
}

func TestCoordinatesPassesThroughUpstream(t *testing.T) {
	up := &fakeUpstream{resp: upstream.Response{StatusCode: 200, Body: []byte(`{"name":"Nairobi"}`)}}
	app := newTestApp(up, Options{})

	resp, body := do(t, app, "/api/weather/coordinates?lat=-1.2921&lon=36.8219")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Nairobi"}`, string(body))
	assert.Equal(t, [][2]float64{{-1.2921, 36.8219}}, up.coords)
}

func TestConnectionCheck(t *testing.T) {
	up := &fakeUpstream{}
	app := newTestApp(up, Options{CheckTTL: time.Minute})

	_, body := do(t, app, "/api/connection-check")
	assert.True(t, decode(t, body).Success)

	up.mu.Lock()
	up.healthErr = errors.New("down")
	up.mu.Unlock()

	_, body = do(t, app, "/api/connection-check")
	assert.True(t, decode(t, body).Success, "result is memoized")
	assert.Equal(t, 1, up.healthCalls)
}

func TestConnectionCheckWithoutMemo(t *testing.T) {
	up := &fakeUpstream{healthErr: errors.New("down")}
	app := newTestApp(up, Options{})

	resp, body := do(t, app, "/api/connection-check")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode(t, body).Success)

	do(t, app, "/api/connection-check")
	assert.Equal(t, 2, up.healthCalls)
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	app := newTestApp(&fakeUpstream{}, Options{})
	app.Use(recover.New())
	app.Get("/fails", func(c *fiber.Ctx) error {
		return errors.New("pq: password authentication failed for user admin")
	})
	app.Get("/panics", func(c *fiber.Ctx) error {
		panic("nil map write in /srv/secret/handler.go")
	})

	for _, target := range []string{"/fails", "/panics"} {
		resp, body := do(t, app, target)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, target)
		assert.Equal(t, envelope{Success: false, Message: msgInternal}, decode(t, body), target)
	}

	resp, body := do(t, app, "/api/weather/city")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, msgCityRequired, decode(t, body).Message, "fiber errors keep their message")
}
