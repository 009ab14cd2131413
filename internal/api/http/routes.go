package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-dashboard/internal/upstream"
)

var validate = validator.New()

const (
	requestIDKey  = "requestid"
	connectionKey = "connection"

	msgCityRequired   = "City parameter is required"
	msgCoordsRequired = "Latitude and longitude parameters are required"
	msgCoordsInvalid  = "Latitude must be within [-90, 90] and longitude within [-180, 180]"
	msgFetchFailed    = "Failed to fetch weather data"
	msgInternal       = "Internal server error"
)

// Options tune the proxy routes.
type Options struct {
	// CheckTimeout bounds the upstream health probe.
	CheckTimeout time.Duration
	// CheckTTL memoizes the connection check result; 0 disables it.
	CheckTTL time.Duration
}

type proxy struct {
	up   upstream.Upstream
	opts Options
	memo *cache.Cache
}

// RegisterRoutes wires the proxy handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, up upstream.Upstream, opts Options) {
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = 5 * time.Second
	}

	p := &proxy{up: up, opts: opts}
	if opts.CheckTTL > 0 {
		p.memo = cache.New(opts.CheckTTL, 2*opts.CheckTTL)
	}

	api := app.Group("/api")
	api.Get("/weather/city", p.city)
	api.Get("/weather/coordinates", p.coordinates)
	api.Get("/connection-check", p.connectionCheck)
}

// RequestID tags every request and response with an X-Request-ID.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	})
}

// ErrorHandler renders errors as {success:false, message}. Only *fiber.Error
// messages reach the client; anything else is logged and reported generically.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternal
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.OriginalURL(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

// cityQuery holds query parameters for the city route.
type cityQuery struct {
	City string `validate:"required"`
}

// coordinatesQuery holds query parameters for the coordinates route.
type coordinatesQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func (p *proxy) city(c *fiber.Ctx) error {
	// Query values alias fasthttp buffers that are reused after the handler returns.
	q := cityQuery{City: strings.Clone(strings.TrimSpace(c.Query("city")))}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgCityRequired)
	}

	resp, err := p.up.City(p.context(c), q.City)
	return p.relay(c, resp, err)
}

func (p *proxy) coordinates(c *fiber.Ctx) error {
	q := coordinatesQuery{
		Lat: strings.TrimSpace(c.Query("lat")),
		Lon: strings.TrimSpace(c.Query("lon")),
	}
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return fiber.NewError(fiber.StatusBadRequest, msgCoordsRequired)
				}
			}
		}
		return fiber.NewError(fiber.StatusBadRequest, msgCoordsInvalid)
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgCoordsInvalid)
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgCoordsInvalid)
	}

	resp, err := p.up.Coordinates(p.context(c), lat, lon)
	return p.relay(c, resp, err)
}

func (p *proxy) connectionCheck(c *fiber.Ctx) error {
	if p.memo != nil {
		if v, ok := p.memo.Get(connectionKey); ok {
			return c.JSON(fiber.Map{"success": v.(bool)})
		}
	}

	ctx, cancel := context.WithTimeout(p.context(c), p.opts.CheckTimeout)
	defer cancel()

	err := p.up.Health(ctx)
	if err != nil {
		log.Printf("WARN: connection check against %s failed: %v", p.up.Name(), err)
	}
	ok := err == nil

	if p.memo != nil {
		p.memo.SetDefault(connectionKey, ok)
	}
	return c.JSON(fiber.Map{"success": ok})
}

// relay passes the upstream status and body through unchanged.
func (p *proxy) relay(c *fiber.Ctx, resp upstream.Response, err error) error {
	if err != nil {
		log.Printf("ERROR: %s request %s failed: %v", p.up.Name(), c.OriginalURL(), err)
		return fiber.NewError(fiber.StatusInternalServerError, msgFetchFailed)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(resp.StatusCode).Send(resp.Body)
}

func (p *proxy) context(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
		ctx = upstream.WithRequestID(ctx, id)
	}
	return ctx
}
