package httpapi

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Deps are the components the handlers delegate to.
type Deps struct {
	Service    *weather.Service
	Aggregator *weather.Aggregator
	Alerts     *weather.AlertEvaluator
	// Health reports backing store availability; nil means always healthy.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

type handlers struct {
	Deps
	logger *slog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{Deps: d, logger: log.With("component", "http")}

	app.Get("/", h.index)
	app.Post("/weather", h.lookup)
	app.Get("/health", h.health)

	v1 := app.Group("/api/v1")
	v1.Get("/alerts", h.alerts)
	v1.Get("/summary/daily", h.dailySummary)
	v1.Get("/summary/hourly", h.hourly)
	v1.Get("/forecast", h.forecast)
	v1.Get("/weather/current", h.current)
	v1.Get("/weather/history", h.history)
}

func (h *handlers) index(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, fiber.Map{"Title": "Weather Dashboard"}); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *handlers) health(c *fiber.Ctx) error {
	if h.Health != nil {
		if err := h.Health(c.UserContext()); err != nil {
			h.logger.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unavailable",
				"service": "weather-dashboard",
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "weather-dashboard",
	})
}

// lookupForm is the body of POST /weather.
type lookupForm struct {
	City string `form:"city" validate:"required"`
	Unit string `form:"unit" validate:"required"`
}

func (h *handlers) lookup(c *fiber.Ctx) error {
	var form lookupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form body")
	}
	form.City = strings.TrimSpace(form.City)
	form.Unit = strings.TrimSpace(form.Unit)

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Unit" {
			return fiber.NewError(fiber.StatusBadRequest, "Unit is required.")
		}
		return fiber.NewError(fiber.StatusBadRequest, "City cannot be blank.")
	}

	report, err := h.Service.Lookup(c.UserContext(), form.City, form.Unit)
	if err != nil {
		return h.lookupError(form.City, err)
	}
	return c.JSON(report)
}

func (h *handlers) lookupError(city string, err error) error {
	switch {
	case errors.Is(err, weather.ErrEmptyCity):
		return fiber.NewError(fiber.StatusBadRequest, "City cannot be blank.")
	case errors.Is(err, weather.ErrInvalidUnit):
		return fiber.NewError(fiber.StatusBadRequest, "Unit must be celsius, fahrenheit or kelvin.")
	case errors.Is(err, weather.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("City \"%s\" not found. Please check the spelling.", city))
	case errors.Is(err, weather.ErrUpstreamTimeout):
		h.logger.Error("weather provider timed out", "city", city, "error", err)
		return fiber.NewError(fiber.StatusGatewayTimeout, "Weather service timed out. Please try again.")
	case errors.Is(err, weather.ErrUpstream):
		h.logger.Error("HTTP error while fetching weather", "city", city, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not retrieve weather data.")
	default:
		h.logger.Error("error in weather route", "city", city, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// alertsQuery holds the optional overrides of the configured alert defaults.
type alertsQuery struct {
	Threshold   *float64
	Consecutive *int
	Window      *int
	Notify      bool
}

func (q *alertsQuery) bind(c *fiber.Ctx) error {
	if s := c.Query("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("threshold must be a number")
		}
		q.Threshold = &v
	}
	var err error
	if q.Consecutive, err = queryOptionalInt(c, "consecutive"); err != nil {
		return err
	}
	if q.Window, err = queryOptionalInt(c, "window"); err != nil {
		return err
	}
	q.Notify = c.QueryBool("notify", false)
	return nil
}

func (h *handlers) alerts(c *fiber.Ctx) error {
	var q alertsQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	alerts, err := h.Alerts.Check(c.UserContext(), weather.AlertQuery{
		Threshold:        q.Threshold,
		ConsecutiveCount: q.Consecutive,
		WindowHours:      q.Window,
	})
	if err != nil {
		if errors.Is(err, weather.ErrInvalidAlertQuery) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to check alerts")
	}

	resp := fiber.Map{"alerts": alerts}
	if q.Notify {
		resp["notifications"] = h.Alerts.Notify(c.UserContext(), alerts)
	}
	return c.JSON(resp)
}

// summaryQuery is shared by the summary endpoints.
type summaryQuery struct {
	City string
	Days int `validate:"min=1,max=30"`
}

func (h *handlers) dailySummary(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	q := summaryQuery{Days: days}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 30")
	}
	return c.JSON(h.Aggregator.DailySummary(c.UserContext(), q.Days))
}

func (h *handlers) hourly(c *fiber.Ctx) error {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	q := summaryQuery{City: strings.TrimSpace(c.Query("city")), Days: days}
	if q.City == "" {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 30")
	}
	return c.JSON(h.Aggregator.Hourly(c.UserContext(), q.City, q.Days))
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}
	return c.JSON(h.Aggregator.ForecastSummary(c.UserContext(), city))
}

func (h *handlers) current(c *fiber.Ctx) error {
	city := strings.TrimSpace(c.Query("city"))
	if city == "" {
		return fiber.NewError(fiber.StatusBadRequest, "city is required")
	}

	reading, err := h.Service.Latest(c.UserContext(), city)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
		}
		h.logger.Error("failed to fetch latest reading", "city", city, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}

	return c.JSON(reading)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	City string    `validate:"required"`
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (q *historyQuery) bind(c *fiber.Ctx) error {
	q.City = strings.TrimSpace(c.Query("city"))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	q.From = from
	q.To = to
	return nil
}

func (h *handlers) history(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	readings, err := h.Service.History(c.UserContext(), weather.Filter{City: req.City, From: req.From, To: req.To})
	if err != nil {
		h.logger.Error("failed to fetch weather history", "city", req.City, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	return c.JSON(fiber.Map{
		"city":     req.City,
		"from":     req.From,
		"to":       req.To,
		"readings": readings,
	})
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// queryOptionalInt returns nil when key is absent.
func queryOptionalInt(c *fiber.Ctx, key string) (*int, error) {
	if c.Query(key) == "" {
		return nil, nil
	}
	v, err := queryInt(c, key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
