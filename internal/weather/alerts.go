package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/metrics"
)

// AlertDefaults are the configured fallbacks for an AlertQuery.
type AlertDefaults struct {
	Threshold        float64 // °C
	ConsecutiveCount int
	WindowHours      int
}

// AlertQuery parameterises one evaluation. Nil fields fall back to the
// evaluator defaults; explicit values are validated as given.
type AlertQuery struct {
	Threshold        *float64
	ConsecutiveCount *int
	WindowHours      *int
}

// NotificationResult records the outcome of one best-effort delivery.
type NotificationResult struct {
	City string `json:"city"`
	Sent bool   `json:"sent"`
}

// AlertEvaluator scans recent readings for trailing runs of threshold violations.
type AlertEvaluator struct {
	store    Store
	notifier Notifier
	defaults AlertDefaults
	now      Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewAlertEvaluator creates an evaluator. notifier may be nil.
func NewAlertEvaluator(store Store, notifier Notifier, defaults AlertDefaults, logger *slog.Logger, m *metrics.Metrics) *AlertEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.ConsecutiveCount <= 0 {
		defaults.ConsecutiveCount = 3
	}
	if defaults.WindowHours <= 0 {
		defaults.WindowHours = 24
	}
	return &AlertEvaluator{
		store:    store,
		notifier: notifier,
		defaults: defaults,
		now:      utcNow,
		logger:   logger.With("component", "alerts"),
		metrics:  m,
	}
}

// WithClock replaces the evaluator clock.
func (e *AlertEvaluator) WithClock(c Clock) *AlertEvaluator {
	e.now = c
	return e
}

func (e *AlertEvaluator) resolve(q AlertQuery) (threshold float64, consecutive, window int, err error) {
	threshold = e.defaults.Threshold
	if q.Threshold != nil {
		threshold = *q.Threshold
	}
	consecutive = e.defaults.ConsecutiveCount
	if q.ConsecutiveCount != nil {
		consecutive = *q.ConsecutiveCount
	}
	window = e.defaults.WindowHours
	if q.WindowHours != nil {
		window = *q.WindowHours
	}
	if consecutive < 1 {
		return 0, 0, 0, fmt.Errorf("%w: consecutive count must be >= 1, got %d", ErrInvalidAlertQuery, consecutive)
	}
	if window <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: time window must be > 0 hours, got %d", ErrInvalidAlertQuery, window)
	}
	return threshold, consecutive, window, nil
}

// Check returns one alert per city whose trailing run of readings strictly
// above the threshold is at least the required length. Store failures are
// returned unchanged.
func (e *AlertEvaluator) Check(ctx context.Context, q AlertQuery) ([]Alert, error) {
	threshold, consecutive, window, err := e.resolve(q)
	if err != nil {
		return nil, err
	}

	since := e.now().Add(-time.Duration(window) * time.Hour)
	readings, err := e.store.Range(ctx, Filter{From: since})
	if err != nil {
		e.logger.Error("error checking alerts", "since", since, "error", err)
		return nil, err
	}

	if len(readings) == 0 {
		e.logger.Info("no weather data found in the specified time window", "window_hours", window)
		return []Alert{}, nil
	}

	thresholdK := CelsiusToKelvin(threshold)
	alerts := make([]Alert, 0)

	byCity := groupByCity(readings)
	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	for _, city := range cities {
		run := 0
		var stamps []time.Time
		var last float64

		for _, r := range byCity[city] {
			if r.Temperature > thresholdK {
				run++
				stamps = append(stamps, r.Timestamp)
			} else {
				run = 0
				stamps = nil
			}
			last = r.Temperature
		}

		if run >= consecutive {
			alerts = append(alerts, Alert{
				City:                city,
				CurrentTemp:         Round1(KelvinToCelsius(last)),
				Threshold:           threshold,
				ConsecutiveCount:    run,
				ViolationTimestamps: stamps,
				Message:             alertMessage(city, threshold, run),
			})
		}
	}

	for _, a := range alerts {
		e.logger.Warn(a.Message, "city", a.City, "current_temp", a.CurrentTemp, "consecutive", a.ConsecutiveCount)
	}
	e.metrics.RecordAlerts(len(alerts))

	return alerts, nil
}

// Notify delivers every alert through the notifier. A failed delivery is
// logged and reported as Sent=false; it never stops the remaining deliveries.
func (e *AlertEvaluator) Notify(ctx context.Context, alerts []Alert) []NotificationResult {
	results := make([]NotificationResult, 0, len(alerts))
	for _, a := range alerts {
		results = append(results, NotificationResult{City: a.City, Sent: e.send(ctx, a)})
	}
	return results
}

func (e *AlertEvaluator) send(ctx context.Context, a Alert) (ok bool) {
	if e.notifier == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("alert notifier panicked", "city", a.City, "panic", r)
			ok = false
		}
	}()
	if err := e.notifier.Notify(ctx, a); err != nil {
		e.logger.Error("failed to send alert notification", "city", a.City, "error", err)
		return false
	}
	return true
}

// groupByCity builds the per-city reading sequences, each sorted by timestamp.
// It does not depend on the order the store returned.
func groupByCity(readings []Reading) map[string][]Reading {
	out := make(map[string][]Reading)
	for _, r := range readings {
		out[r.City] = append(out[r.City], r)
	}
	for _, seq := range out {
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].Timestamp.Before(seq[j].Timestamp)
		})
	}
	return out
}

func alertMessage(city string, threshold float64, n int) string {
	return fmt.Sprintf("%s has exceeded %s°C for %d consecutive readings",
		city, strconv.FormatFloat(threshold, 'f', -1, 64), n)
}
