// Package notify delivers temperature alerts to external channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Channel is one named delivery target.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert weather.Alert) error
}

// Dispatcher fans an alert out to every channel. It implements weather.Notifier.
type Dispatcher struct {
	channels []Channel
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a dispatcher over channels.
func NewDispatcher(logger *slog.Logger, m *metrics.Metrics, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		channels: channels,
		logger:   logger.With("component", "notify"),
		metrics:  m,
	}
}

// Notify sends alert on every channel. All channels are attempted; the
// returned error joins the individual failures.
func (d *Dispatcher) Notify(ctx context.Context, alert weather.Alert) error {
	var errs []error
	for _, ch := range d.channels {
		if err := ch.Send(ctx, alert); err != nil {
			d.logger.Error("failed to send alert notification", "channel", ch.Name(), "city", alert.City, "error", err)
			d.metrics.RecordNotification(ch.Name(), "error")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		d.metrics.RecordNotification(ch.Name(), "success")
	}
	return errors.Join(errs...)
}

// LogChannel writes the alert message to the logger.
type LogChannel struct {
	logger *slog.Logger
}

func NewLogChannel(logger *slog.Logger) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Name() string { return "log" }

func (l *LogChannel) Send(_ context.Context, alert weather.Alert) error {
	l.logger.Warn("ALERT: "+alert.Message, "city", alert.City)
	return nil
}
