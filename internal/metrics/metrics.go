// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dashboard collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	readingsSaved    *prometheus.CounterVec
	alertsEmitted    prometheus.Counter
	notifications    *prometheus.CounterVec
	chartsRendered   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_provider_requests_total",
				Help: "Total number of weather provider requests",
			},
			[]string{"provider", "operation", "status"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_provider_request_duration_seconds",
				Help:    "Time taken by weather provider requests",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider", "operation"},
		),
		readingsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_readings_saved_total",
				Help: "Total number of readings written to the store",
			},
			[]string{"status"},
		),
		alertsEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "weather_alerts_emitted_total",
				Help: "Total number of temperature alerts emitted",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_alert_notifications_total",
				Help: "Total number of alert notification attempts",
			},
			[]string{"notifier", "status"},
		),
		chartsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_charts_rendered_total",
				Help: "Total number of chart render attempts",
			},
			[]string{"kind", "status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.providerRequests, m.providerDuration, m.readingsSaved,
		m.alertsEmitted, m.notifications, m.chartsRendered,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordProviderRequest(provider, op, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, op, status).Inc()
	m.providerDuration.WithLabelValues(provider, op).Observe(seconds)
}

func (m *Metrics) RecordReadingSaved(status string) {
	if m == nil {
		return
	}
	m.readingsSaved.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAlerts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.alertsEmitted.Add(float64(n))
}

func (m *Metrics) RecordNotification(notifier, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notifier, status).Inc()
}

func (m *Metrics) RecordChart(kind, status string) {
	if m == nil {
		return
	}
	m.chartsRendered.WithLabelValues(kind, status).Inc()
}
