package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingIngester struct {
	mu     sync.Mutex
	cities map[string]int
}

func (c *countingIngester) FetchAndStore(_ context.Context, city string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cities[city]++
	return nil
}

func (c *countingIngester) count(city string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cities[city]
}

type fakeAlerts struct {
	mu       sync.Mutex
	checks   int
	notified []weather.Alert
}

func (f *fakeAlerts) Check(context.Context, weather.AlertQuery) ([]weather.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	return []weather.Alert{{City: "Tokyo"}}, nil
}

func (f *fakeAlerts) Notify(_ context.Context, alerts []weather.Alert) []weather.NotificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, alerts...)
	return []weather.NotificationResult{{City: "Tokyo", Sent: false}}
}

func (f *fakeAlerts) notifiedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestScheduler_NothingConfigured(t *testing.T) {
	s := New(Options{}, &countingIngester{cities: map[string]int{}}, nil, quiet())
	require.NoError(t, s.Start())
	assert.False(t, s.scheduler.IsRunning())
	s.Stop()
}

func TestScheduler_IngestsTrackedCities(t *testing.T) {
	ing := &countingIngester{cities: map[string]int{}}
	s := New(Options{
		Cities:        []string{"Paris", "Tokyo"},
		FetchInterval: time.Hour,
	}, ing, nil, quiet())

	require.NoError(t, s.Start())
	defer s.Stop()

	// the first run starts immediately
	assert.Eventually(t, func() bool {
		return ing.count("Paris") == 1 && ing.count("Tokyo") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_AlertCheckNotifies(t *testing.T) {
	alerts := &fakeAlerts{}
	s := New(Options{AlertCheckInterval: 50 * time.Millisecond}, nil, alerts, quiet())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return alerts.notifiedCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
