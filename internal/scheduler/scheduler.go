package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Ingester fetches and persists the current weather for one city.
type Ingester interface {
	FetchAndStore(ctx context.Context, city string) error
}

// AlertChecker evaluates and delivers alerts.
type AlertChecker interface {
	Check(ctx context.Context, q weather.AlertQuery) ([]weather.Alert, error)
	Notify(ctx context.Context, alerts []weather.Alert) []weather.NotificationResult
}

// Options configures the background jobs. A zero interval disables its job.
type Options struct {
	Cities             []string
	FetchInterval      time.Duration
	AlertCheckInterval time.Duration
	// JobTimeout bounds a single run of a job.
	JobTimeout time.Duration
}

// Scheduler periodically ingests the tracked cities and evaluates alerts.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ingester  Ingester
	alerts    AlertChecker
	opts      Options
	logger    *slog.Logger
}

// New creates a new Scheduler. alerts may be nil.
func New(opts Options, ingester Ingester, alerts AlertChecker, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 30 * time.Second
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		ingester:  ingester,
		alerts:    alerts,
		opts:      opts,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the configured jobs and starts the underlying scheduler.
// With nothing to schedule it is a no-op.
func (s *Scheduler) Start() error {
	jobs := 0

	if len(s.opts.Cities) > 0 && s.opts.FetchInterval > 0 && s.ingester != nil {
		if _, err := s.scheduler.Every(s.opts.FetchInterval).Do(s.ingestAll); err != nil {
			return err
		}
		jobs++
	}
	if s.opts.AlertCheckInterval > 0 && s.alerts != nil {
		if _, err := s.scheduler.Every(s.opts.AlertCheckInterval).WaitForSchedule().Do(s.checkAlerts); err != nil {
			return err
		}
		jobs++
	}

	if jobs == 0 {
		s.logger.Info("no cities or alert checks configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "jobs", jobs, "cities", len(s.opts.Cities))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) ingestAll() {
	s.logger.Debug("running weather fetch job")

	var wg sync.WaitGroup
	for _, city := range s.opts.Cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
			defer cancel()

			if err := s.ingester.FetchAndStore(ctx, city); err != nil {
				s.logger.Warn("fetch failed", "city", city, "error", err)
			}
		}(city)
	}
	wg.Wait()
	s.logger.Debug("completed weather fetch job")
}

func (s *Scheduler) checkAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
	defer cancel()

	alerts, err := s.alerts.Check(ctx, weather.AlertQuery{})
	if err != nil {
		s.logger.Error("scheduled alert check failed", "error", err)
		return
	}
	if len(alerts) == 0 {
		return
	}
	for _, r := range s.alerts.Notify(ctx, alerts) {
		if !r.Sent {
			s.logger.Warn("alert notification not delivered", "city", r.City)
		}
	}
}
