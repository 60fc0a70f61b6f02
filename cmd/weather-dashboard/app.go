package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/i474232898/weather-dashboard/internal/charts"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/notify"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// application holds the wired components shared by every subcommand.
type application struct {
	cfg      *config.AppConfig
	logger   *slog.Logger
	registry *prometheus.Registry

	store      weather.Store
	health     func(ctx context.Context) error
	service    *weather.Service
	aggregator *weather.Aggregator
	alerts     *weather.AlertEvaluator

	closers []func()
}

func newApplication(cfg *config.AppConfig, logger *slog.Logger) (*application, error) {
	app := &application{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(app.registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	if err := app.openStore(); err != nil {
		return nil, err
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.ProviderTimeout,
	}
	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherOptions{
		APIKey:      cfg.OpenWeatherAPIKey,
		BaseURL:     cfg.OpenWeatherBaseURL,
		ForecastTTL: cfg.ForecastCacheTTL,
		Metrics:     m,
	})
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; provider calls will fail")
	}

	dispatcher, err := app.newDispatcher(m)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.aggregator = weather.NewAggregator(app.store, provider, logger)

	renderCfg := charts.DefaultRenderConfig()
	renderCfg.OutputDir = filepath.Join(cfg.StaticDir, "plots")
	renderCfg.URLPrefix = "/static/plots"
	renderer := charts.NewRenderer(renderCfg, app.aggregator, logger, m)

	app.service = weather.NewService(app.store, provider, renderer, logger, m)
	app.alerts = weather.NewAlertEvaluator(app.store, dispatcher, weather.AlertDefaults{
		Threshold:        cfg.AlertThreshold,
		ConsecutiveCount: cfg.AlertConsecutive,
		WindowHours:      cfg.AlertWindowHours,
	}, logger, m)

	return app, nil
}

func (a *application) openStore() error {
	if a.cfg.DBDriver == "memory" {
		a.logger.Warn("using in-memory store; readings are lost on restart")
		a.store = store.NewMemoryStore()
		return nil
	}

	sqlStore, err := store.Open(store.Options{
		Driver:     a.cfg.DBDriver,
		DSN:        a.cfg.DBDSN,
		SQLitePath: a.cfg.SQLitePath,
		Debug:      a.cfg.LogLevel == slog.LevelDebug,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.cfg.DBDriver, err)
	}
	a.store = sqlStore
	a.health = sqlStore.Ping
	a.closers = append(a.closers, func() {
		if err := sqlStore.Close(); err != nil {
			a.logger.Error("error closing store", "error", err)
		}
	})
	a.logger.Info("store ready", "driver", a.cfg.DBDriver)
	return nil
}

func (a *application) newDispatcher(m *metrics.Metrics) (*notify.Dispatcher, error) {
	channels := []notify.Channel{notify.NewLogChannel(a.logger)}

	if len(a.cfg.NotifyURLs) > 0 {
		ch, err := notify.NewShoutrrrChannel(a.cfg.NotifyURLs, a.cfg.NotifyTimeout)
		if err != nil {
			return nil, fmt.Errorf("notification urls: %w", err)
		}
		channels = append(channels, ch)
	}

	if a.cfg.MQTTBroker != "" {
		ch, err := notify.NewMQTTChannel(notify.MQTTOptions{
			Broker:   a.cfg.MQTTBroker,
			ClientID: a.cfg.MQTTClientID,
			Topic:    a.cfg.MQTTTopic,
			Timeout:  a.cfg.NotifyTimeout,
		}, a.logger)
		if err != nil {
			// alerts still go to the other channels
			a.logger.Warn("mqtt notifications disabled", "broker", a.cfg.MQTTBroker, "error", err)
		} else {
			channels = append(channels, ch)
			a.closers = append(a.closers, ch.Close)
		}
	}

	return notify.NewDispatcher(a.logger, m, channels...), nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
