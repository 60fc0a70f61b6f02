package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const appName = "weather-dashboard"

// cli carries the state prepared before any subcommand runs.
type cli struct {
	cfg    *config.AppConfig
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:          appName,
		Short:        "Weather dashboard: ingestion, summaries, charts and temperature alerts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logging.New(cfg.AppEnv, cfg.LogLevel, appName)
			slog.SetDefault(c.logger)
			return nil
		},
	}

	rootCmd.AddCommand(
		c.serveCommand(),
		c.alertsCommand(),
		c.summaryCommand(),
	)
	return rootCmd
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dashboard and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			// Scheduler that periodically fetches data and evaluates alerts.
			sched := scheduler.New(scheduler.Options{
				Cities:             c.cfg.TrackedCities,
				FetchInterval:      c.cfg.FetchInterval,
				AlertCheckInterval: c.cfg.AlertCheckInterval,
				JobTimeout:         2 * c.cfg.ProviderTimeout,
			}, app.service, app.alerts, c.logger)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			server := httpapi.NewApp(httpapi.Options{
				AppName:   appName,
				StaticDir: c.cfg.StaticDir,
				Gatherer:  app.registry,
				AccessLog: true,
				Logger:    c.logger,
			})
			httpapi.RegisterRoutes(server, httpapi.Deps{
				Service:    app.service,
				Aggregator: app.aggregator,
				Alerts:     app.alerts,
				Health:     app.health,
				Logger:     c.logger,
			})

			go func() {
				c.logger.Info("http server listening", "port", c.cfg.Port)
				if err := server.Listen(":" + c.cfg.Port); err != nil {
					c.logger.Error("fiber server stopped", "error", err)
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.ShutdownWithContext(shutdownCtx); err != nil {
				c.logger.Error("error during shutdown", "error", err)
			}
			return nil
		},
	}
}

func (c *cli) alertsCommand() *cobra.Command {
	var (
		threshold   float64
		consecutive int
		window      int
		send        bool
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Evaluate temperature alerts once and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			var q weather.AlertQuery
			if cmd.Flags().Changed("threshold") {
				q.Threshold = &threshold
			}
			if cmd.Flags().Changed("consecutive") {
				q.ConsecutiveCount = &consecutive
			}
			if cmd.Flags().Changed("window") {
				q.WindowHours = &window
			}
			alerts, err := app.alerts.Check(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := map[string]any{"alerts": alerts}
			if send {
				out["notifications"] = app.alerts.Notify(cmd.Context(), alerts)
			}
			return printJSON(cmd, out)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "threshold temperature in °C (default ALERT_THRESHOLD_TEMP)")
	cmd.Flags().IntVar(&consecutive, "consecutive", 0, "consecutive readings above threshold (default ALERT_CONSECUTIVE_COUNT)")
	cmd.Flags().IntVar(&window, "window", 0, "lookback window in hours (default ALERT_WINDOW_HOURS)")
	cmd.Flags().BoolVar(&send, "notify", false, "deliver the alerts through the configured notifiers")
	return cmd
}

func (c *cli) summaryCommand() *cobra.Command {
	var (
		days int
		city string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the daily weather summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			summaries := app.aggregator.DailySummary(cmd.Context(), days)
			if city != "" {
				filtered := make([]weather.DailySummary, 0, len(summaries))
				for _, s := range summaries {
					if s.City == city {
						filtered = append(filtered, s)
					}
				}
				summaries = filtered
			}
			return printJSON(cmd, summaries)
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "number of days to summarise")
	cmd.Flags().StringVar(&city, "city", "", "only print this city")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
