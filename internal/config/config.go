package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// ProviderTimeout bounds every outbound provider call.
	ProviderTimeout time.Duration
	// ForecastCacheTTL keeps forecast documents for repeat lookups (0 = disabled).
	ForecastCacheTTL time.Duration

	// Store backend: sqlite, mysql or memory.
	DBDriver   string
	DBDSN      string
	SQLitePath string

	// Alert defaults used when a query leaves a value unset.
	AlertThreshold   float64 // °C
	AlertConsecutive int
	AlertWindowHours int

	// StaticDir is served at /static; charts are written to StaticDir/plots.
	StaticDir string

	// Notification hooks.
	NotifyURLs    []string
	NotifyTimeout time.Duration
	MQTTBroker    string
	MQTTTopic     string
	MQTTClientID  string

	// Optional background jobs.
	TrackedCities      []string
	FetchInterval      time.Duration
	AlertCheckInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found or error loading it", "error", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")

	if cfg.ProviderTimeout, err = getenvDuration("PROVIDER_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if cfg.ForecastCacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", "1m"); err != nil {
		return nil, err
	}

	cfg.DBDriver = strings.ToLower(getenvDefault("DB_DRIVER", "sqlite"))
	switch cfg.DBDriver {
	case "sqlite", "mysql", "memory":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite, mysql, memory)", cfg.DBDriver)
	}
	cfg.DBDSN = os.Getenv("DB_DSN")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "weather.db")
	if cfg.DBDriver == "mysql" && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required when DB_DRIVER=mysql")
	}

	if cfg.AlertThreshold, err = getenvFloat("ALERT_THRESHOLD_TEMP", 30.0); err != nil {
		return nil, err
	}
	cfg.AlertConsecutive = getenvInt("ALERT_CONSECUTIVE_COUNT", 3)
	if cfg.AlertConsecutive < 1 {
		return nil, fmt.Errorf("ALERT_CONSECUTIVE_COUNT must be >= 1")
	}
	cfg.AlertWindowHours = getenvInt("ALERT_WINDOW_HOURS", 24)
	if cfg.AlertWindowHours <= 0 {
		return nil, fmt.Errorf("ALERT_WINDOW_HOURS must be > 0")
	}

	cfg.StaticDir = getenvDefault("STATIC_DIR", "static")

	cfg.NotifyURLs = splitList(os.Getenv("NOTIFY_URLS"))
	if cfg.NotifyTimeout, err = getenvDuration("NOTIFY_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTTopic = getenvDefault("MQTT_TOPIC", "weather/alerts")
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "weather-dashboard")

	cfg.TrackedCities = splitList(os.Getenv("TRACKED_CITIES"))
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.AlertCheckInterval, err = getenvDuration("ALERT_CHECK_INTERVAL", "0"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
