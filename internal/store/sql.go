package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// weatherData is the persisted form of weather.Reading.
type weatherData struct {
	ID          uint      `gorm:"primaryKey"`
	City        string    `gorm:"size:128;not null;index:idx_weather_city_ts,priority:1"`
	Timestamp   time.Time `gorm:"not null;index:idx_weather_city_ts,priority:2;index:idx_weather_ts"`
	Temp        float64   `gorm:"not null"` // Kelvin
	FeelsLike   float64
	Humidity    float64
	WindSpeed   float64
	Main        string `gorm:"size:64"`
	Description string `gorm:"size:255"`
}

func (weatherData) TableName() string { return "weather_data" }

func (w weatherData) toReading() weather.Reading {
	return weather.Reading{
		City:        w.City,
		Timestamp:   w.Timestamp.UTC(),
		Temperature: w.Temp,
		FeelsLike:   w.FeelsLike,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
		Condition:   w.Main,
		Description: w.Description,
	}
}

// Options selects and configures the relational backend.
type Options struct {
	Driver     string // sqlite or mysql
	DSN        string
	SQLitePath string
	Debug      bool
}

// SQLStore is a gorm-backed implementation of weather.Store.
type SQLStore struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(opts Options) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "mysql":
		dialector = mysql.Open(opts.DSN)
	case "sqlite", "":
		dsn, err := buildSQLiteDSN(opts)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	logMode := gormlogger.Silent
	if opts.Debug {
		logMode = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if opts.Driver != "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db handle: %w", err)
		}
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}

	return NewSQLStore(db)
}

// NewSQLStore wraps an existing connection and migrates the schema.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&weatherData{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Append inserts one reading inside a transaction; a failure rolls back.
func (s *SQLStore) Append(ctx context.Context, r weather.Reading) error {
	rec := weatherData{
		City:        r.City,
		Timestamp:   r.Timestamp.UTC(),
		Temp:        r.Temperature,
		FeelsLike:   r.FeelsLike,
		Humidity:    r.Humidity,
		WindSpeed:   r.WindSpeed,
		Main:        r.Condition,
		Description: r.Description,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
		return nil
	})
}

// Range returns readings matching f (bounds inclusive), ordered by city then timestamp.
func (s *SQLStore) Range(ctx context.Context, f weather.Filter) ([]weather.Reading, error) {
	q := s.db.WithContext(ctx).Model(&weatherData{})
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if !f.From.IsZero() {
		q = q.Where("timestamp >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("timestamp <= ?", f.To.UTC())
	}

	var rows []weatherData
	if err := q.Order("city ASC").Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}

	out := make([]weather.Reading, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toReading())
	}
	return out, nil
}

// Latest returns the most recent reading for city.
func (s *SQLStore) Latest(ctx context.Context, city string) (weather.Reading, error) {
	var row weatherData
	err := s.db.WithContext(ctx).
		Where("city = ?", city).
		Order("timestamp DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return weather.Reading{}, ErrNotFound
		}
		return weather.Reading{}, fmt.Errorf("latest reading: %w", err)
	}
	return row.toReading(), nil
}

func buildSQLiteDSN(opts Options) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}

	path := opts.SQLitePath
	if path == "" {
		path = "weather.db"
	}
	if path == ":memory:" {
		return path, nil
	}
	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
