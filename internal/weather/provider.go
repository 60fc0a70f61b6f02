package weather

import (
	"context"
	"time"
)

// Provider abstracts the third-party weather API (OpenWeatherMap).
// Temperatures in the returned documents are in units.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string, units Unit) (*CurrentWeather, error)
	Forecast(ctx context.Context, city string, units Unit) (*ForecastResponse, error)
}

// Store is the contract the sample store implementations must satisfy.
// Range returns readings ordered by city, then by timestamp ascending.
type Store interface {
	Append(ctx context.Context, r Reading) error
	Range(ctx context.Context, f Filter) ([]Reading, error)
	Latest(ctx context.Context, city string) (Reading, error)
}

// Notifier delivers a single alert. Implementations may fail; callers treat
// delivery as best-effort.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
