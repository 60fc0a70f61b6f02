package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/metrics"
)

// forecastPreview is how many forecast points a Report carries.
const forecastPreview = 5

// Visualizer renders the charts for a city and returns chart kind -> URL path.
type Visualizer interface {
	Generate(ctx context.Context, city string) map[string]string
}

// Service orchestrates provider calls, persistence and report building.
type Service struct {
	store      Store
	provider   Provider
	visualizer Visualizer
	now        Clock
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewService creates a new Service. visualizer may be nil.
func NewService(store Store, provider Provider, visualizer Visualizer, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		provider:   provider,
		visualizer: visualizer,
		now:        utcNow,
		logger:     logger.With("component", "ingestion"),
		metrics:    m,
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(c Clock) *Service {
	s.now = c
	return s
}

// Lookup fetches current weather and forecast for city, stores one reading
// and returns a report converted to unit. Provider data is always requested
// in metric units; unit only affects the report.
func (s *Service) Lookup(ctx context.Context, city, unit string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, ErrEmptyCity
	}
	display, err := ParseUnit(unit)
	if err != nil {
		return Report{}, err
	}

	current, err := s.fetchCurrent(ctx, city)
	if err != nil {
		return Report{}, err
	}
	forecast, err := s.fetchForecast(ctx, city)
	if err != nil {
		return Report{}, err
	}

	city = canonicalCity(city, current)
	saved := s.save(ctx, city, current)

	report := buildReport(city, display, current, forecast)
	report.Saved = saved
	if s.visualizer != nil {
		report.Visualizations = s.visualizer.Generate(ctx, city)
	}
	return report, nil
}

// FetchAndStore fetches current weather for city and persists it.
// A persistence failure is logged and does not produce an error.
func (s *Service) FetchAndStore(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyCity
	}
	current, err := s.fetchCurrent(ctx, city)
	if err != nil {
		return err
	}
	s.save(ctx, canonicalCity(city, current), current)
	return nil
}

// canonicalCity prefers the provider's spelling of the city so that
// readings for "tokyo" and "Tokyo" share one series.
func canonicalCity(requested string, cur *CurrentWeather) string {
	if name := strings.TrimSpace(cur.Name); name != "" {
		return name
	}
	return requested
}

// Latest delegates to the underlying store.
func (s *Service) Latest(ctx context.Context, city string) (Reading, error) {
	return s.store.Latest(ctx, city)
}

// History delegates to the underlying store.
func (s *Service) History(ctx context.Context, f Filter) ([]Reading, error) {
	return s.store.Range(ctx, f)
}

func (s *Service) fetchCurrent(ctx context.Context, city string) (*CurrentWeather, error) {
	cur, err := s.provider.Current(ctx, city, Celsius)
	if err != nil {
		return nil, s.classify("current", city, err)
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: empty current weather response", ErrUpstream)
	}
	return cur, nil
}

func (s *Service) fetchForecast(ctx context.Context, city string) (*ForecastResponse, error) {
	fc, err := s.provider.Forecast(ctx, city, Celsius)
	if err != nil {
		return nil, s.classify("forecast", city, err)
	}
	return fc, nil
}

// classify maps provider errors onto the ingestion error taxonomy.
func (s *Service) classify(op, city string, err error) error {
	switch {
	case errors.Is(err, ErrCityNotFound):
		s.logger.Info("city not found by provider", "op", op, "city", city)
		return err
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		s.logger.Error("provider call timed out", "op", op, "city", city, "error", err)
		if errors.Is(err, ErrUpstreamTimeout) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	case errors.Is(err, ErrUpstream):
		s.logger.Error("provider call failed", "op", op, "city", city, "error", err)
		return err
	default:
		s.logger.Error("provider call failed", "op", op, "city", city, "error", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}

func (s *Service) save(ctx context.Context, city string, cur *CurrentWeather) bool {
	units := cur.Units
	if units == "" {
		units = Celsius
	}
	r := Reading{
		City:        city,
		Timestamp:   s.now().UTC(),
		Temperature: ToKelvin(cur.Main.Temp, units),
		FeelsLike:   ToKelvin(cur.Main.Temp, units),
		Humidity:    cur.Main.Humidity,
		WindSpeed:   cur.Wind.Speed,
	}
	if cur.Main.FeelsLike != nil {
		r.FeelsLike = ToKelvin(*cur.Main.FeelsLike, units)
	}
	if len(cur.Weather) > 0 {
		r.Condition = cur.Weather[0].Main
		r.Description = cur.Weather[0].Description
	}

	if err := s.store.Append(ctx, r); err != nil {
		s.logger.Error("error saving weather data", "city", city, "error", err)
		s.metrics.RecordReadingSaved("error")
		return false
	}
	s.metrics.RecordReadingSaved("success")
	return true
}

func buildReport(city string, display Unit, cur *CurrentWeather, fc *ForecastResponse) Report {
	units := cur.Units
	if units == "" {
		units = Celsius
	}
	convert := func(v float64, from Unit) float64 {
		return Round1(FromKelvin(ToKelvin(v, from), display))
	}

	current := CurrentView{
		Temperature: convert(cur.Main.Temp, units),
		Humidity:    cur.Main.Humidity,
		WindSpeed:   cur.Wind.Speed,
	}
	if len(cur.Weather) > 0 {
		current.Description = cur.Weather[0].Description
		current.Icon = cur.Weather[0].Icon
	}

	preview := make([]ForecastView, 0, forecastPreview)
	if fc != nil && fc.List != nil {
		fcUnits := fc.Units
		if fcUnits == "" {
			fcUnits = Celsius
		}
		for i, item := range *fc.List {
			if i >= forecastPreview {
				break
			}
			v := ForecastView{
				Date:        item.DtTxt,
				Temperature: convert(item.Main.Temp, fcUnits),
			}
			if len(item.Weather) > 0 {
				v.Description = item.Weather[0].Description
				v.Icon = item.Weather[0].Icon
			}
			preview = append(preview, v)
		}
	}

	return Report{
		City:           city,
		Unit:           display.Symbol(),
		Current:        current,
		Forecast:       preview,
		Visualizations: map[string]string{},
	}
}
