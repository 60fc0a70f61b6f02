package weather

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unavailable")

// sliceStore is a minimal in-package Store used by the tests.
type sliceStore struct {
	mu        sync.Mutex
	readings  []Reading
	appendErr error
	rangeErr  error
}

func (s *sliceStore) Append(_ context.Context, r Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *sliceStore) Range(_ context.Context, f Filter) ([]Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	out := []Reading{}
	for _, r := range s.readings {
		if f.City != "" && r.City != f.City {
			continue
		}
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Timestamp.After(f.To) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *sliceStore) Latest(ctx context.Context, city string) (Reading, error) {
	rs, err := s.Range(ctx, Filter{City: city})
	if err != nil {
		return Reading{}, err
	}
	if len(rs) == 0 {
		return Reading{}, errors.New("not found")
	}
	return rs[len(rs)-1], nil
}

type fakeProvider struct {
	current     *CurrentWeather
	forecast    *ForecastResponse
	currentErr  error
	forecastErr error
	calls       int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Current(context.Context, string, Unit) (*CurrentWeather, error) {
	p.calls++
	return p.current, p.currentErr
}

func (p *fakeProvider) Forecast(context.Context, string, Unit) (*ForecastResponse, error) {
	p.calls++
	return p.forecast, p.forecastErr
}

type recordingNotifier struct {
	failFor map[string]bool
	panics  bool
	got     []Alert
}

func (n *recordingNotifier) Notify(_ context.Context, a Alert) error {
	if n.panics {
		panic("notifier exploded")
	}
	n.got = append(n.got, a)
	if n.failFor[a.City] {
		return errors.New("smtp down")
	}
	return nil
}

type staticVisualizer map[string]string

func (v staticVisualizer) Generate(context.Context, string) map[string]string { return v }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// celsiusSeries builds readings for city, one per hour ending just before testNow.
func celsiusSeries(city string, temps ...float64) []Reading {
	out := make([]Reading, len(temps))
	start := testNow.Add(-time.Duration(len(temps)) * time.Hour)
	for i, c := range temps {
		out[i] = Reading{
			City:        city,
			Timestamp:   start.Add(time.Duration(i) * time.Hour),
			Temperature: CelsiusToKelvin(c),
			Humidity:    50,
			WindSpeed:   2,
		}
	}
	return out
}
