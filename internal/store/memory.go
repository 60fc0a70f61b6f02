package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no reading is available for a given city.
	ErrNotFound = errors.New("no weather data for city")
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Readings are kept indefinitely.
type MemoryStore struct {
	mu sync.RWMutex

	// key: city, value: readings ordered by timestamp
	data map[string][]weather.Reading
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]weather.Reading),
	}
}

// Append stores a reading, keeping the city's history ordered by timestamp.
func (s *MemoryStore) Append(_ context.Context, r weather.Reading) error {
	r.Timestamp = r.Timestamp.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.data[r.City]
	i := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp.After(r.Timestamp)
	})
	history = append(history, weather.Reading{})
	copy(history[i+1:], history[i:])
	history[i] = r
	s.data[r.City] = history
	return nil
}

// Latest returns the most recent reading for a city.
func (s *MemoryStore) Latest(_ context.Context, city string) (weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[city]
	if len(history) == 0 {
		return weather.Reading{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Range returns readings matching f (bounds inclusive), ordered by city then timestamp.
// No match yields an empty slice, not an error.
func (s *MemoryStore) Range(_ context.Context, f weather.Filter) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]string, 0, len(s.data))
	if f.City != "" {
		cities = append(cities, f.City)
	} else {
		for city := range s.data {
			cities = append(cities, city)
		}
		sort.Strings(cities)
	}

	result := []weather.Reading{}
	for _, city := range cities {
		for _, r := range s.data[city] {
			if !f.From.IsZero() && r.Timestamp.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && r.Timestamp.After(f.To) {
				continue
			}
			result = append(result, r)
		}
	}
	return result, nil
}
