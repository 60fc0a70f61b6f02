package weather

import "errors"

var (
	// ErrCityNotFound is returned when the provider does not know the requested city.
	ErrCityNotFound = errors.New("city not found")

	// ErrUpstream covers every other provider or network failure.
	ErrUpstream = errors.New("weather provider failure")

	// ErrUpstreamTimeout is returned when a provider call exceeded its deadline.
	// Callers may retry.
	ErrUpstreamTimeout = errors.New("weather provider timed out")

	ErrEmptyCity         = errors.New("city cannot be blank")
	ErrInvalidUnit       = errors.New("invalid temperature unit")
	ErrInvalidAlertQuery = errors.New("invalid alert query")
)
