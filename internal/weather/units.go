package weather

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a temperature unit.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
	Kelvin     Unit = "kelvin"
)

const kelvinOffset = 273.15

// ParseUnit accepts display names, provider unit systems and short symbols.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "metric", "c":
		return Celsius, nil
	case "fahrenheit", "imperial", "f":
		return Fahrenheit, nil
	case "kelvin", "standard", "k":
		return Kelvin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// Symbol returns the display symbol for u.
func (u Unit) Symbol() string {
	switch u {
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "°C"
	}
}

// ProviderUnits returns the OpenWeatherMap "units" parameter for u.
func (u Unit) ProviderUnits() string {
	switch u {
	case Fahrenheit:
		return "imperial"
	case Kelvin:
		return "standard"
	default:
		return "metric"
	}
}

func CelsiusToKelvin(c float64) float64 { return c + kelvinOffset }

func KelvinToCelsius(k float64) float64 { return k - kelvinOffset }

func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

func CelsiusToFahrenheit(c float64) float64 { return (c * 9 / 5) + 32 }

// ToKelvin canonicalises a temperature expressed in unit.
func ToKelvin(v float64, unit Unit) float64 {
	switch unit {
	case Fahrenheit:
		return CelsiusToKelvin(FahrenheitToCelsius(v))
	case Kelvin:
		return v
	default:
		return CelsiusToKelvin(v)
	}
}

// FromKelvin converts a stored temperature to unit. Fahrenheit goes through Celsius.
func FromKelvin(k float64, unit Unit) float64 {
	switch unit {
	case Fahrenheit:
		return CelsiusToFahrenheit(KelvinToCelsius(k))
	case Kelvin:
		return k
	default:
		return KelvinToCelsius(k)
	}
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
