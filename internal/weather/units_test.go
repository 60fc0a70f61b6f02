package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := map[string]Unit{
		"celsius":    Celsius,
		"Metric":     Celsius,
		" c ":        Celsius,
		"fahrenheit": Fahrenheit,
		"imperial":   Fahrenheit,
		"F":          Fahrenheit,
		"kelvin":     Kelvin,
		"standard":   Kelvin,
	}
	for in, want := range tests {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseUnit("rankine")
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestConversions(t *testing.T) {
	assert.InDelta(t, 273.15, CelsiusToKelvin(0), 1e-9)
	assert.InDelta(t, 212, CelsiusToFahrenheit(100), 1e-9)
	assert.InDelta(t, -40, FahrenheitToCelsius(-40), 1e-9)
	assert.InDelta(t, 32, FromKelvin(273.15, Fahrenheit), 1e-9)
	assert.InDelta(t, 300, ToKelvin(300, Kelvin), 1e-9)

	for _, v := range []float64{-89.2, -40, 0, 21.7, 56.7} {
		assert.InDelta(t, v, KelvinToCelsius(CelsiusToKelvin(v)), 1e-6)
		assert.InDelta(t, v, FahrenheitToCelsius(CelsiusToFahrenheit(v)), 1e-6)
		for _, u := range []Unit{Celsius, Fahrenheit, Kelvin} {
			assert.InDelta(t, v, FromKelvin(ToKelvin(v, u), u), 1e-6, "unit %s", u)
		}
	}
}

func TestUnitPresentation(t *testing.T) {
	assert.Equal(t, "°C", Celsius.Symbol())
	assert.Equal(t, "°F", Fahrenheit.Symbol())
	assert.Equal(t, "K", Kelvin.Symbol())
	assert.Equal(t, "metric", Celsius.ProviderUnits())
	assert.Equal(t, "imperial", Fahrenheit.ProviderUnits())
	assert.Equal(t, "standard", Kelvin.ProviderUnits())
	assert.Equal(t, 21.7, Round1(21.6666))
}
