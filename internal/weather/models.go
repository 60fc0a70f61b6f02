package weather

import (
	"time"
)

// Reading is one timestamped weather observation for a city.
// Temperatures are always stored in Kelvin.
type Reading struct {
	City        string    `json:"city"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureK"`
	FeelsLike   float64   `json:"feelsLikeK"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Condition   string    `json:"condition,omitempty"`
	Description string    `json:"description"`
}

// DailySummary is the per-city, per-day rollup of stored readings.
// It is derived on demand and never persisted.
type DailySummary struct {
	City           string    `json:"city"`
	Date           time.Time `json:"date"` // midnight UTC
	AvgTemperature float64   `json:"averageTemperature"`
	MinTemperature float64   `json:"minimumTemperature"`
	MaxTemperature float64   `json:"maximumTemperature"`
	AvgHumidity    float64   `json:"averageHumidity"`
	AvgWindSpeed   float64   `json:"averageWindSpeed"`
	Samples        int       `json:"samples"`
}

// HourlyReading annotates a reading with the values needed to pivot it
// into an hour-by-weekday matrix.
type HourlyReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureK"`
	Hour        int       `json:"hour"`
	DayOfWeek   string    `json:"dayOfWeek"`
}

// ForecastEntry is one flattened forecast point. Temperatures are in Kelvin.
type ForecastEntry struct {
	DateTime    time.Time `json:"datetime"`
	Temp        float64   `json:"temp"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    float64   `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// Alert reports a city whose trailing run of readings stayed above the threshold.
type Alert struct {
	City                string      `json:"city"`
	CurrentTemp         float64     `json:"currentTemp"` // °C
	Threshold           float64     `json:"threshold"`   // °C
	ConsecutiveCount    int         `json:"consecutiveCount"`
	ViolationTimestamps []time.Time `json:"violationTimestamps"`
	Message             string      `json:"message"`
}

// CurrentWeather is the decoded provider document for "current weather for city X".
type CurrentWeather struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Main struct {
		Temp      float64  `json:"temp"`
		// FeelsLike is nil when the provider omits it.
		FeelsLike *float64 `json:"feels_like"`
		TempMin   float64  `json:"temp_min"`
		TempMax   float64  `json:"temp_max"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []Condition `json:"weather"`

	// Units is the unit system the temperatures were requested in.
	Units Unit `json:"-"`
}

// Condition is one entry of the provider "weather" array.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ForecastResponse is the decoded 5-day/3-hour forecast document.
// List is nil when the provider omitted the field.
type ForecastResponse struct {
	List *[]ForecastItem `json:"list"`

	Units Unit `json:"-"`
}

// ForecastItem is one raw 3-hour forecast point.
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	DtTxt   string      `json:"dt_txt"`
}

// Report is the display payload returned by a city lookup.
type Report struct {
	City           string            `json:"city"`
	Unit           string            `json:"unit"`
	Current        CurrentView       `json:"current"`
	Forecast       []ForecastView    `json:"forecast"`
	Visualizations map[string]string `json:"visualizations"`

	// Saved reports whether the reading was persisted.
	Saved bool `json:"-"`
}

// CurrentView holds current conditions converted to the display unit.
type CurrentView struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
}

// ForecastView is one forecast point converted to the display unit.
type ForecastView struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Filter selects stored readings. A zero City matches every city;
// zero From/To leave that side of the range open.
type Filter struct {
	City string
	From time.Time
	To   time.Time
}
