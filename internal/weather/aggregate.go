package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

// Aggregator produces the read-side views used by the presentation layer.
// Every method returns an empty result instead of an error: callers treat
// "empty" as "nothing to show".
type Aggregator struct {
	store    Store
	provider Provider
	now      Clock
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator. provider may be nil when forecasts are not needed.
func NewAggregator(store Store, provider Provider, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		store:    store,
		provider: provider,
		now:      utcNow,
		logger:   logger.With("component", "aggregator"),
	}
}

// WithClock replaces the aggregator clock.
func (a *Aggregator) WithClock(c Clock) *Aggregator {
	a.now = c
	return a
}

type dayKey struct {
	city string
	date time.Time
}

type dayAcc struct {
	sumTemp, minTemp, maxTemp float64
	sumHumidity, sumWind      float64
	n                         int
}

// DailySummary groups the readings of the last days by city and UTC calendar
// date, ordered by city then date.
func (a *Aggregator) DailySummary(ctx context.Context, days int) (out []DailySummary) {
	out = []DailySummary{}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("error generating daily weather summary", "panic", r)
			out = []DailySummary{}
		}
	}()

	if days <= 0 {
		a.logger.Warn("daily summary requested for non-positive day count", "days", days)
		return out
	}

	end := a.now()
	start := end.AddDate(0, 0, -days)
	readings, err := a.store.Range(ctx, Filter{From: start, To: end})
	if err != nil {
		a.logger.Error("error generating daily weather summary", "days", days, "error", err)
		return out
	}
	if len(readings) == 0 {
		a.logger.Warn("no weather data found in the database", "days", days)
		return out
	}

	groups := make(map[dayKey]*dayAcc)
	for _, r := range readings {
		ts := r.Timestamp.UTC()
		k := dayKey{city: r.City, date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)}
		acc, ok := groups[k]
		if !ok {
			acc = &dayAcc{minTemp: math.Inf(1), maxTemp: math.Inf(-1)}
			groups[k] = acc
		}
		acc.sumTemp += r.Temperature
		acc.minTemp = math.Min(acc.minTemp, r.Temperature)
		acc.maxTemp = math.Max(acc.maxTemp, r.Temperature)
		acc.sumHumidity += r.Humidity
		acc.sumWind += r.WindSpeed
		acc.n++
	}

	for k, acc := range groups {
		n := float64(acc.n)
		out = append(out, DailySummary{
			City:           k.city,
			Date:           k.date,
			AvgTemperature: acc.sumTemp / n,
			MinTemperature: acc.minTemp,
			MaxTemperature: acc.maxTemp,
			AvgHumidity:    acc.sumHumidity / n,
			AvgWindSpeed:   acc.sumWind / n,
			Samples:        acc.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Hourly returns the city's readings of the last days annotated with
// hour-of-day and weekday name, ascending by timestamp.
func (a *Aggregator) Hourly(ctx context.Context, city string, days int) (out []HourlyReading) {
	out = []HourlyReading{}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("error fetching hourly data", "city", city, "panic", r)
			out = []HourlyReading{}
		}
	}()

	if city == "" || days <= 0 {
		a.logger.Warn("hourly data requested with empty city or non-positive days", "city", city, "days", days)
		return out
	}

	end := a.now()
	start := end.AddDate(0, 0, -days)
	readings, err := a.store.Range(ctx, Filter{City: city, From: start, To: end})
	if err != nil {
		a.logger.Error("error fetching hourly data", "city", city, "error", err)
		return out
	}
	if len(readings) == 0 {
		a.logger.Warn("no hourly data found", "city", city)
		return out
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
	for _, r := range readings {
		ts := r.Timestamp.UTC()
		out = append(out, HourlyReading{
			Timestamp:   ts,
			Temperature: r.Temperature,
			Hour:        ts.Hour(),
			DayOfWeek:   ts.Weekday().String(),
		})
	}
	return out
}

// ForecastSummary flattens the provider forecast for city. Temperatures are
// converted to Kelvin.
func (a *Aggregator) ForecastSummary(ctx context.Context, city string) (out []ForecastEntry) {
	out = []ForecastEntry{}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("error generating forecast summary", "city", city, "panic", r)
			out = []ForecastEntry{}
		}
	}()

	if city == "" {
		a.logger.Warn("city is required for forecast summary")
		return out
	}
	if a.provider == nil {
		a.logger.Error("error generating forecast summary", "city", city, "error", fmt.Errorf("no provider configured"))
		return out
	}

	resp, err := a.provider.Forecast(ctx, city, Celsius)
	if err != nil {
		a.logger.Error("error generating forecast summary", "city", city, "error", err)
		return out
	}
	if resp == nil || resp.List == nil {
		a.logger.Warn("no forecast data available", "city", city)
		return out
	}

	return flattenForecast(*resp)
}

func flattenForecast(resp ForecastResponse) []ForecastEntry {
	if resp.List == nil {
		return []ForecastEntry{}
	}
	units := resp.Units
	if units == "" {
		units = Celsius
	}
	out := make([]ForecastEntry, 0, len(*resp.List))
	for _, item := range *resp.List {
		var desc, icon string
		if len(item.Weather) > 0 {
			desc = item.Weather[0].Description
			icon = item.Weather[0].Icon
		}
		out = append(out, ForecastEntry{
			DateTime:    time.Unix(item.Dt, 0).UTC(),
			Temp:        ToKelvin(item.Main.Temp, units),
			TempMin:     ToKelvin(item.Main.TempMin, units),
			TempMax:     ToKelvin(item.Main.TempMax, units),
			Humidity:    item.Main.Humidity,
			Description: desc,
			Icon:        icon,
		})
	}
	return out
}
