package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(store Store, p Provider) *Aggregator {
	return NewAggregator(store, p, quietLogger()).WithClock(fixedClock)
}

func TestDailySummary_Statistics(t *testing.T) {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	var readings []Reading
	for i, c := range []float64{10, 20, 30} {
		readings = append(readings, Reading{
			City:        "Paris",
			Timestamp:   day.Add(time.Duration(6*(i+1)) * time.Hour),
			Temperature: CelsiusToKelvin(c),
			Humidity:    float64(40 + 10*i),
			WindSpeed:   float64(i + 1),
		})
	}
	agg := newTestAggregator(&sliceStore{readings: readings}, nil)

	got := agg.DailySummary(context.Background(), 7)
	require.Len(t, got, 1)

	s := got[0]
	assert.Equal(t, "Paris", s.City)
	assert.Equal(t, day, s.Date)
	assert.InDelta(t, 20, KelvinToCelsius(s.AvgTemperature), 1e-9)
	assert.InDelta(t, 10, KelvinToCelsius(s.MinTemperature), 1e-9)
	assert.InDelta(t, 30, KelvinToCelsius(s.MaxTemperature), 1e-9)
	assert.InDelta(t, 50, s.AvgHumidity, 1e-9)
	assert.InDelta(t, 2, s.AvgWindSpeed, 1e-9)
	assert.Equal(t, 3, s.Samples)
}

func TestDailySummary_GroupsByCityAndUTCDate(t *testing.T) {
	local := time.FixedZone("UTC+9", 9*3600)
	readings := []Reading{
		{City: "Tokyo", Timestamp: time.Date(2024, 6, 14, 23, 30, 0, 0, time.UTC), Temperature: 300},
		// 2024-06-15 01:00 local is still 2024-06-14 in UTC
		{City: "Tokyo", Timestamp: time.Date(2024, 6, 15, 1, 0, 0, 0, local), Temperature: 302},
		{City: "Tokyo", Timestamp: time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC), Temperature: 290},
		{City: "Berlin", Timestamp: time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC), Temperature: 280},
	}
	agg := newTestAggregator(&sliceStore{readings: readings}, nil)

	got := agg.DailySummary(context.Background(), 7)
	require.Len(t, got, 3)
	assert.Equal(t, "Berlin", got[0].City)
	assert.Equal(t, "Tokyo", got[1].City)
	assert.Equal(t, 2, got[1].Samples)
	assert.InDelta(t, 301, got[1].AvgTemperature, 1e-9)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got[2].Date)
}

func TestDailySummary_EmptyCases(t *testing.T) {
	agg := newTestAggregator(&sliceStore{}, nil)
	assert.Empty(t, agg.DailySummary(context.Background(), 7))
	assert.Empty(t, agg.DailySummary(context.Background(), 0))

	failing := newTestAggregator(&sliceStore{rangeErr: errStoreDown}, nil)
	got := failing.DailySummary(context.Background(), 7)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHourly_Annotates(t *testing.T) {
	ts := time.Date(2024, 6, 14, 15, 0, 0, 0, time.UTC) // Friday
	readings := []Reading{
		{City: "Lima", Timestamp: ts.Add(time.Hour), Temperature: 295},
		{City: "Lima", Timestamp: ts, Temperature: 294},
		{City: "Quito", Timestamp: ts, Temperature: 280},
	}
	agg := newTestAggregator(&sliceStore{readings: readings}, nil)

	got := agg.Hourly(context.Background(), "Lima", 7)
	require.Len(t, got, 2)
	assert.Equal(t, 15, got[0].Hour)
	assert.Equal(t, "Friday", got[0].DayOfWeek)
	assert.Equal(t, 294.0, got[0].Temperature)
	assert.Equal(t, 16, got[1].Hour)
}

func TestHourly_UnknownCityAndErrors(t *testing.T) {
	agg := newTestAggregator(&sliceStore{readings: celsiusSeries("Lima", 20)}, nil)
	assert.Empty(t, agg.Hourly(context.Background(), "Atlantis", 7))
	assert.Empty(t, agg.Hourly(context.Background(), "", 7))

	failing := newTestAggregator(&sliceStore{rangeErr: errStoreDown}, nil)
	assert.Empty(t, failing.Hourly(context.Background(), "Lima", 7))
}

func forecastList(temps ...float64) *[]ForecastItem {
	items := make([]ForecastItem, len(temps))
	for i, c := range temps {
		items[i].Dt = testNow.Add(time.Duration(3*i) * time.Hour).Unix()
		items[i].Main.Temp = c
		items[i].Main.TempMin = c - 1
		items[i].Main.TempMax = c + 1
		items[i].Main.Humidity = 60
		items[i].Weather = []Condition{{Main: "Clouds", Description: "broken clouds", Icon: "04d"}}
		items[i].DtTxt = time.Unix(items[i].Dt, 0).UTC().Format("2006-01-02 15:04:05")
	}
	return &items
}

func TestForecastSummary(t *testing.T) {
	p := &fakeProvider{forecast: &ForecastResponse{List: forecastList(20, 22), Units: Celsius}}
	agg := newTestAggregator(&sliceStore{}, p)

	got := agg.ForecastSummary(context.Background(), "Rome")
	require.Len(t, got, 2)
	assert.InDelta(t, CelsiusToKelvin(20), got[0].Temp, 1e-9)
	assert.InDelta(t, CelsiusToKelvin(19), got[0].TempMin, 1e-9)
	assert.InDelta(t, CelsiusToKelvin(23), got[1].TempMax, 1e-9)
	assert.Equal(t, "broken clouds", got[0].Description)
	assert.Equal(t, testNow, got[0].DateTime)
}

func TestForecastSummary_MissingOrFailing(t *testing.T) {
	missing := newTestAggregator(&sliceStore{}, &fakeProvider{forecast: &ForecastResponse{}})
	assert.Empty(t, missing.ForecastSummary(context.Background(), "Rome"))

	failing := newTestAggregator(&sliceStore{}, &fakeProvider{forecastErr: errors.New("boom")})
	assert.Empty(t, failing.ForecastSummary(context.Background(), "Rome"))

	noProvider := newTestAggregator(&sliceStore{}, nil)
	assert.Empty(t, noProvider.ForecastSummary(context.Background(), "Rome"))
}
