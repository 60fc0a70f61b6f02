package charts

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Summary renders the daily summary figure for city: temperature range,
// average humidity and average wind speed per day, stacked vertically.
// It reports false when there is nothing to draw.
func (r *Renderer) Summary(ctx context.Context, city, file string) (bool, error) {
	var days []weather.DailySummary
	for _, d := range r.source.DailySummary(ctx, r.cfg.SummaryDays) {
		if d.City == city {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		r.logger.Info("no summary data to plot", "city", city)
		return false, nil
	}

	names := make([]string, len(days))
	avg := make(plotter.XYs, len(days))
	band := make(plotter.XYs, 0, 2*len(days))
	humidity := make(plotter.Values, len(days))
	wind := make(plotter.Values, len(days))
	for i, d := range days {
		names[i] = d.Date.Format("2006-01-02")
		avg[i].X = float64(i)
		avg[i].Y = weather.FromKelvin(d.AvgTemperature, r.cfg.Unit)
		band = append(band, plotter.XY{X: float64(i), Y: weather.FromKelvin(d.MaxTemperature, r.cfg.Unit)})
		humidity[i] = d.AvgHumidity
		wind[i] = d.AvgWindSpeed
	}
	for i := len(days) - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: float64(i), Y: weather.FromKelvin(days[i].MinTemperature, r.cfg.Unit)})
	}

	temp := r.newPlot(
		fmt.Sprintf("%s: Daily Temperature Range", city),
		"Date",
		fmt.Sprintf("Temperature (%s)", r.cfg.Unit.Symbol()),
	)
	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return false, fmt.Errorf("temperature band: %w", err)
	}
	poly.Color = r.cfg.BandColor
	poly.LineStyle.Width = 0

	line, points, err := plotter.NewLinePoints(avg)
	if err != nil {
		return false, fmt.Errorf("temperature line: %w", err)
	}
	line.Color = r.cfg.TemperatureColor
	line.Width = r.cfg.LineWidth
	points.GlyphStyle.Color = r.cfg.TemperatureColor
	points.GlyphStyle.Shape = draw.CircleGlyph{}

	temp.Add(poly, line, points, plotter.NewGrid())
	temp.Legend.Add("Average", line, points)
	temp.Legend.Add("Min-Max range", poly)
	temp.NominalX(names...)

	hum, err := r.barPlot(fmt.Sprintf("%s: Average Humidity", city), "Humidity (%)", names, humidity, r.cfg.HumidityColor)
	if err != nil {
		return false, err
	}
	hum.Y.Min, hum.Y.Max = 0, 100

	wnd, err := r.barPlot(fmt.Sprintf("%s: Average Wind Speed", city), "Wind Speed (m/s)", names, wind, r.cfg.WindColor)
	if err != nil {
		return false, err
	}
	wnd.Y.Min = 0

	if err := r.saveStacked(file, r.cfg.SummarySize, temp, hum, wnd); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Renderer) barPlot(title, yLabel string, names []string, values plotter.Values, c color.Color) (*plot.Plot, error) {
	p := r.newPlot(title, "Date", yLabel)
	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.ToLower(title), err)
	}
	bars.Color = c
	bars.LineStyle.Width = 0
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)
	return p, nil
}
