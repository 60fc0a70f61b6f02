package charts

import (
	"context"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const forecastTimeFormat = "Jan 2 15h"

// Forecast renders the forecast figure for city: temperature with its
// min/max band and condition labels on top, humidity below.
func (r *Renderer) Forecast(ctx context.Context, city, file string) (bool, error) {
	entries := r.source.ForecastSummary(ctx, city)
	if len(entries) == 0 {
		r.logger.Info("no forecast data to plot", "city", city)
		return false, nil
	}

	temps := make(plotter.XYs, len(entries))
	humidity := make(plotter.XYs, len(entries))
	band := make(plotter.XYs, 0, 2*len(entries))
	var (
		labelXYs plotter.XYs
		labels   []string
		previous string
	)
	for i, e := range entries {
		x := float64(e.DateTime.Unix())
		temps[i] = plotter.XY{X: x, Y: weather.FromKelvin(e.Temp, r.cfg.Unit)}
		humidity[i] = plotter.XY{X: x, Y: e.Humidity}
		band = append(band, plotter.XY{X: x, Y: weather.FromKelvin(e.TempMax, r.cfg.Unit)})

		// label only where the condition changes to keep the chart readable
		if e.Description != "" && e.Description != previous {
			labelXYs = append(labelXYs, temps[i])
			labels = append(labels, e.Description)
		}
		previous = e.Description
	}
	for i := len(entries) - 1; i >= 0; i-- {
		band = append(band, plotter.XY{
			X: float64(entries[i].DateTime.Unix()),
			Y: weather.FromKelvin(entries[i].TempMin, r.cfg.Unit),
		})
	}

	temp := r.newPlot(
		fmt.Sprintf("%s: Temperature Forecast", city),
		"",
		fmt.Sprintf("Temperature (%s)", r.cfg.Unit.Symbol()),
	)
	temp.X.Tick.Marker = plot.TimeTicks{Format: forecastTimeFormat}

	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return false, fmt.Errorf("forecast band: %w", err)
	}
	poly.Color = r.cfg.BandColor
	poly.LineStyle.Width = 0

	line, points, err := plotter.NewLinePoints(temps)
	if err != nil {
		return false, fmt.Errorf("forecast line: %w", err)
	}
	line.Color = r.cfg.TemperatureColor
	line.Width = r.cfg.LineWidth
	points.GlyphStyle.Color = r.cfg.TemperatureColor
	points.GlyphStyle.Shape = draw.CircleGlyph{}

	temp.Add(poly, line, points, plotter.NewGrid())
	temp.Legend.Add("Temperature", line, points)
	temp.Legend.Add("Min-Max range", poly)

	if len(labels) > 0 {
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
		if err != nil {
			return false, fmt.Errorf("forecast labels: %w", err)
		}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = r.cfg.TickFontSize
		}
		lbl.Offset = vg.Point{X: vg.Points(-10), Y: vg.Points(8)}
		temp.Add(lbl)
	}

	hum := r.newPlot(fmt.Sprintf("%s: Humidity Forecast", city), "Date/Time", "Humidity (%)")
	hum.X.Tick.Marker = plot.TimeTicks{Format: forecastTimeFormat}
	humLine, err := plotter.NewLine(humidity)
	if err != nil {
		return false, fmt.Errorf("humidity line: %w", err)
	}
	humLine.Color = r.cfg.HumidityColor
	humLine.Width = r.cfg.LineWidth
	hum.Add(humLine, plotter.NewGrid())
	hum.Y.Min, hum.Y.Max = 0, 100

	if err := r.saveStacked(file, r.cfg.ForecastSize, temp, hum); err != nil {
		return false, err
	}
	return true, nil
}
