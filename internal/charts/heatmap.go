package charts

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var weekdays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// hourGrid is a 24 x 7 matrix of mean temperatures. Row 0 is Sunday so
// that Monday ends up at the top of the chart; empty cells hold NaN.
type hourGrid struct {
	cells [7][24]float64
}

func (g *hourGrid) Dims() (c, r int)   { return 24, 7 }
func (g *hourGrid) Z(c, r int) float64 { return g.cells[r][c] }
func (g *hourGrid) X(c int) float64    { return float64(c) }
func (g *hourGrid) Y(r int) float64    { return float64(r) }

func rowOf(d time.Weekday) int {
	// Monday -> 6 ... Sunday -> 0
	return 6 - (int(d)+6)%7
}

func buildHourGrid(readings []weather.HourlyReading, unit weather.Unit) (*hourGrid, float64, float64) {
	var (
		sum   [7][24]float64
		count [7][24]int
	)
	for _, hr := range readings {
		if hr.Hour < 0 || hr.Hour > 23 {
			continue
		}
		row := rowOf(hr.Timestamp.UTC().Weekday())
		sum[row][hr.Hour] += weather.FromKelvin(hr.Temperature, unit)
		count[row][hr.Hour]++
	}

	g := &hourGrid{}
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := range g.cells {
		for c := range g.cells[r] {
			if count[r][c] == 0 {
				g.cells[r][c] = math.NaN()
				continue
			}
			v := sum[r][c] / float64(count[r][c])
			g.cells[r][c] = v
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return g, lo, hi
}

// Heatmap renders mean temperature by hour of day and day of week.
func (r *Renderer) Heatmap(ctx context.Context, city, file string) (bool, error) {
	readings := r.source.Hourly(ctx, city, r.cfg.HeatmapDays)
	if len(readings) == 0 {
		r.logger.Info("no hourly data to plot", "city", city)
		return false, nil
	}

	grid, lo, hi := buildHourGrid(readings, r.cfg.Unit)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent

	var (
		xys    plotter.XYs
		labels []string
	)
	for row := range grid.cells {
		for col, v := range grid.cells[row] {
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(col), Y: float64(row)})
			labels = append(labels, strconv.FormatFloat(v, 'f', 1, 64))
		}
	}
	cellLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return false, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range cellLabels.TextStyle {
		cellLabels.TextStyle[i].Font.Size = r.cfg.TickFontSize - 2
		cellLabels.TextStyle[i].XAlign = -0.5
		cellLabels.TextStyle[i].YAlign = -0.5
	}

	p := r.newPlot(
		fmt.Sprintf("%s: Temperature by Hour and Day of Week (%s)", city, r.cfg.Unit.Symbol()),
		"Hour of Day",
		"Day of Week",
	)
	p.Add(hm, cellLabels)

	hours := make([]plot.Tick, 24)
	for h := range hours {
		hours[h] = plot.Tick{Value: float64(h), Label: strconv.Itoa(h)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(hours)

	days := make([]plot.Tick, len(weekdays))
	for i, d := range weekdays {
		days[i] = plot.Tick{Value: float64(rowOf(d)), Label: d.String()}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(days)

	if err := r.saveStacked(file, r.cfg.HeatmapSize, p); err != nil {
		return false, err
	}
	return true, nil
}
