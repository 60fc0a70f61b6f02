// Package charts renders the dashboard images: daily summary, forecast and
// hour-by-weekday heatmap. Rendering is best-effort; a failed chart is logged
// and left out of the result.
package charts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Chart kinds, used as keys of the Generate result.
const (
	KindSummary  = "summary"
	KindForecast = "forecast"
	KindHeatmap  = "heatmap"
)

// Source provides the data behind the charts. *weather.Aggregator satisfies it.
type Source interface {
	DailySummary(ctx context.Context, days int) []weather.DailySummary
	Hourly(ctx context.Context, city string, days int) []weather.HourlyReading
	ForecastSummary(ctx context.Context, city string) []weather.ForecastEntry
}

// Renderer writes chart images for a city.
type Renderer struct {
	cfg     RenderConfig
	source  Source
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRenderer creates a Renderer with its own copy of cfg.
func NewRenderer(cfg RenderConfig, source Source, logger *slog.Logger, m *metrics.Metrics) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		cfg:     cfg,
		source:  source,
		logger:  logger.With("component", "charts"),
		metrics: m,
	}
}

// Config returns the renderer configuration.
func (r *Renderer) Config() RenderConfig { return r.cfg }

// Generate renders every chart for city and returns chart kind -> URL path.
// Existing files for the city are overwritten.
func (r *Renderer) Generate(ctx context.Context, city string) map[string]string {
	out := map[string]string{}

	slug := common.Slug(city)
	dir := filepath.Join(r.cfg.OutputDir, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error("error in generate visualizations", "city", city, "dir", dir, "error", err)
		return out
	}

	jobs := []struct {
		kind string
		file string
		fn   func(context.Context, string, string) (bool, error)
	}{
		{KindSummary, slug + "_summary.png", r.Summary},
		{KindForecast, "forecast.png", r.Forecast},
		{KindHeatmap, "heatmap.png", r.Heatmap},
	}
	for _, job := range jobs {
		ok, err := r.safely(func() (bool, error) {
			return job.fn(ctx, city, filepath.Join(dir, job.file))
		})
		switch {
		case err != nil:
			r.logger.Error("error generating chart", "kind", job.kind, "city", city, "error", err)
			r.metrics.RecordChart(job.kind, "error")
		case !ok:
			r.metrics.RecordChart(job.kind, "empty")
		default:
			r.metrics.RecordChart(job.kind, "success")
			out[job.kind] = path.Join(r.cfg.URLPrefix, slug, job.file)
		}
	}
	return out
}

// safely converts a panic inside the plotting library into an error.
func (r *Renderer) safely(fn func() (bool, error)) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok, err = false, fmt.Errorf("chart rendering panicked: %v", rec)
		}
	}()
	return fn()
}

func (r *Renderer) newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	p.Title.TextStyle.Font.Size = r.cfg.TitleFontSize
	p.X.Label.TextStyle.Font.Size = r.cfg.LabelFontSize
	p.Y.Label.TextStyle.Font.Size = r.cfg.LabelFontSize
	p.X.Tick.Label.Font.Size = r.cfg.TickFontSize
	p.Y.Tick.Label.Font.Size = r.cfg.TickFontSize
	p.Legend.TextStyle.Font.Size = r.cfg.LegendFontSize
	p.Legend.Top = true
	return p
}

// saveStacked draws plots top to bottom on one image and writes it to file.
func (r *Renderer) saveStacked(file string, size Size, plots ...*plot.Plot) error {
	img := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(r.cfg.DPI))
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
		PadY:      vg.Points(12),
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	return writePNG(file, img)
}

func writePNG(file string, img *vgimg.Canvas) error {
	tmp, err := os.CreateTemp(filepath.Dir(file), ".chart-*.png")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	return os.Rename(tmp.Name(), file)
}
