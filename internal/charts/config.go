package charts

import (
	"image/color"

	"gonum.org/v1/plot/vg"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// RenderConfig carries every style and layout setting used by a Renderer.
// It is a value: each Renderer owns its copy and nothing is shared between
// concurrent renders.
type RenderConfig struct {
	// OutputDir is the filesystem root; charts go to OutputDir/<slug>/.
	OutputDir string
	// URLPrefix is the public path OutputDir is served under.
	URLPrefix string

	// Unit is the display unit for temperature axes.
	Unit weather.Unit

	SummaryDays int
	HeatmapDays int

	SummarySize  Size
	ForecastSize Size
	HeatmapSize  Size
	DPI          int

	TitleFontSize  vg.Length
	LabelFontSize  vg.Length
	TickFontSize   vg.Length
	LegendFontSize vg.Length

	TemperatureColor color.Color
	BandColor        color.Color
	HumidityColor    color.Color
	WindColor        color.Color
	LineWidth        vg.Length
}

// Size is a figure size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultRenderConfig returns the dashboard's standard chart style.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		OutputDir:   "static/plots",
		URLPrefix:   "/static/plots",
		Unit:        weather.Celsius,
		SummaryDays: 7,
		HeatmapDays: 7,

		SummarySize:  Size{Width: 14 * vg.Inch, Height: 16 * vg.Inch},
		ForecastSize: Size{Width: 14 * vg.Inch, Height: 8 * vg.Inch},
		HeatmapSize:  Size{Width: 16 * vg.Inch, Height: 8 * vg.Inch},
		DPI:          100,

		TitleFontSize:  14,
		LabelFontSize:  12,
		TickFontSize:   10,
		LegendFontSize: 10,

		TemperatureColor: color.RGBA{R: 31, G: 119, B: 180, A: 255},
		BandColor:        color.RGBA{R: 31, G: 119, B: 180, A: 40},
		HumidityColor:    color.RGBA{R: 44, G: 160, B: 44, A: 160},
		WindColor:        color.RGBA{R: 148, G: 103, B: 189, A: 160},
		LineWidth:        vg.Points(2),
	}
}
