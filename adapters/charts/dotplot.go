package charts

import (
	"fmt"
	"image/color"
	"math"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DotOptions configures DotPlot
type DotOptions struct {
	XLabel, YLabel string
	// Titles head each panel; defaults to the x column names
	Titles []string
	// XLim is shared by every panel; a zero range scales to the data
	XLim [2]float64
	// Radius of each dot
	Radius vg.Length
}

// DefaultDotOptions returns the stock 0-25 dot plot layout
func DefaultDotOptions() DotOptions {
	return DotOptions{XLim: [2]float64{0, 25}, Radius: 5}
}

// DotPlot draws one panel per x column, each with a dot per row of df. Rows
// are sorted by sortCol, largest at the top, and share the y axis.
func DotPlot(df dataframe.DataFrame, sortCol string, xCols []string, yCol string, opts DotOptions) (*Figure, error) {
	if len(xCols) == 0 {
		return nil, errors.InvalidInput("dot plot needs at least one x column")
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultDotOptions().Radius
	}
	if len(opts.Titles) == 0 {
		opts.Titles = xCols
	}
	if len(opts.Titles) != len(xCols) {
		return nil, errors.InvalidInput(fmt.Sprintf("%d titles for %d x columns", len(opts.Titles), len(xCols)))
	}
	if err := requireRows(df, "dot plot", append([]string{sortCol, yCol}, xCols...)...); err != nil {
		return nil, err
	}

	sorted, err := sortDesc(df, sortCol)
	if err != nil {
		return nil, err
	}
	names := labels(sorted, yCol)
	n := len(names)
	palette := categoryColors(n)

	// the first row goes on top
	ticks := make([]plot.Tick, n)
	blank := make([]plot.Tick, n)
	for i, name := range names {
		ticks[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
		blank[i] = plot.Tick{Value: float64(n - 1 - i), Label: " "}
	}

	fig := NewFigure("", 1, len(xCols))
	fig.Size = Size{
		Width:  vg.Length(len(xCols))*2.5*vg.Inch + vg.Inch,
		Height: vg.Length(math.Max(3, 0.35*float64(n)+1.5)) * vg.Inch,
	}

	for k, col := range xCols {
		values := numbers(sorted, col)
		var xys plotter.XYs
		var rows []int
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			xys = append(xys, plotter.XY{X: v, Y: float64(n - 1 - i)})
			rows = append(rows, i)
		}

		p := plot.New()
		p.Title.Text = opts.Titles[k]
		p.X.Label.Text = opts.XLabel
		if opts.XLim[1] > opts.XLim[0] {
			p.X.Min, p.X.Max = opts.XLim[0], opts.XLim[1]
		}
		p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5

		grid := plotter.NewGrid()
		grid.Vertical.Color = nil
		p.Add(grid)

		if len(xys) > 0 {
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("dot plot %s: %w", col, err)
			}
			s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				return draw.GlyphStyle{Color: palette[rows[i]], Radius: opts.Radius, Shape: draw.CircleGlyph{}}
			}
			p.Add(s)
		}

		p.Y.Tick.Length = 0
		if k == 0 {
			p.Y.Label.Text = opts.YLabel
			p.Y.Tick.Marker = plot.ConstantTicks(ticks)
		} else {
			p.Y.Tick.Marker = plot.ConstantTicks(blank)
		}
		fig.Plots[0][k] = p
	}
	return fig, nil
}

// categoryColors spreads n colours across a purple to orange ramp
func categoryColors(n int) []color.Color {
	if n < 2 {
		return moreland.SmoothPurpleOrange().Palette(2).Colors()[:n]
	}
	return moreland.SmoothPurpleOrange().Palette(n).Colors()
}
