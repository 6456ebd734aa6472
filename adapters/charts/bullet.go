package charts

import (
	"fmt"
	"image/color"
	"math"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// BulletOptions configures BulletGraph
type BulletOptions struct {
	// Limits are the upper bounds of the qualitative bands, ascending
	Limits []float64
	// Labels name the bands, drawn under the last panel
	Labels       []string
	AxisLabel    string
	Title        string
	PaletteColor string
	TargetColor  string
	BarColor     string
	LabelColor   string
	// TickFormat formats x tick labels, e.g. as currency
	TickFormat func(float64) string
	// BandWidth is the thickness of the band bars; the measure bar is a third
	BandWidth vg.Length
}

// DefaultBulletOptions returns the stock poor/ok/good/excellent layout
func DefaultBulletOptions() BulletOptions {
	return BulletOptions{
		Limits:       []float64{20, 40, 80, 100},
		Labels:       []string{"Poor", "Ok", "Good", "Excellent"},
		AxisLabel:    "Metric",
		Title:        "Bullet Graph",
		PaletteColor: "green",
		TargetColor:  "gray",
		BarColor:     "black",
		LabelColor:   "black",
		BandWidth:    20,
	}
}

func (o *BulletOptions) setDefaults() {
	d := DefaultBulletOptions()
	if len(o.Limits) == 0 {
		o.Limits = d.Limits
		if len(o.Labels) == 0 {
			o.Labels = d.Labels
		}
	}
	if o.PaletteColor == "" {
		o.PaletteColor = d.PaletteColor
	}
	if o.TargetColor == "" {
		o.TargetColor = d.TargetColor
	}
	if o.BarColor == "" {
		o.BarColor = d.BarColor
	}
	if o.LabelColor == "" {
		o.LabelColor = d.LabelColor
	}
	if o.BandWidth <= 0 {
		o.BandWidth = d.BandWidth
	}
}

// BulletGraph draws one horizontal bullet per row of df: shaded bands at the
// limits, a thin bar for the measured value and a line at the target. Missing
// values or targets are simply not drawn.
func BulletGraph(df dataframe.DataFrame, categoryCol, valueCol, targetCol string, opts BulletOptions) (*Figure, error) {
	opts.setDefaults()
	if err := requireRows(df, "bullet graph", categoryCol, valueCol, targetCol); err != nil {
		return nil, err
	}
	if err := validateLimits(opts.Limits, opts.Labels); err != nil {
		return nil, err
	}

	c, err := colors(map[string]string{
		"palette": opts.PaletteColor,
		"target":  opts.TargetColor,
		"bar":     opts.BarColor,
		"label":   opts.LabelColor,
	})
	if err != nil {
		return nil, err
	}
	bands := LightPalette(c["palette"], len(opts.Limits))

	categories := labels(df, categoryCol)
	values := numbers(df, valueCol)
	targets := numbers(df, targetCol)

	fig := NewFigure(opts.Title, len(categories), 1)
	fig.Size = BulletSize
	if rows := vg.Length(len(categories)); rows > 3 {
		fig.Size.Height = rows * vg.Inch
	}

	for i, category := range categories {
		p := plot.New()
		p.X.Min, p.X.Max = 0, opts.Limits[len(opts.Limits)-1]
		p.Y.Min, p.Y.Max = -0.5, 0.5
		if opts.TickFormat != nil {
			p.X.Tick.Marker = formatTicks(opts.TickFormat)
		}

		var below *plotter.BarChart
		lower := 0.0
		for j, limit := range opts.Limits {
			band, err := plotter.NewBarChart(plotter.Values{limit - lower}, opts.BandWidth)
			if err != nil {
				return nil, fmt.Errorf("bullet band %d: %w", j, err)
			}
			band.Horizontal = true
			band.Color = bands[j]
			band.LineStyle.Width = 0
			if below != nil {
				band.StackOn(below)
			}
			p.Add(band)
			below, lower = band, limit
		}

		if v := values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			bar, err := plotter.NewBarChart(plotter.Values{v}, opts.BandWidth/3)
			if err != nil {
				return nil, fmt.Errorf("bullet measure for %s: %w", category, err)
			}
			bar.Horizontal = true
			bar.Color = c["bar"]
			bar.LineStyle.Width = 0
			p.Add(bar)
		}

		if t := targets[i]; !math.IsNaN(t) && !math.IsInf(t, 0) {
			line, err := plotter.NewLine(plotter.XYs{{X: t, Y: -0.3}, {X: t, Y: 0.3}})
			if err != nil {
				return nil, fmt.Errorf("bullet target for %s: %w", category, err)
			}
			line.LineStyle.Color = c["target"]
			line.LineStyle.Width = vg.Points(3)
			p.Add(line)
		}

		p.NominalY(category)
		if i < len(categories)-1 {
			p.HideX()
		} else {
			p.X.Label.Text = opts.AxisLabel
			if err := addBandLabels(p, opts, c["label"]); err != nil {
				return nil, err
			}
		}
		fig.Plots[i][0] = p
	}
	return fig, nil
}

func validateLimits(limits []float64, names []string) error {
	prev := 0.0
	for i, l := range limits {
		if math.IsNaN(l) || l <= prev {
			return errors.InvalidInput(fmt.Sprintf("bullet limits must be positive and ascending, got %v at %d", l, i))
		}
		prev = l
	}
	if len(names) > len(limits) {
		return errors.InvalidInput(fmt.Sprintf("%d band labels for %d limits", len(names), len(limits)))
	}
	return nil
}

// addBandLabels centres each band's label under it
func addBandLabels(p *plot.Plot, opts BulletOptions, c color.Color) error {
	if len(opts.Labels) == 0 {
		return nil
	}
	var xys plotter.XYs
	lower := 0.0
	for i := range opts.Labels {
		xys = append(xys, plotter.XY{X: (lower + opts.Limits[i]) / 2, Y: -0.48})
		lower = opts.Limits[i]
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: opts.Labels})
	if err != nil {
		return fmt.Errorf("bullet labels: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i] = textStyle(c, vg.Points(9), draw.XCenter, draw.YBottom)
	}
	p.Add(l)
	return nil
}
