package charts

import (
	"fmt"
	"math"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// FunnelOptions configures FunnelGraph
type FunnelOptions struct {
	Title      string
	XMin, XMax float64
	BarColor   string
	TextColor  string
	FillColor  string
	// ShadowAlpha is the opacity of the band joining consecutive stages
	ShadowAlpha float64
}

// DefaultFunnelOptions returns the stock funnel styling on a 0-100 scale
func DefaultFunnelOptions() FunnelOptions {
	return FunnelOptions{
		Title:       "Funnel Chart",
		XMin:        0,
		XMax:        100,
		BarColor:    "#808B96",
		TextColor:   "#2A2A2A",
		FillColor:   "grey",
		ShadowAlpha: 0.6,
	}
}

const funnelBarHeight = 0.8

// FunnelGraph draws one centred bar per row of df, top to bottom, with the
// stage label above and the value below the bar's centre line. Consecutive
// bars are joined by a translucent trapezoid.
func FunnelGraph(df dataframe.DataFrame, xCol, labelCol string, opts FunnelOptions) (*plot.Plot, error) {
	d := DefaultFunnelOptions()
	if opts.XMax <= opts.XMin {
		opts.XMin, opts.XMax = d.XMin, d.XMax
	}
	if opts.BarColor == "" {
		opts.BarColor = d.BarColor
	}
	if opts.TextColor == "" {
		opts.TextColor = d.TextColor
	}
	if opts.FillColor == "" {
		opts.FillColor = d.FillColor
	}
	if opts.ShadowAlpha <= 0 || opts.ShadowAlpha > 1 {
		opts.ShadowAlpha = d.ShadowAlpha
	}

	if err := requireRows(df, "funnel", xCol, labelCol); err != nil {
		return nil, err
	}
	c, err := colors(map[string]string{"bar": opts.BarColor, "text": opts.TextColor, "fill": opts.FillColor})
	if err != nil {
		return nil, err
	}

	values := numbers(df, xCol)
	names := labels(df, labelCol)
	width := opts.XMax - opts.XMin
	for i, v := range values {
		if math.IsNaN(v) || v < 0 || v > width {
			return nil, errors.InvalidInput(fmt.Sprintf("funnel value %v for %q must be between 0 and %v", v, names[i], width))
		}
	}

	centre := opts.XMin + width/2
	n := len(values)
	y := func(i int) float64 { return float64(n - i) }

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle = textStyle(c["text"], vg.Points(20), draw.XCenter, draw.YBottom)
	p.HideAxes()
	p.X.Min, p.X.Max = opts.XMin, opts.XMax
	p.Y.Min, p.Y.Max = 1-funnelBarHeight, float64(n)+funnelBarHeight

	shadow := withAlpha(c["fill"], opts.ShadowAlpha)
	half := funnelBarHeight / 2
	for i := 0; i+1 < n; i++ {
		top, bottom := values[i]/2, values[i+1]/2
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: centre - top, Y: y(i) - half},
			{X: centre + top, Y: y(i) - half},
			{X: centre + bottom, Y: y(i+1) + half},
			{X: centre - bottom, Y: y(i+1) + half},
		})
		if err != nil {
			return nil, fmt.Errorf("funnel shadow %d: %w", i, err)
		}
		poly.Color = shadow
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	var textXYs plotter.XYs
	var text []string
	for i, v := range values {
		bar, err := plotter.NewPolygon(plotter.XYs{
			{X: centre - v/2, Y: y(i) - half},
			{X: centre + v/2, Y: y(i) - half},
			{X: centre + v/2, Y: y(i) + half},
			{X: centre - v/2, Y: y(i) + half},
		})
		if err != nil {
			return nil, fmt.Errorf("funnel bar %d: %w", i, err)
		}
		bar.Color = c["bar"]
		bar.LineStyle.Width = 0
		p.Add(bar)

		textXYs = append(textXYs, plotter.XY{X: centre, Y: y(i) + 0.1}, plotter.XY{X: centre, Y: y(i) - 0.3})
		text = append(text, names[i], formatValue(v))
	}

	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: textXYs, Labels: text})
	if err != nil {
		return nil, fmt.Errorf("funnel labels: %w", err)
	}
	for i := range lbl.TextStyle {
		size := vg.Points(16)
		if i%2 == 1 {
			size = vg.Points(14)
		}
		lbl.TextStyle[i] = textStyle(c["text"], size, draw.XCenter, draw.YBottom)
	}
	p.Add(lbl)
	return p, nil
}
