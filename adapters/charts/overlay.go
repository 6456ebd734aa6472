package charts

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// OverlayOptions configures OverlayBar
type OverlayOptions struct {
	TotalLabel, PartLabel string
	XLabel, YLabel        string
	// BarColor is used for the part bar and, lightened, for the total bar
	BarColor string
	// XLim fixes the x range; a zero range scales to the data
	XLim [2]float64
	// LegendLocation is "lower right", "upper left" and so on
	LegendLocation string
	BarWidth       vg.Length
}

// DefaultOverlayOptions returns the stock overlay styling
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		TotalLabel:     "Total",
		PartLabel:      "Part",
		BarColor:       "steelblue",
		XLim:           [2]float64{0, 24},
		LegendLocation: "lower right",
		BarWidth:       12,
	}
}

// OverlayBar draws a horizontal total bar per category with the part bar
// drawn over it. Categories are sorted by sortCol, largest at the top.
// Missing totals or parts draw as zero-length bars.
func OverlayBar(df dataframe.DataFrame, sortCol, totalCol, partCol, yCol string, opts OverlayOptions) (*plot.Plot, error) {
	d := DefaultOverlayOptions()
	if opts.BarColor == "" {
		opts.BarColor = d.BarColor
	}
	if opts.LegendLocation == "" {
		opts.LegendLocation = d.LegendLocation
	}
	if opts.BarWidth <= 0 {
		opts.BarWidth = d.BarWidth
	}
	if err := requireRows(df, "overlay bar", sortCol, totalCol, partCol, yCol); err != nil {
		return nil, err
	}
	base, err := ParseColor(opts.BarColor)
	if err != nil {
		return nil, err
	}

	sorted, err := sortDesc(df, sortCol)
	if err != nil {
		return nil, err
	}
	names := labels(sorted, yCol)
	totals := numbers(sorted, totalCol)
	parts := numbers(sorted, partCol)

	// bars are laid out bottom up, so reverse to put the first row on top
	n := len(names)
	rev := make([]string, n)
	totalVals := make(plotter.Values, n)
	partVals := make(plotter.Values, n)
	for i := range names {
		j := n - 1 - i
		rev[j] = names[i]
		totalVals[j] = zeroIfMissing(totals[i])
		partVals[j] = zeroIfMissing(parts[i])
	}

	p := plot.New()
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	if opts.XLim[1] > opts.XLim[0] {
		p.X.Min, p.X.Max = opts.XLim[0], opts.XLim[1]
	}

	total, err := plotter.NewBarChart(totalVals, opts.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("overlay totals: %w", err)
	}
	total.Horizontal = true
	total.Color = mix(base, color.White, 0.6)
	total.LineStyle.Width = 0

	part, err := plotter.NewBarChart(partVals, opts.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("overlay parts: %w", err)
	}
	part.Horizontal = true
	part.Color = base
	part.LineStyle.Width = 0

	p.Add(total, part)
	p.NominalY(rev...)

	top, left, err := legendCorner(opts.LegendLocation)
	if err != nil {
		return nil, err
	}
	p.Legend.Top, p.Legend.Left = top, left
	if opts.TotalLabel != "" {
		p.Legend.Add(opts.TotalLabel, total)
	}
	if opts.PartLabel != "" {
		p.Legend.Add(opts.PartLabel, part)
	}
	return p, nil
}

func zeroIfMissing(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func legendCorner(loc string) (top, left bool, err error) {
	switch strings.ToLower(strings.TrimSpace(loc)) {
	case "lower right", "best":
		return false, false, nil
	case "lower left":
		return false, true, nil
	case "upper right":
		return true, false, nil
	case "upper left":
		return true, true, nil
	}
	return false, false, errors.InvalidInput(fmt.Sprintf("unknown legend location %q", loc))
}
