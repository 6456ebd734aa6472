package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"bizwiz/domain/calendar"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// TimeseriesOptions configures MultiTimeseries
type TimeseriesOptions struct {
	Title          string
	XLabel, YLabel string
	// Wrap is the number of panels per row
	Wrap int
	// DateFormat parses a non-numeric x column (strftime or Go layout)
	DateFormat string
	// TickFormat labels date ticks (Go layout)
	TickFormat string
	// Background is the colour of the series that are not highlighted
	Background string
	LineWidth  vg.Length
}

// DefaultTimeseriesOptions returns the stock 3-wide grid
func DefaultTimeseriesOptions() TimeseriesOptions {
	return TimeseriesOptions{
		Wrap:       3,
		DateFormat: "%Y-%m-%d",
		TickFormat: "2006-01",
		Background: ".7",
		LineWidth:  vg.Points(2.5),
	}
}

type track struct {
	key string
	xys plotter.XYs
}

// MultiTimeseries draws one panel per value of facetCol (or hueCol when
// facetCol is empty). Each panel shows every hue series in grey with the
// panel's own series highlighted on top and its name in the corner. All
// panels share their axis ranges.
func MultiTimeseries(df dataframe.DataFrame, xCol, yCol, hueCol, facetCol string, opts TimeseriesOptions) (*Figure, error) {
	d := DefaultTimeseriesOptions()
	if opts.Wrap <= 0 {
		opts.Wrap = d.Wrap
	}
	if opts.DateFormat == "" {
		opts.DateFormat = d.DateFormat
	}
	if opts.TickFormat == "" {
		opts.TickFormat = d.TickFormat
	}
	if opts.Background == "" {
		opts.Background = d.Background
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = d.LineWidth
	}
	if facetCol == "" {
		facetCol = hueCol
	}
	if err := requireRows(df, "timeseries", xCol, yCol, hueCol, facetCol); err != nil {
		return nil, err
	}
	grey, err := ParseColor(opts.Background)
	if err != nil {
		return nil, err
	}

	xs, isTime, err := xValues(df, xCol, opts.DateFormat)
	if err != nil {
		return nil, err
	}
	ys := numbers(df, yCol)
	hues := labels(df, hueCol)
	facets := labels(df, facetCol)

	all := groupSeries(xs, ys, hues, nil, "")
	if len(all) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("timeseries: no complete (%s, %s) points", xCol, yCol))
	}
	xlo, xhi, _ := span(xs)
	ylo, yhi, _ := span(ys)

	panels := distinct(facets)
	hueColor := make(map[string]int)
	for i, s := range all {
		hueColor[s.key] = i
	}
	palette := categoryColors(len(all))

	cols := opts.Wrap
	if len(panels) < cols {
		cols = len(panels)
	}
	rows := (len(panels) + cols - 1) / cols
	fig := NewFigure(opts.Title, rows, cols)
	fig.Size = Size{
		Width:  vg.Length(cols) * TimeGridPanel.Width,
		Height: vg.Length(rows) * TimeGridPanel.Height,
	}

	for k, facet := range panels {
		p := plot.New()
		p.X.Min, p.X.Max = xlo, xhi
		p.Y.Min, p.Y.Max = ylo, yhi
		if isTime {
			p.X.Tick.Marker = plot.TimeTicks{Format: opts.TickFormat}
		}
		row, col := k/cols, k%cols
		if col == 0 {
			p.Y.Label.Text = opts.YLabel
		}
		if k+cols >= len(panels) {
			p.X.Label.Text = opts.XLabel
		}

		for _, s := range all {
			line, err := plotter.NewLine(s.xys)
			if err != nil {
				return nil, fmt.Errorf("timeseries %s: %w", s.key, err)
			}
			line.LineStyle.Color = grey
			line.LineStyle.Width = vg.Points(1)
			p.Add(line)
		}
		for _, s := range groupSeries(xs, ys, hues, facets, facet) {
			line, err := plotter.NewLine(s.xys)
			if err != nil {
				return nil, fmt.Errorf("timeseries %s: %w", s.key, err)
			}
			line.LineStyle.Color = palette[hueColor[s.key]]
			line.LineStyle.Width = opts.LineWidth
			p.Add(line)
		}

		corner, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: xlo + 0.05*(xhi-xlo), Y: yhi}},
			Labels: []string{facet},
		})
		if err != nil {
			return nil, fmt.Errorf("timeseries label %s: %w", facet, err)
		}
		corner.TextStyle[0] = textStyle(palette[hueColor[facet]%len(palette)], vg.Points(11), draw.XLeft, draw.YTop)
		corner.TextStyle[0].Font.Weight = xfont.WeightBold
		p.Add(corner)

		fig.Plots[row][col] = p
	}
	return fig, nil
}

// xValues reads the x column as numbers, or as dates in Unix seconds when any
// cell is not numeric
func xValues(df dataframe.DataFrame, col, dateFormat string) ([]float64, bool, error) {
	raw := labels(df, col)
	out := make([]float64, len(raw))
	numeric := true
	for i, v := range raw {
		if v == "" {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			numeric = false
			break
		}
		out[i] = f
	}
	if numeric {
		return out, false, nil
	}

	for i, v := range raw {
		if v == "" {
			out[i] = math.NaN()
			continue
		}
		t, err := calendar.ParseDate(v, dateFormat)
		if err != nil {
			return nil, false, errors.InvalidInput(fmt.Sprintf("timeseries: %s value %q is neither a number nor a %s date", col, v, dateFormat))
		}
		out[i] = float64(t.Unix())
	}
	return out, true, nil
}

// groupSeries splits points by hue, keeping only rows whose facet equals want
// when facets is set. Series come back in first-seen order with points sorted
// by x; incomplete points are dropped.
func groupSeries(xs, ys []float64, hues, facets []string, want string) []track {
	var out []track
	at := make(map[string]int)
	for i := range xs {
		if facets != nil && facets[i] != want {
			continue
		}
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		j, ok := at[hues[i]]
		if !ok {
			j = len(out)
			at[hues[i]] = j
			out = append(out, track{key: hues[i]})
		}
		out[j].xys = append(out[j].xys, plotter.XY{X: xs[i], Y: ys[i]})
	}
	for _, s := range out {
		sort.Slice(s.xys, func(a, b int) bool { return s.xys[a].X < s.xys[b].X })
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
