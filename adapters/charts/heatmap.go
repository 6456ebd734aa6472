package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const heatColors = 64

// Pivot is a dense index x columns grid; missing cells are NaN
type Pivot struct {
	Index   []string
	Columns []string
	Values  [][]float64
}

// PivotFrame reshapes long data into a grid keyed by the distinct values of
// indexCol and columnsCol, both sorted. A repeated index/column pair is an
// error rather than being aggregated.
func PivotFrame(df dataframe.DataFrame, indexCol, columnsCol, valuesCol string) (*Pivot, error) {
	if err := requireRows(df, "pivot", indexCol, columnsCol, valuesCol); err != nil {
		return nil, err
	}
	index := uniqueSorted(df.Col(indexCol))
	columns := uniqueSorted(df.Col(columnsCol))
	rowOf := positions(index)
	colOf := positions(columns)

	grid := make([][]float64, len(index))
	filled := make([][]bool, len(index))
	for r := range grid {
		grid[r] = make([]float64, len(columns))
		filled[r] = make([]bool, len(columns))
		for c := range grid[r] {
			grid[r][c] = math.NaN()
		}
	}

	idx := df.Col(indexCol)
	cols := df.Col(columnsCol)
	vals := numbers(df, valuesCol)
	for i := 0; i < df.Nrow(); i++ {
		ie, ce := idx.Elem(i), cols.Elem(i)
		if ie.IsNA() || ce.IsNA() {
			continue
		}
		r, c := rowOf[ie.String()], colOf[ce.String()]
		if filled[r][c] {
			return nil, errors.InvalidInput(fmt.Sprintf("pivot: duplicate entries for (%s, %s)", ie.String(), ce.String()))
		}
		filled[r][c] = true
		grid[r][c] = vals[i]
	}
	return &Pivot{Index: index, Columns: columns, Values: grid}, nil
}

func positions(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

// heatGrid adapts a Pivot to plotter.GridXYZ with the first index row on top
type heatGrid struct{ p *Pivot }

func (g heatGrid) Dims() (c, r int) { return len(g.p.Columns), len(g.p.Index) }
func (g heatGrid) Z(c, r int) float64 {
	return g.p.Values[len(g.p.Index)-1-r][c]
}
func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }

// Heatmap pivots df and draws the grid with each cell annotated by its value
// rounded to an integer. Empty cells are left white.
func Heatmap(df dataframe.DataFrame, indexCol, columnsCol, valuesCol string) (*plot.Plot, error) {
	pv, err := PivotFrame(df, indexCol, columnsCol, valuesCol)
	if err != nil {
		return nil, err
	}

	var all []float64
	for _, row := range pv.Values {
		all = append(all, row...)
	}
	lo, hi, ok := span(all)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("heatmap: %s has no numeric values", valuesCol))
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	pal := palette.Heat(heatColors, 1)
	hm := plotter.NewHeatMap(heatGrid{pv}, pal)
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.White

	p := plot.New()
	p.X.Label.Text = columnsCol
	p.Y.Label.Text = indexCol
	p.Add(hm)

	var xys plotter.XYs
	var text []string
	var shades []color.Color
	g := heatGrid{pv}
	cols, rows := g.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := g.Z(c, r)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			xys = append(xys, plotter.XY{X: g.X(c), Y: g.Y(r)})
			text = append(text, strconv.FormatInt(int64(math.Round(v)), 10))
			shades = append(shades, pal.Colors()[int((v-lo)/(hi-lo)*float64(heatColors-1)+0.5)])
		}
	}
	if len(xys) > 0 {
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
		if err != nil {
			return nil, fmt.Errorf("heatmap labels: %w", err)
		}
		for i := range lbl.TextStyle {
			ink := color.Color(color.Black)
			if luminance(shades[i]) < 0.5 {
				ink = color.White
			}
			lbl.TextStyle[i] = textStyle(ink, vg.Points(10), draw.XCenter, draw.YCenter)
		}
		p.Add(lbl)
	}

	reversed := make([]string, len(pv.Index))
	for i, name := range pv.Index {
		reversed[len(pv.Index)-1-i] = name
	}
	p.NominalX(pv.Columns...)
	p.NominalY(reversed...)
	return p, nil
}
