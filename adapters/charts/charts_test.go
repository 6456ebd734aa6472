package charts

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func frame(t *testing.T, records [][]string) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.FromRecords(records)
	require.NoError(t, err)
	return df
}

func assertSaved(t *testing.T, d Drawable, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, Save(d, path, 0, 0))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#808B96")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x80, G: 0x8B, B: 0x96, A: 255}, c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, c)

	c, err = ParseColor(".7")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 179, G: 179, B: 179, A: 255}, c)

	_, err = ParseColor("Grey")
	assert.NoError(t, err)

	for _, bad := range []string{"", "notacolour", "#12", "1.5", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), bad)
	}
}

func TestLightPalette(t *testing.T) {
	base := color.RGBA{R: 0, G: 128, B: 0, A: 255}
	pal := LightPalette(base, 4)
	require.Len(t, pal, 4)
	assert.Equal(t, color.Color(base), pal[3])
	assert.Greater(t, luminance(pal[0]), luminance(pal[1]))
	assert.Greater(t, luminance(pal[1]), luminance(pal[3]))

	assert.Equal(t, []color.Color{base}, LightPalette(base, 1))
	assert.Nil(t, LightPalette(base, 0))
}

func TestBulletGraph(t *testing.T) {
	df := frame(t, [][]string{
		{"team", "score", "goal"},
		{"North", "65", "80"},
		{"South", "90", "85"},
		{"West", "", "50"},
	})

	opts := DefaultBulletOptions()
	opts.TickFormat = func(v float64) string { return "$" + formatValue(v) }
	fig, err := BulletGraph(df, "team", "score", "goal", opts)
	require.NoError(t, err)
	assert.Equal(t, 3, fig.Rows())
	assert.Equal(t, 1, fig.Cols())
	assert.Equal(t, "Bullet Graph", fig.Title)
	assert.Equal(t, "Metric", fig.Plots[2][0].X.Label.Text)
	assert.Empty(t, fig.Plots[0][0].X.Label.Text)
	assertSaved(t, fig, "bullet.png")

	opts.Limits = []float64{50, 40}
	_, err = BulletGraph(df, "team", "score", "goal", opts)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = BulletGraph(df, "team", "missing", "goal", DefaultBulletOptions())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFunnelGraph(t *testing.T) {
	df := frame(t, [][]string{
		{"stage", "count"},
		{"Visits", "100"},
		{"Signups", "60"},
		{"Orders", "25"},
	})

	p, err := FunnelGraph(df, "count", "stage", DefaultFunnelOptions())
	require.NoError(t, err)
	assert.Equal(t, "Funnel Chart", p.Title.Text)
	assert.Equal(t, 0.0, p.X.Min)
	assert.Equal(t, 100.0, p.X.Max)
	assertSaved(t, p, "funnel.svg")

	over := frame(t, [][]string{{"stage", "count"}, {"Too many", "150"}})
	_, err = FunnelGraph(over, "count", "stage", DefaultFunnelOptions())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestDotPlot(t *testing.T) {
	df := frame(t, [][]string{
		{"state", "total", "speeding", "alcohol"},
		{"Ohio", "14", "4.2", "5.1"},
		{"Texas", "19", "7.1", ""},
		{"Maine", "11", "2.0", "3.3"},
	})

	opts := DefaultDotOptions()
	opts.Titles = []string{"Speeding", "Alcohol"}
	fig, err := DotPlot(df, "total", []string{"speeding", "alcohol"}, "state", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, fig.Rows())
	assert.Equal(t, 2, fig.Cols())
	assert.Equal(t, "Speeding", fig.Plots[0][0].Title.Text)

	// largest total on top
	ticks := fig.Plots[0][0].Y.Tick.Marker.Ticks(0, 2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "Texas", ticks[0].Label)
	assert.Equal(t, 2.0, ticks[0].Value)
	assertSaved(t, fig, "dots.png")

	opts.Titles = []string{"only one"}
	_, err = DotPlot(df, "total", []string{"speeding", "alcohol"}, "state", opts)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestOverlayBar(t *testing.T) {
	df := frame(t, [][]string{
		{"state", "total", "alcohol"},
		{"Ohio", "14", "5"},
		{"Texas", "19", "7"},
		{"Maine", "11", ""},
	})

	opts := DefaultOverlayOptions()
	opts.TotalLabel, opts.PartLabel = "Total", "Alcohol-involved"
	p, err := OverlayBar(df, "total", "total", "alcohol", "state", opts)
	require.NoError(t, err)
	assert.False(t, p.Legend.Top)
	assert.False(t, p.Legend.Left)

	ticks := p.Y.Tick.Marker.Ticks(0, 2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "Maine", ticks[0].Label)
	assert.Equal(t, "Texas", ticks[2].Label)
	assertSaved(t, p, "overlay.png")

	opts.LegendLocation = "center"
	_, err = OverlayBar(df, "total", "total", "alcohol", "state", opts)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPivotFrame(t *testing.T) {
	df := frame(t, [][]string{
		{"month", "year", "passengers"},
		{"Feb", "1950", "126"},
		{"Jan", "1949", "112"},
		{"Jan", "1950", "115"},
	})

	pv, err := PivotFrame(df, "month", "year", "passengers")
	require.NoError(t, err)
	assert.Equal(t, []string{"Feb", "Jan"}, pv.Index)
	assert.Equal(t, []string{"1949", "1950"}, pv.Columns)
	assert.True(t, math.IsNaN(pv.Values[0][0]))
	assert.Equal(t, 126.0, pv.Values[0][1])
	assert.Equal(t, []float64{112, 115}, pv.Values[1])

	dup := frame(t, [][]string{
		{"month", "year", "passengers"},
		{"Jan", "1949", "112"},
		{"Jan", "1949", "118"},
	})
	_, err = PivotFrame(dup, "month", "year", "passengers")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestUniqueSortedNumeric(t *testing.T) {
	df := frame(t, [][]string{{"k"}, {"10"}, {"9"}, {"10"}, {"100"}})
	assert.Equal(t, []string{"9", "10", "100"}, uniqueSorted(df.Col("k")))
}

func TestHeatmap(t *testing.T) {
	df := frame(t, [][]string{
		{"month", "year", "passengers"},
		{"Jan", "1949", "112"},
		{"Jan", "1950", "115"},
		{"Feb", "1949", "118"},
	})

	p, err := Heatmap(df, "month", "year", "passengers")
	require.NoError(t, err)
	assert.Equal(t, "year", p.X.Label.Text)
	assert.Equal(t, "month", p.Y.Label.Text)

	var buf bytes.Buffer
	w, err := WriterTo(p, HeatmapSize.Width, HeatmapSize.Height, "png")
	require.NoError(t, err)
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	blank := frame(t, [][]string{{"month", "year", "passengers"}, {"Jan", "1949", ""}})
	_, err = Heatmap(blank, "month", "year", "passengers")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestMultiTimeseries(t *testing.T) {
	records := [][]string{{"date", "sales", "region"}}
	for _, region := range []string{"North", "South", "East", "West"} {
		for _, d := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
			records = append(records, []string{d, "10", region})
		}
	}
	records[2][1] = "14"
	df := frame(t, records)

	fig, err := MultiTimeseries(df, "date", "sales", "region", "", DefaultTimeseriesOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, fig.Rows())
	assert.Equal(t, 3, fig.Cols())
	assert.NotNil(t, fig.Plots[1][0])
	assert.Nil(t, fig.Plots[1][2])
	assert.Equal(t, 14.0, fig.Plots[0][0].Y.Max)
	assertSaved(t, fig, "series.png")

	_, err = MultiTimeseries(df, "region", "sales", "region", "", DefaultTimeseriesOptions())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSave_UnknownFormat(t *testing.T) {
	p, err := FunnelGraph(frame(t, [][]string{{"s", "n"}, {"a", "1"}}), "n", "s", FunnelOptions{})
	require.NoError(t, err)
	err = Save(p, filepath.Join(t.TempDir(), "chart.bmp"), 4*vg.Inch, 3*vg.Inch)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}
