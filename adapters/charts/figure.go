// Package charts renders the report charts (bullet graphs, funnels, dot
// plots, overlaid bars, heatmaps and faceted time series) with gonum/plot.
package charts

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bizwiz/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is a figure's width and height
type Size struct {
	Width, Height vg.Length
}

// Preferred sizes for each chart
var (
	DefaultSize   = Size{8 * vg.Inch, 6 * vg.Inch}
	BulletSize    = Size{5 * vg.Inch, 3 * vg.Inch}
	FunnelSize    = Size{12 * vg.Inch, 6 * vg.Inch}
	OverlaySize   = Size{6 * vg.Inch, 15 * vg.Inch}
	HeatmapSize   = Size{9 * vg.Inch, 6 * vg.Inch}
	TimeGridPanel = Size{3 * vg.Inch, 2.5 * vg.Inch}
)

// Drawable is anything that can render onto a canvas; *plot.Plot and
// *Figure both qualify.
type Drawable interface {
	Draw(c draw.Canvas)
}

// Figure lays out a grid of plots under a shared title
type Figure struct {
	Title      string
	TitleStyle text.Style
	Plots      [][]*plot.Plot
	Size       Size
}

// NewFigure returns an empty rows x cols figure
func NewFigure(title string, rows, cols int) *Figure {
	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}
	return &Figure{
		Title: title,
		TitleStyle: text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, 14),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		},
		Plots: plots,
		Size:  DefaultSize,
	}
}

// Rows and Cols report the grid shape
func (f *Figure) Rows() int { return len(f.Plots) }

func (f *Figure) Cols() int {
	if len(f.Plots) == 0 {
		return 0
	}
	return len(f.Plots[0])
}

// Draw renders the title then every plot, with data areas aligned across
// rows and columns. Empty cells stay blank.
func (f *Figure) Draw(c draw.Canvas) {
	if f.Title != "" {
		c.FillText(f.TitleStyle, vg.Point{X: c.Center().X, Y: c.Max.Y - vg.Millimeter}, f.Title)
		c = draw.Crop(c, 0, 0, 0, -(f.TitleStyle.Height(f.Title) + 2*vg.Millimeter))
	}
	if f.Rows() == 0 || f.Cols() == 0 {
		return
	}

	tiles := draw.Tiles{
		Rows:      f.Rows(),
		Cols:      f.Cols(),
		PadX:      4 * vg.Millimeter,
		PadY:      3 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(f.Plots, tiles, c)
	for j, row := range f.Plots {
		for i, p := range row {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}
}

// Save renders d to path; the image format follows the file extension (png,
// svg, pdf, jpg, eps, tif). Zero dimensions fall back to the figure's own size
// or DefaultSize.
func Save(d Drawable, path string, width, height vg.Length) error {
	if width <= 0 || height <= 0 {
		size := DefaultSize
		if f, ok := d.(*Figure); ok && f.Size.Width > 0 && f.Size.Height > 0 {
			size = f.Size
		}
		width, height = size.Width, size.Height
	}

	w, err := WriterTo(d, width, height, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := w.WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	log.Printf("[Charts] Saved %s (%.1fx%.1f in)", path, float64(width/vg.Inch), float64(height/vg.Inch))
	return nil
}

// WriterTo renders d into an in-memory image of the given format
func WriterTo(d Drawable, width, height vg.Length, format string) (io.WriterTo, error) {
	c, err := draw.NewFormattedCanvas(width, height, strings.ToLower(format))
	if err != nil {
		return nil, errors.UnsupportedFormat(fmt.Sprintf("image format %q", format))
	}
	d.Draw(draw.New(c))
	return c, nil
}

// formatTicks relabels the major ticks of the default ticker
type formatTicks func(float64) string

func (f formatTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = f(ticks[i].Value)
		}
	}
	return ticks
}

func textStyle(c color.Color, size vg.Length, xAlign draw.XAlignment, yAlign draw.YAlignment) text.Style {
	return text.Style{
		Color:   c,
		Font:    font.From(plot.DefaultFont, size),
		XAlign:  xAlign,
		YAlign:  yAlign,
		Handler: plot.DefaultTextHandler,
	}
}
