package main

import (
	"fmt"
	"strconv"
	"strings"

	"bizwiz/adapters/charts"
	"bizwiz/internal/errors"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

// chartFlags are shared by every chart subcommand
type chartFlags struct {
	out           string
	title         string
	width, height float64
}

func (f *chartFlags) register(cmd *cobra.Command, defaultOut string) {
	cmd.Flags().StringVar(&f.out, "out", defaultOut, "Output image; format follows the extension (png, svg, pdf, jpg)")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title")
	cmd.Flags().Float64Var(&f.width, "width", 0, "Width in inches; defaults to the chart's own size")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Height in inches")
}

// saveChart writes d at the requested size, or fallback when none was given
func (a *app) saveChart(d charts.Drawable, f *chartFlags, fallback charts.Size) error {
	w, h := vg.Length(f.width)*vg.Inch, vg.Length(f.height)*vg.Inch
	if w <= 0 || h <= 0 {
		w, h = fallback.Width, fallback.Height
	}
	if err := charts.Save(d, f.out, w, h); err != nil {
		return err
	}
	a.success("Chart saved to %s", f.out)
	return nil
}

func figureSize(fig *charts.Figure) charts.Size {
	if fig.Size.Width > 0 && fig.Size.Height > 0 {
		return fig.Size
	}
	return charts.DefaultSize
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseFloats(s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid number %q", p))
		}
		out[i] = v
	}
	return out, nil
}

func (a *app) newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render report charts from a CSV, Excel or Parquet file",
	}
	cmd.AddCommand(
		a.newHeatmapCmd(),
		a.newFunnelCmd(),
		a.newBulletCmd(),
		a.newDotCmd(),
		a.newOverlayCmd(),
		a.newTimeseriesCmd(),
	)
	return cmd
}

func (a *app) newHeatmapCmd() *cobra.Command {
	var f chartFlags
	var index, columns, values string
	cmd := &cobra.Command{
		Use:   "heatmap file",
		Short: "Annotated heatmap of a pivoted value column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			p, err := charts.Heatmap(df, index, columns, values)
			if err != nil {
				return err
			}
			if f.title != "" {
				p.Title.Text = f.title
			}
			return a.saveChart(p, &f, charts.HeatmapSize)
		},
	}
	f.register(cmd, "heatmap.png")
	cmd.Flags().StringVar(&index, "index", "", "Column giving the rows")
	cmd.Flags().StringVar(&columns, "columns", "", "Column giving the columns")
	cmd.Flags().StringVar(&values, "values", "", "Numeric column giving the cells")
	for _, name := range []string{"index", "columns", "values"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newFunnelCmd() *cobra.Command {
	var f chartFlags
	var x, label string
	opts := charts.DefaultFunnelOptions()
	cmd := &cobra.Command{
		Use:   "funnel file",
		Short: "Funnel of stage values, first row at the top",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			if f.title != "" {
				opts.Title = f.title
			}
			p, err := charts.FunnelGraph(df, x, label, opts)
			if err != nil {
				return err
			}
			return a.saveChart(p, &f, charts.FunnelSize)
		},
	}
	f.register(cmd, "funnel.png")
	cmd.Flags().StringVar(&x, "x", "", "Numeric value column")
	cmd.Flags().StringVar(&label, "label", "", "Stage label column")
	cmd.Flags().Float64Var(&opts.XMin, "xmin", opts.XMin, "Left edge of the scale")
	cmd.Flags().Float64Var(&opts.XMax, "xmax", opts.XMax, "Right edge of the scale")
	cmd.Flags().StringVar(&opts.BarColor, "color", opts.BarColor, "Bar colour")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func (a *app) newBulletCmd() *cobra.Command {
	var f chartFlags
	var category, value, target, limits, labels string
	opts := charts.DefaultBulletOptions()
	cmd := &cobra.Command{
		Use:   "bullet file",
		Short: "Bullet graph with qualitative bands and a target marker per row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			if f.title != "" {
				opts.Title = f.title
			}
			if limits != "" {
				opts.Limits, err = parseFloats(limits)
				if err != nil {
					return err
				}
				opts.Labels = splitList(labels)
			}
			fig, err := charts.BulletGraph(df, category, value, target, opts)
			if err != nil {
				return err
			}
			return a.saveChart(fig, &f, figureSize(fig))
		},
	}
	f.register(cmd, "bullet.png")
	cmd.Flags().StringVar(&category, "category", "", "Row label column")
	cmd.Flags().StringVar(&value, "value", "", "Measured value column")
	cmd.Flags().StringVar(&target, "target", "", "Target value column")
	cmd.Flags().StringVar(&limits, "limits", "", "Comma-separated band limits, ascending")
	cmd.Flags().StringVar(&labels, "labels", "", "Comma-separated band labels")
	cmd.Flags().StringVar(&opts.AxisLabel, "axis-label", opts.AxisLabel, "Label under the last panel")
	cmd.Flags().StringVar(&opts.PaletteColor, "palette", opts.PaletteColor, "Base colour of the bands")
	for _, name := range []string{"category", "value", "target"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newDotCmd() *cobra.Command {
	var f chartFlags
	var sortCol, xCols, yCol string
	opts := charts.DefaultDotOptions()
	cmd := &cobra.Command{
		Use:   "dot file",
		Short: "Dot plot with one panel per value column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			fig, err := charts.DotPlot(df, sortCol, splitList(xCols), yCol, opts)
			if err != nil {
				return err
			}
			if f.title != "" {
				fig.Title = f.title
			}
			return a.saveChart(fig, &f, figureSize(fig))
		},
	}
	f.register(cmd, "dotplot.png")
	cmd.Flags().StringVar(&sortCol, "sort", "", "Column to sort rows by, largest first")
	cmd.Flags().StringVar(&xCols, "x", "", "Comma-separated value columns, one panel each")
	cmd.Flags().StringVar(&yCol, "y", "", "Row label column")
	cmd.Flags().StringVar(&opts.XLabel, "xlabel", "", "X axis label")
	cmd.Flags().StringVar(&opts.YLabel, "ylabel", "", "Y axis label")
	for _, name := range []string{"sort", "x", "y"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newOverlayCmd() *cobra.Command {
	var f chartFlags
	var sortCol, total, part, yCol string
	opts := charts.DefaultOverlayOptions()
	cmd := &cobra.Command{
		Use:   "overlay file",
		Short: "Horizontal total bars with the part drawn over them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			p, err := charts.OverlayBar(df, sortCol, total, part, yCol, opts)
			if err != nil {
				return err
			}
			if f.title != "" {
				p.Title.Text = f.title
			}
			return a.saveChart(p, &f, charts.OverlaySize)
		},
	}
	f.register(cmd, "overlay.png")
	cmd.Flags().StringVar(&sortCol, "sort", "", "Column to sort rows by, largest first")
	cmd.Flags().StringVar(&total, "total", "", "Total value column")
	cmd.Flags().StringVar(&part, "part", "", "Part value column")
	cmd.Flags().StringVar(&yCol, "y", "", "Row label column")
	cmd.Flags().StringVar(&opts.LegendLocation, "legend", opts.LegendLocation, "Legend corner")
	for _, name := range []string{"sort", "total", "part", "y"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) newTimeseriesCmd() *cobra.Command {
	var f chartFlags
	var x, y, hue, facet string
	opts := charts.DefaultTimeseriesOptions()
	cmd := &cobra.Command{
		Use:   "timeseries file",
		Short: "Grid of small multiples, one highlighted series per panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			if f.title != "" {
				opts.Title = f.title
			}
			fig, err := charts.MultiTimeseries(df, x, y, hue, facet, opts)
			if err != nil {
				return err
			}
			return a.saveChart(fig, &f, figureSize(fig))
		},
	}
	f.register(cmd, "timeseries.png")
	cmd.Flags().StringVar(&x, "x", "", "Date or numeric x column")
	cmd.Flags().StringVar(&y, "y", "", "Numeric y column")
	cmd.Flags().StringVar(&hue, "hue", "", "Column naming each series")
	cmd.Flags().StringVar(&facet, "facet", "", "Column naming each panel; defaults to --hue")
	cmd.Flags().IntVar(&opts.Wrap, "wrap", opts.Wrap, "Panels per row")
	cmd.Flags().StringVar(&opts.DateFormat, "date-format", opts.DateFormat, "Format of a date x column")
	for _, name := range []string{"x", "y", "hue"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
