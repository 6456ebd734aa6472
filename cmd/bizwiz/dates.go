package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bizwiz/domain/calendar"
	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
)

// datePair is one row of a bizdays --file input
type datePair struct {
	Start string `csv:"start"`
	End   string `csv:"end"`
}

func (a *app) parseDate(value, format string) (time.Time, error) {
	if format == "" {
		format = a.cfg.Files.DateLayout
	}
	t, err := calendar.ParseDate(value, format)
	if err != nil {
		return time.Time{}, errors.InvalidInput(fmt.Sprintf("invalid date %q for format %s", value, format))
	}
	return t, nil
}

func (a *app) newBizdaysCmd() *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "bizdays [start end]",
		Short: "Count business days between two dates, inclusive",
		Long: `Count the Monday-Friday days between two dates, both ends included.
A weekend start moves to the next Monday and a weekend end to the previous Friday.

Example: bizwiz bizdays 2024-01-01 2024-01-12
         bizwiz bizdays --file pairs.csv   (columns: start,end)`,
		Args: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return a.runBizdaysFile(file, format)
			}
			start, err := a.parseDate(args[0], format)
			if err != nil {
				return err
			}
			end, err := a.parseDate(args[1], format)
			if err != nil {
				return err
			}
			a.success("Business days: %d", calendar.BusinessDays(start, end))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file of start,end pairs")
	cmd.Flags().StringVar(&format, "format", "", "Date format (strftime or Go layout); defaults to the configured layout")
	return cmd
}

func (a *app) runBizdaysFile(path, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("file %s", path))
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pairs []datePair
	if err := csvutil.Unmarshal(data, &pairs); err != nil {
		return errors.InvalidInput(fmt.Sprintf("failed to decode %s: %v", path, err))
	}

	starts := make([]string, len(pairs))
	ends := make([]string, len(pairs))
	counts := make([]string, len(pairs))
	for i, p := range pairs {
		starts[i], ends[i] = p.Start, p.End
		start, err := a.parseDate(p.Start, format)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("row %d", i+1))
		}
		end, err := a.parseDate(p.End, format)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("row %d", i+1))
		}
		counts[i] = strconv.Itoa(calendar.BusinessDays(start, end))
	}

	printFrame(a.out, dataframe.New(
		series.New(starts, series.String, "start"),
		series.New(ends, series.String, "end"),
		series.New(counts, series.Int, "business_days"),
	), 0)
	return nil
}

func (a *app) newDatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Generate date and month sequences",
	}

	var step int
	var skipWeekends bool
	var format, inFormat string
	list := &cobra.Command{
		Use:   "list start end",
		Short: "List dates from start to end inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.parseDate(args[0], inFormat)
			if err != nil {
				return err
			}
			end, err := a.parseDate(args[1], inFormat)
			if err != nil {
				return err
			}
			dates, err := calendar.DateList(start, end, step, skipWeekends)
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			return a.printDates(dates, format)
		},
	}
	list.Flags().IntVar(&step, "step", 1, "Days between consecutive dates")
	list.Flags().BoolVar(&skipWeekends, "skip-weekends", false, "Leave out Saturdays and Sundays")
	list.Flags().StringVar(&format, "format", "%Y-%m-%d", "Output format (strftime or Go layout)")
	list.Flags().StringVar(&inFormat, "input-format", "", "Input date format; defaults to the configured layout")

	var monthFormat, monthIn string
	months := &cobra.Command{
		Use:   "months start end",
		Short: "List the first day of every month within start..end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := a.parseDate(args[0], monthIn)
			if err != nil {
				return err
			}
			end, err := a.parseDate(args[1], monthIn)
			if err != nil {
				return err
			}
			return a.printDates(calendar.MonthList(start, end), monthFormat)
		},
	}
	months.Flags().StringVar(&monthFormat, "format", "%Y-%m", "Output format (strftime or Go layout)")
	months.Flags().StringVar(&monthIn, "input-format", "", "Input date format; defaults to the configured layout")

	cmd.AddCommand(list, months)
	return cmd
}

func (a *app) printDates(dates []time.Time, format string) error {
	layout, err := calendar.ParseLayout(format)
	if err != nil {
		return errors.InvalidInput(err.Error())
	}
	for _, d := range calendar.FormatDates(dates, layout) {
		fmt.Fprintln(a.out, d)
	}
	return nil
}

func (a *app) newDateDiffCmd() *cobra.Command {
	var startCol, endCol, calc, format, outCol, out string

	cmd := &cobra.Command{
		Use:   "datediff file",
		Short: "Add a day-difference column between two date columns",
		Long: `Read a CSV, Excel or Parquet file, compute the days from --start to --end on
every row and print the result or write it to --out.

Example: bizwiz datediff orders.csv --start ordered --end shipped --calc "business days" --out orders.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calculation, err := dataset.ParseCalculation(calc)
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			if format == "" {
				format = a.cfg.Files.DateLayout
			}
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			result, err := dataset.DateDiff(df, dataset.DateDiffOptions{
				StartCol:    startCol,
				EndCol:      endCol,
				DateFormat:  format,
				OutputCol:   outCol,
				Calculation: calculation,
			})
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			return a.emit(result, out, defaultPreviewRows)
		},
	}

	cmd.Flags().StringVar(&startCol, "start", "", "Start date column")
	cmd.Flags().StringVar(&endCol, "end", "", "End date column")
	cmd.Flags().StringVar(&calc, "calc", "calendar days", `"calendar days" or "business days"`)
	cmd.Flags().StringVar(&format, "format", "", "Date format; defaults to the configured layout")
	cmd.Flags().StringVar(&outCol, "column", "date_diff", "Name of the added column")
	cmd.Flags().StringVar(&out, "out", "", "Write the result to a .csv, .xlsx or .parquet file")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
