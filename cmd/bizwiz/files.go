package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"bizwiz/adapters/parquet"
	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"
	"bizwiz/internal/filetools"
	"bizwiz/internal/textenc"

	"github.com/spf13/cobra"
)

func (a *app) newReadCmd() *cobra.Command {
	var (
		separate, cleanNames, removeEmpty bool
		how, out, sheet, encoding         string
		limit                             int
		stringsOnly                       bool
	)

	cmd := &cobra.Command{
		Use:   "read csv|excel|parquet path...",
		Short: "Read many files of one kind into a single table",
		Long: `Read every matching file (a directory contributes its top-level files) and stack the
results. Columns missing from some files are filled with blanks unless --how vertical.

Example: bizwiz read csv ./exports --clean-names --out combined.parquet
         bizwiz read excel "reports/*.xlsx" --separate --out ./split`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"csv", "excel", "parquet"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if how == "" {
				how = a.cfg.Files.ConcatHow
			}
			concat, err := dataset.ParseConcatHow(how)
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			opts := filetools.Options{
				Separate:    separate,
				How:         concat,
				CleanNames:  cleanNames,
				RemoveEmpty: removeEmpty,
				Workers:     a.cfg.Files.ReadWorkers,
				Sheet:       sheet,
			}
			if encoding != "" {
				opts.CSV.Encodings = []textenc.Encoding{textenc.Encoding(encoding)}
				opts.CSV.SkipDetect = true
			}
			opts.CSV.StringsOnly = stringsOnly

			var res *filetools.Result
			switch args[0] {
			case "csv":
				res, err = filetools.BulkReadCSV(cmd.Context(), args[1:], opts)
			case "excel":
				res, err = filetools.BulkReadExcel(cmd.Context(), args[1:], opts)
			case "parquet":
				res, err = filetools.BulkReadParquet(cmd.Context(), args[1:], opts)
			default:
				return errors.UnsupportedFormat(args[0])
			}
			if err != nil {
				return err
			}

			if !separate {
				return a.emit(res.Frame(), out, limit)
			}
			if out != "" {
				named := make([]parquet.Named, len(res.Frames))
				for i, df := range res.Frames {
					base := filepath.Base(res.Paths[i])
					named[i] = parquet.Named{Name: strings.TrimSuffix(base, filepath.Ext(base)), Frame: df}
				}
				written, err := parquet.ExportMulti(out, named)
				if err != nil {
					return err
				}
				a.success("Wrote %d parquet file(s) to %s", len(written), out)
				return nil
			}
			for i, df := range res.Frames {
				a.note("%s (%d rows)", res.Paths[i], df.Nrow())
				printFrame(a.out, df, limit)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&separate, "separate", false, "Keep one table per file")
	cmd.Flags().StringVar(&how, "how", "", "Stacking mode: vertical or diagonal; defaults to the configured mode")
	cmd.Flags().BoolVar(&cleanNames, "clean-names", false, "Convert column names to snake_case")
	cmd.Flags().BoolVar(&removeEmpty, "remove-empty", false, "Drop rows and columns that are entirely blank")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet to read; defaults to the first")
	cmd.Flags().StringVar(&encoding, "encoding", "", "CSV encoding; detected when unset")
	cmd.Flags().BoolVar(&stringsOnly, "strings", false, "Keep every CSV column as text")
	cmd.Flags().StringVar(&out, "out", "", "Output file (.csv, .xlsx, .parquet), or a directory with --separate")
	cmd.Flags().IntVar(&limit, "limit", defaultPreviewRows, "Rows to print when not writing a file; 0 prints all")
	return cmd
}

func (a *app) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe file",
		Short: "Summary statistics for every numeric column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			summaries, err := dataset.Describe(df)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				a.note("No numeric columns in %s", args[0])
				return nil
			}
			printFrame(a.out, dataset.SummaryFrame(summaries), 0)
			return nil
		},
	}
}

func (a *app) newParquetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parquet",
		Short: "Query and append parquet files",
	}

	var out string
	var limit int
	query := &cobra.Command{
		Use:   "query sql file",
		Short: "Run a SQL query against a parquet file",
		Long: `Load the file into an in-memory SQLite table and run the query against it.
The FROM clause may name the file or any table name; it is rewritten.

Example: bizwiz parquet query "SELECT region, SUM(amount) FROM t GROUP BY region" sales.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := parquet.Query(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emit(df, out, limit)
		},
	}
	query.Flags().StringVar(&out, "out", "", "Write the result to a .csv, .xlsx or .parquet file")
	query.Flags().IntVar(&limit, "limit", defaultPreviewRows, "Rows to print; 0 prints all")

	appendCmd := &cobra.Command{
		Use:   "append source target.parquet",
		Short: "Append rows from a file to a parquet file, creating it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(args[0])
			if err != nil {
				return err
			}
			if !strings.EqualFold(filepath.Ext(args[1]), ".parquet") {
				return errors.InvalidInput(fmt.Sprintf("target %s is not a .parquet file", args[1]))
			}
			if err := parquet.Append(df, args[1]); err != nil {
				return err
			}
			a.success("Appended %d row(s) to %s", df.Nrow(), args[1])
			return nil
		},
	}

	cmd.AddCommand(query, appendCmd)
	return cmd
}
