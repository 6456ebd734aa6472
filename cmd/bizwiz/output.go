package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"bizwiz/adapters/csvfile"
	"bizwiz/adapters/excel"
	"bizwiz/adapters/parquet"
	"bizwiz/internal/errors"

	"github.com/fatih/color"
	"github.com/go-gota/gota/dataframe"
	"github.com/olekukonko/tablewriter"
)

// defaultPreviewRows caps how many rows a frame prints with
const defaultPreviewRows = 20

func (a *app) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, format+"\n", args...)
}

func (a *app) note(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(a.out, format+"\n", args...)
}

// printFrame renders up to limit rows of df as a table; limit <= 0 prints all
func printFrame(w io.Writer, df dataframe.DataFrame, limit int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(df.Names())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	rows := df.Nrow()
	if limit > 0 && rows > limit {
		rows = limit
	}
	for i := 0; i < rows; i++ {
		row := make([]string, df.Ncol())
		for j := range row {
			if e := df.Elem(i, j); !e.IsNA() {
				row[j] = e.String()
			}
		}
		table.Append(row)
	}
	table.Render()

	if rows < df.Nrow() {
		fmt.Fprintf(w, "... %d more row(s)\n", df.Nrow()-rows)
	}
}

// readFrame loads one file, picking the reader from its extension
func readFrame(path string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		res, err := csvfile.Read(path, csvfile.Options{})
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		return res.Frame, nil
	case ".xlsx", ".xlsm":
		return excel.Read(path, "")
	case ".parquet":
		return parquet.Read(path)
	}
	return dataframe.DataFrame{}, errors.UnsupportedFormat(filepath.Ext(path))
}

// writeFrame saves df to path, picking the writer from its extension
func writeFrame(df dataframe.DataFrame, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvfile.Write(df, path)
	case ".xlsx":
		return excel.ExportWorkbook(path, []excel.Sheet{{Name: "Sheet1", Frame: df}})
	case ".parquet":
		return parquet.Write(df, path)
	}
	return errors.UnsupportedFormat(filepath.Ext(path))
}

// emit writes df to out when set, otherwise prints a preview
func (a *app) emit(df dataframe.DataFrame, out string, limit int) error {
	if out == "" {
		printFrame(a.out, df, limit)
		return nil
	}
	if err := writeFrame(df, out); err != nil {
		return err
	}
	a.success("Wrote %d row(s) to %s", df.Nrow(), out)
	return nil
}
