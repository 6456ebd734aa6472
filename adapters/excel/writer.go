package excel

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetNameLen = 31
	minColWidth     = 8.0
	maxColWidth     = 60.0
)

// Sheet pairs a worksheet name with the frame written to it
type Sheet struct {
	Name  string
	Frame dataframe.DataFrame
}

// ExportWorkbook writes each frame to its own worksheet, in order, with a bold
// header row and columns sized to their widest cell.
func ExportWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.InvalidInput("no sheets to export")
	}
	seen := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		if err := validateSheetName(s.Name); err != nil {
			return err
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			return errors.InvalidInput(fmt.Sprintf("duplicate sheet name %q", s.Name))
		}
		seen[key] = true
		if s.Frame.Err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, s.Frame.Err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("failed to rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}
		if err := writeFrame(f, s.Name, s.Frame, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[ExcelWriter] Workbook written: %s (%d sheets)", path, len(sheets))
	return nil
}

func writeFrame(f *excelize.File, sheet string, df dataframe.DataFrame, headerStyle int) error {
	names := df.Names()
	if len(names) == 0 {
		return nil
	}

	widths := make([]int, len(names))
	header := make([]interface{}, len(names))
	for j, n := range names {
		header[j] = n
		widths[j] = utf8.RuneCountInString(n)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	types := df.Types()
	for i := 0; i < df.Nrow(); i++ {
		row := make([]interface{}, len(names))
		for j, n := range names {
			e := df.Col(n).Elem(i)
			if e.IsNA() {
				continue
			}
			row[j] = cellValue(e, types[j])
			if w := utf8.RuneCountInString(e.String()); w > widths[j] {
				widths[j] = w
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(names), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for j, w := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, autofitWidth(w)); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(e series.Element, t series.Type) interface{} {
	switch t {
	case series.Int:
		if v, err := e.Int(); err == nil {
			return v
		}
	case series.Float:
		return e.Float()
	case series.Bool:
		if v, err := e.Bool(); err == nil {
			return v
		}
	}
	return e.String()
}

func autofitWidth(chars int) float64 {
	w := float64(chars) + 2
	if w < minColWidth {
		return minColWidth
	}
	if w > maxColWidth {
		return maxColWidth
	}
	return w
}

func validateSheetName(name string) error {
	if name == "" {
		return errors.InvalidInput("sheet name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxSheetNameLen {
		return errors.InvalidInput(fmt.Sprintf("sheet name %q exceeds %d characters", name, maxSheetNameLen))
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return errors.InvalidInput(fmt.Sprintf("sheet name %q contains an invalid character", name))
	}
	return nil
}
