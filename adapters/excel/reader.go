package excel

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// Reader reads worksheets from an Excel workbook into dataframes
type Reader struct {
	filePath string
}

// NewReader creates a reader for the workbook at filePath
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// Read is a shorthand for NewReader(path).ReadSheet(sheet)
func Read(path, sheet string) (dataframe.DataFrame, error) {
	return NewReader(path).ReadSheet(sheet)
}

// Sheets lists the worksheet names in workbook order
func (r *Reader) Sheets() ([]string, error) {
	f, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadSheet reads one worksheet. An empty sheet name selects the first sheet.
// The first row is the header; shorter rows are padded to the header width.
func (r *Reader) ReadSheet(sheet string) (dataframe.DataFrame, error) {
	f, err := r.open()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, errors.NotFound(fmt.Sprintf("worksheet in %s", r.filePath))
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return dataframe.DataFrame{}, errors.NotFound(fmt.Sprintf("worksheet %q in %s", sheet, r.filePath))
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[ExcelReader] %s!%s read in %.2fms (%d rows)",
		r.filePath, sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) == 0 {
		return dataframe.DataFrame{}, errors.InvalidInput(fmt.Sprintf("sheet %s in %s has no header row", sheet, r.filePath))
	}

	return processRows(rows)
}

func (r *Reader) open() (*excelize.File, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("Excel file %s", r.filePath))
	}
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return f, nil
}

// processRows trims the header and pads every data row to the header width
func processRows(rows [][]string) (dataframe.DataFrame, error) {
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([][]string, 0, len(rows))
	records = append(records, header)
	for _, row := range rows[1:] {
		rec := make([]string, len(header))
		for j := 0; j < len(header) && j < len(row); j++ {
			rec[j] = strings.TrimSpace(row[j])
		}
		records = append(records, rec)
	}

	return dataset.FromRecords(records)
}
