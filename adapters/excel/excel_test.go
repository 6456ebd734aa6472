package excel

import (
	"path/filepath"
	"testing"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportWorkbook_RoundTrip(t *testing.T) {
	sales, err := dataset.FromRecords([][]string{
		{"region", "revenue", "units"},
		{"North", "1200.5", "10"},
		{"South", "980.25", ""},
	})
	require.NoError(t, err)
	people, err := dataset.FromRecords([][]string{{"name"}, {"Ann"}, {"Bob"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, ExportWorkbook(path, []Sheet{
		{Name: "Sales", Frame: sales},
		{Name: "People", Frame: people},
	}))

	sheets, err := NewReader(path).Sheets()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "People"}, sheets)

	first, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "revenue", "units"}, first.Names())
	assert.Equal(t, 2, first.Nrow())
	assert.Equal(t, series.Float, first.Col("revenue").Type())
	assert.InDelta(t, 980.25, first.Col("revenue").Elem(1).Float(), 1e-9)
	assert.True(t, first.Col("units").Elem(1).IsNA())

	second, err := Read(path, "People")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, second.Col("name").Records())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	width, err := f.GetColWidth("Sales", "A")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, width, minColWidth)
}

func TestReadSheet_PadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{" id ", "note", "extra"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "first"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{2}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	df, err := Read(path, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "note", "extra"}, df.Names())
	assert.Equal(t, 2, df.Nrow())
	assert.True(t, df.Col("note").Elem(1).IsNA())
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	path := filepath.Join(t.TempDir(), "one.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = Read(path, "Nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestExportWorkbook_Validation(t *testing.T) {
	df, err := dataset.FromRecords([][]string{{"a"}, {"1"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bad.xlsx")

	assert.Error(t, ExportWorkbook(path, nil))
	assert.Error(t, ExportWorkbook(path, []Sheet{{Name: "bad/name", Frame: df}}))
	assert.Error(t, ExportWorkbook(path, []Sheet{{Name: "this sheet name is far too long to fit", Frame: df}}))
	assert.Error(t, ExportWorkbook(path, []Sheet{{Name: "Dup", Frame: df}, {Name: "dup", Frame: df}}))
}

func TestAutofitWidth(t *testing.T) {
	assert.Equal(t, minColWidth, autofitWidth(1))
	assert.Equal(t, 22.0, autofitWidth(20))
	assert.Equal(t, maxColWidth, autofitWidth(500))
}
