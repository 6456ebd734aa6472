package dataset

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFrame(t *testing.T, records [][]string) dataframe.DataFrame {
	t.Helper()
	df, err := FromRecords(records)
	require.NoError(t, err)
	return df
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "first_name", CleanName("First Name"))
	assert.Equal(t, "total_usd", CleanName("  Total $ (USD) "))
	assert.Equal(t, "order_id", CleanName("__Order--ID__"))
	assert.Equal(t, "", CleanName("%%"))
}

func TestUniqueNames(t *testing.T) {
	got := UniqueNames([]string{"Name", "name", "", "NAME", "name_2"})
	assert.Equal(t, []string{"name", "name_2", "column_3", "name_3", "name_2_2"}, got)
}

func TestCleanNames(t *testing.T) {
	df := mustFrame(t, [][]string{
		{"First Name", "Order-ID"},
		{"ann", "7"},
	})

	out, err := CleanNames(df)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_name", "order_id"}, out.Names())
	assert.Equal(t, series.Int, out.Types()[1])
	assert.Equal(t, []string{"First Name", "Order-ID"}, df.Names(), "input must not change")
}

func TestRemoveEmpty(t *testing.T) {
	df := mustFrame(t, [][]string{
		{"a", "blank", "c"},
		{"1", "", "x"},
		{"", "", ""},
		{"3", "", "z"},
	})

	out, err := RemoveEmpty(df)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, out.Names())
	assert.Equal(t, 2, out.Nrow())
	assert.Equal(t, []string{"x", "z"}, out.Col("c").Records())
}

func TestRemoveEmpty_AllBlank(t *testing.T) {
	df := mustFrame(t, [][]string{{"a"}, {""}, {""}})

	out, err := RemoveEmpty(df)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Nrow())
	assert.Equal(t, 0, out.Ncol())
}

func TestConcat_Diagonal(t *testing.T) {
	left := mustFrame(t, [][]string{{"a", "b"}, {"1", "x"}, {"2", "y"}})
	right := mustFrame(t, [][]string{{"b", "c"}, {"z", "3.5"}})

	out, err := Concat([]dataframe.DataFrame{left, right}, Diagonal)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, out.Names())
	assert.Equal(t, 3, out.Nrow())
	assert.Equal(t, []string{"x", "y", "z"}, out.Col("b").Records())
	assert.True(t, out.Col("a").Elem(2).IsNA())
	assert.True(t, out.Col("c").Elem(0).IsNA())
	assert.Equal(t, series.Int, out.Col("a").Type())
	assert.InDelta(t, 3.5, out.Col("c").Elem(2).Float(), 1e-9)
}

func TestConcat_DiagonalTypeConflictBecomesString(t *testing.T) {
	left := mustFrame(t, [][]string{{"id"}, {"1"}})
	right := mustFrame(t, [][]string{{"id"}, {"A-1"}})

	out, err := Concat([]dataframe.DataFrame{left, right}, Diagonal)
	require.NoError(t, err)
	assert.Equal(t, series.String, out.Col("id").Type())
	assert.Equal(t, []string{"1", "A-1"}, out.Col("id").Records())
}

func TestConcat_DiagonalIntAndFloatBecomeFloat(t *testing.T) {
	left := mustFrame(t, [][]string{{"v"}, {"1"}, {"2"}})
	right := mustFrame(t, [][]string{{"v", "note"}, {"1.5", "late"}})

	out, err := Concat([]dataframe.DataFrame{left, right}, Diagonal)
	require.NoError(t, err)
	assert.Equal(t, series.Float, out.Col("v").Type())
	assert.Equal(t, []float64{1, 2, 1.5}, out.Col("v").Float())

	mixed := mustFrame(t, [][]string{{"v"}, {"n/a"}})
	out, err = Concat([]dataframe.DataFrame{right, mixed}, Diagonal)
	require.NoError(t, err)
	assert.Equal(t, series.String, out.Col("v").Type())
	assert.Equal(t, []string{"1.5", "n/a"}, out.Col("v").Records())
}

func TestConcat_Vertical(t *testing.T) {
	left := mustFrame(t, [][]string{{"a", "b"}, {"1", "x"}})
	right := mustFrame(t, [][]string{{"b", "a"}, {"y", "2"}})

	out, err := Concat([]dataframe.DataFrame{left, right}, Vertical)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, out.Col("a").Records())

	other := mustFrame(t, [][]string{{"a", "c"}, {"1", "x"}})
	_, err = Concat([]dataframe.DataFrame{left, other}, Vertical)
	assert.Error(t, err)
}

func TestConcat_Errors(t *testing.T) {
	_, err := Concat(nil, Diagonal)
	assert.Error(t, err)

	_, err = ParseConcatHow("sideways")
	assert.Error(t, err)

	how, err := ParseConcatHow("Vertical")
	require.NoError(t, err)
	assert.Equal(t, Vertical, how)
}

func TestDictFromColumns(t *testing.T) {
	df := mustFrame(t, [][]string{
		{"code", "name"},
		{"NY", "New York"},
		{"CA", "California"},
		{"NY", "New York State"},
	})

	got, err := DictFromColumns(df, "code", "name")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"NY": "New York State", "CA": "California"}, got)

	_, err = DictFromColumns(df, "code", "missing")
	assert.Error(t, err)
}

func TestZFill(t *testing.T) {
	assert.Equal(t, "0000000042", ZFill("42", 10))
	assert.Equal(t, "-0042", ZFill("-42", 5))
	assert.Equal(t, "123456", ZFill("123456", 3))
}

func TestFillAndRetainLeadingZero(t *testing.T) {
	df, err := FromRecords([][]string{{"zip", "city"}, {"501", "Holtsville"}, {"", "Nowhere"}})
	require.NoError(t, err)

	filled, err := FillLeadingZero(df, 5, "zip")
	require.NoError(t, err)
	assert.Equal(t, "00501", filled.Col("zip").Elem(0).String())
	assert.True(t, filled.Col("zip").Elem(1).IsNA())
	assert.Equal(t, series.String, filled.Col("zip").Type())

	retained, err := RetainLeadingZero(filled, "zip")
	require.NoError(t, err)
	assert.Equal(t, `="00501"`, retained.Col("zip").Elem(0).String())

	_, err = FillLeadingZero(df, 0, "zip")
	assert.Error(t, err)
	_, err = RetainLeadingZero(df, "nope")
	assert.Error(t, err)
}

func TestFlagColumn(t *testing.T) {
	df := mustFrame(t, [][]string{{"status"}, {"open"}, {"closed"}, {"void"}, {""}})

	out, err := FlagColumn(df, "status", "is_done", "closed", "void")
	require.NoError(t, err)

	flags := out.Col("is_done")
	assert.Equal(t, series.Bool, flags.Type())
	assert.Equal(t, []string{"false", "true", "true", "false"}, flags.Records())
}

func TestDiff(t *testing.T) {
	left := mustFrame(t, [][]string{{"id", "v"}, {"1", "a"}, {"2", "b"}, {"3", "c"}})
	right := mustFrame(t, [][]string{{"id", "v"}, {"2", "changed"}, {"4", "d"}})

	byID, err := Diff(left, right, "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, byID.Col("id").Records())

	allCols, err := Diff(left, right)
	require.NoError(t, err)
	assert.Equal(t, 3, allCols.Nrow())

	none, err := Diff(left, left, "id")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Nrow())
	assert.Equal(t, left.Names(), none.Names())
}

func TestDateDiff(t *testing.T) {
	df := mustFrame(t, [][]string{
		{"opened", "closed"},
		{"2024-01-05", "2024-01-08"},
		{"2024-01-06", "2024-01-07"},
		{"2024-01-01", "2024-01-05"},
		{"bad", "2024-01-05"},
	})

	cal, err := DateDiff(df, DateDiffOptions{StartCol: "opened", EndCol: "closed"})
	require.NoError(t, err)
	diff := cal.Col("date_diff")
	assert.Equal(t, series.Int, diff.Type())
	assert.Equal(t, []string{"3", "1", "4"}, diff.Subset([]int{0, 1, 2}).Records())
	assert.True(t, diff.Elem(3).IsNA())

	biz, err := DateDiff(df, DateDiffOptions{
		StartCol:    "opened",
		EndCol:      "closed",
		OutputCol:   "working_days",
		Calculation: "Business Days",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "0", "5"}, biz.Col("working_days").Subset([]int{0, 1, 2}).Records())

	_, err = DateDiff(df, DateDiffOptions{StartCol: "opened", EndCol: "closed", Calculation: "fortnights"})
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	df := mustFrame(t, [][]string{
		{"region", "sales", "units"},
		{"n", "10.0", "1"},
		{"s", "20.0", ""},
		{"e", "30.0", ""},
	})

	summaries, err := Describe(df)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	sales := summaries[0]
	assert.Equal(t, "sales", sales.Column)
	assert.Equal(t, 3, sales.Count)
	assert.InDelta(t, 20.0, sales.Mean, 1e-9)
	assert.InDelta(t, 10.0, sales.StdDev, 1e-9)
	assert.InDelta(t, 10.0, sales.Min, 1e-9)
	assert.InDelta(t, 20.0, sales.Median, 1e-9)
	assert.InDelta(t, 30.0, sales.Max, 1e-9)

	units := summaries[1]
	assert.Equal(t, 1, units.Count)
	assert.True(t, math.IsNaN(units.StdDev))

	frame := SummaryFrame(summaries)
	require.NoError(t, frame.Err)
	assert.Equal(t, 2, frame.Nrow())
	assert.Equal(t, []string{"sales", "units"}, frame.Col("column").Records())
}
