// Package parquet reads and writes flat Parquet files as dataframes and runs
// SQL over a single file.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	parquetgo "github.com/parquet-go/parquet-go"
)

// columnOrderKey stores the frame's column order in the file metadata,
// since group columns are laid out by name.
const columnOrderKey = "bizwiz.columns"

const readBatch = 256

// Named pairs an output name with a frame for ExportMulti
type Named struct {
	Name  string
	Frame dataframe.DataFrame
}

// Read loads a flat Parquet file into a frame
func Read(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return dataframe.DataFrame{}, errors.NotFound(fmt.Sprintf("Parquet file %s", path))
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to stat Parquet file: %w", err)
	}

	readStart := time.Now()
	file, err := parquetgo.OpenFile(f, info.Size())
	if err != nil {
		return dataframe.DataFrame{}, &errors.AppError{
			Code:    errors.CodeUnsupportedFormat,
			Message: fmt.Sprintf("%s is not a readable Parquet file", path),
			Cause:   err,
		}
	}

	cols, err := fileColumns(file)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", path, err)
	}

	header := make([]string, len(cols))
	types := make(map[string]series.Type, len(cols))
	byIndex := make(map[int]int, len(cols))
	for i, c := range cols {
		header[i] = c.name
		types[c.name] = c.typ
		byIndex[c.index] = i
	}

	records := [][]string{header}
	buf := make([]parquetgo.Row, readBatch)
	for _, rg := range file.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				record := make([]string, len(cols))
				for i := range record {
					record[i] = dataset.NA
				}
				for _, v := range row {
					if i, ok := byIndex[v.Column()]; ok {
						record[i] = valueText(v)
					}
				}
				records = append(records, record)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return dataframe.DataFrame{}, fmt.Errorf("failed to read rows from %s: %w", path, err)
			}
		}
		rows.Close()
	}

	df, err := dataset.FromTypedRecords(records, types)
	if err != nil {
		return df, errors.Wrap(err, fmt.Sprintf("failed to build frame from %s", path))
	}
	log.Printf("[ParquetReader] %s read in %.2fms (%d rows, %d columns)",
		path, float64(time.Since(readStart).Nanoseconds())/1e6, df.Nrow(), df.Ncol())
	return df, nil
}

// Write saves df as a zstd-compressed Parquet file, replacing path
func Write(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return fmt.Errorf("cannot write frame: %w", df.Err)
	}
	if df.Ncol() == 0 {
		return errors.InvalidInput("frame has no columns")
	}

	// written beside the target, then renamed into place
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create Parquet file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, df); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write Parquet file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write Parquet file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	log.Printf("[ParquetWriter] Wrote %d rows to %s", df.Nrow(), path)
	return nil
}

// Append stacks df under the rows already in path (diagonal concat) and
// rewrites the file. A missing file is created.
func Append(df dataframe.DataFrame, path string) error {
	existing, err := Read(path)
	if err != nil {
		if !errors.HasCode(err, errors.CodeNotFound) {
			return err
		}
		return Write(df, path)
	}

	merged, err := dataset.Concat([]dataframe.DataFrame{existing, df}, dataset.Diagonal)
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := Write(merged, path); err != nil {
		return err
	}
	log.Printf("[ParquetWriter] Appended %d rows to %s", df.Nrow(), path)
	return nil
}

// ExportMulti writes each frame to dir/<name>.parquet and returns the paths
// written. Any extension on a name is replaced.
func ExportMulti(dir string, frames []Named) ([]string, error) {
	if len(frames) == 0 {
		return nil, errors.InvalidInput("no frames to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	seen := make(map[string]bool, len(frames))
	paths := make([]string, 0, len(frames))
	for _, nf := range frames {
		base := filepath.Base(nf.Name)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if base == "" || base == "." || base == string(filepath.Separator) {
			return paths, errors.InvalidInput(fmt.Sprintf("invalid output name %q", nf.Name))
		}
		if seen[base] {
			return paths, errors.InvalidInput(fmt.Sprintf("duplicate output name %q", base))
		}
		seen[base] = true

		path := filepath.Join(dir, base+".parquet")
		if err := Write(nf.Frame, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type column struct {
	name  string
	index int
	typ   series.Type
}

// fileColumns lists the leaf columns of a flat file in frame order
func fileColumns(file *parquetgo.File) ([]column, error) {
	schema := file.Schema()
	var cols []column
	for _, path := range schema.Columns() {
		leaf, ok := schema.Lookup(path...)
		if !ok {
			continue
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, errors.UnsupportedFormat(fmt.Sprintf("repeated column %s", strings.Join(path, ".")))
		}
		cols = append(cols, column{
			name:  strings.Join(path, "."),
			index: leaf.ColumnIndex,
			typ:   kindType(leaf.Node.Type().Kind()),
		})
	}
	if len(cols) == 0 {
		return nil, errors.UnsupportedFormat("Parquet file without columns")
	}

	raw, ok := file.Lookup(columnOrderKey)
	if !ok {
		return cols, nil
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil || len(order) != len(cols) {
		return cols, nil
	}
	byName := make(map[string]column, len(cols))
	for _, c := range cols {
		byName[c.name] = c
	}
	ordered := make([]column, 0, len(order))
	for _, n := range order {
		c, ok := byName[n]
		if !ok {
			return cols, nil
		}
		ordered = append(ordered, c)
	}
	return ordered, nil
}

func kindType(k parquetgo.Kind) series.Type {
	switch k {
	case parquetgo.Boolean:
		return series.Bool
	case parquetgo.Int32, parquetgo.Int64:
		return series.Int
	case parquetgo.Float, parquetgo.Double:
		return series.Float
	}
	return series.String
}

func valueText(v parquetgo.Value) string {
	if v.IsNull() {
		return dataset.NA
	}
	switch v.Kind() {
	case parquetgo.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquetgo.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquetgo.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquetgo.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquetgo.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquetgo.ByteArray, parquetgo.FixedLenByteArray:
		return string(v.ByteArray())
	}
	return v.String()
}

// encode writes df as a single row group
func encode(w io.Writer, df dataframe.DataFrame) error {
	names := df.Names()
	types := df.Types()

	group := make(parquetgo.Group, len(names))
	for i, n := range names {
		group[n] = parquetgo.Optional(leafNode(types[i]))
	}
	schema := parquetgo.NewSchema("frame", group)

	order, err := json.Marshal(names)
	if err != nil {
		return err
	}
	writer := parquetgo.NewWriter(w, schema,
		parquetgo.Compression(&parquetgo.Zstd),
		parquetgo.KeyValueMetadata(columnOrderKey, string(order)),
	)

	indexes := make([]int, len(names))
	cols := make([]series.Series, len(names))
	for i, n := range names {
		leaf, ok := schema.Lookup(n)
		if !ok {
			return fmt.Errorf("column %s missing from schema", n)
		}
		indexes[i] = leaf.ColumnIndex
		cols[i] = df.Col(n)
	}

	rows := make([]parquetgo.Row, 0, readBatch)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := writer.WriteRows(rows); err != nil {
			return err
		}
		rows = rows[:0]
		return nil
	}

	for r := 0; r < df.Nrow(); r++ {
		row := make(parquetgo.Row, len(names))
		for i, col := range cols {
			row[indexes[i]] = cellValue(col.Elem(r)).Level(0, definitionLevel(col.Elem(r)), indexes[i])
		}
		rows = append(rows, row)
		if len(rows) == cap(rows) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return writer.Close()
}

func leafNode(t series.Type) parquetgo.Node {
	switch t {
	case series.Int:
		return parquetgo.Int(64)
	case series.Float:
		return parquetgo.Leaf(parquetgo.DoubleType)
	case series.Bool:
		return parquetgo.Leaf(parquetgo.BooleanType)
	}
	return parquetgo.String()
}

func definitionLevel(e series.Element) int {
	if cellMissing(e) {
		return 0
	}
	return 1
}

func cellMissing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	switch e.Type() {
	case series.Int:
		_, err := e.Int()
		return err != nil
	case series.Bool:
		_, err := e.Bool()
		return err != nil
	}
	return false
}

func cellValue(e series.Element) parquetgo.Value {
	if cellMissing(e) {
		return parquetgo.NullValue()
	}
	switch e.Type() {
	case series.Int:
		v, _ := e.Int()
		return parquetgo.Int64Value(int64(v))
	case series.Float:
		return parquetgo.DoubleValue(e.Float())
	case series.Bool:
		v, _ := e.Bool()
		return parquetgo.BooleanValue(v)
	}
	return parquetgo.ByteArrayValue([]byte(e.String()))
}
