package db

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// TimestampLayout is how date and time values are rendered into frame cells
const TimestampLayout = "2006-01-02 15:04:05"

// ExecuteQuery runs a query, or every statement of a .sql file in order, and
// returns the number of statements executed.
func ExecuteQuery(ctx context.Context, conn Conn, queryOrFile string) (int, error) {
	text, err := LoadSQL(queryOrFile)
	if err != nil {
		return 0, err
	}

	statements := []string{text}
	if IsSQLFile(queryOrFile) {
		statements = SplitStatements(text)
	}

	executed := 0
	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return executed, errors.DatabaseError(fmt.Sprintf("statement %d failed", i+1), err)
		}
		executed++
	}

	if IsSQLFile(queryOrFile) {
		log.Printf("[DB] Executed %d statement(s) from %s", executed, queryOrFile)
	}
	return executed, nil
}

// Query runs a query and returns its rows as a frame. For a .sql file with
// several statements, all but the last are executed first and the last one
// supplies the rows. NULL becomes a missing cell.
func Query(ctx context.Context, conn Conn, queryOrFile string) (dataframe.DataFrame, error) {
	text, err := LoadSQL(queryOrFile)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	statements := SplitStatements(text)
	if len(statements) == 0 {
		return dataframe.DataFrame{}, errors.InvalidInput("empty query")
	}
	for i, stmt := range statements[:len(statements)-1] {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return dataframe.DataFrame{}, errors.DatabaseError(fmt.Sprintf("statement %d failed", i+1), err)
		}
	}

	rows, err := conn.QueryxContext(ctx, statements[len(statements)-1])
	if err != nil {
		return dataframe.DataFrame{}, errors.DatabaseError("query failed", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return dataframe.DataFrame{}, errors.DatabaseError("failed to read result columns", err)
	}
	types := make(map[string]series.Type)
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			if t, ok := frameType(ct.DatabaseTypeName()); ok && i < len(names) {
				types[names[i]] = t
			}
		}
	}

	records := [][]string{names}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return dataframe.DataFrame{}, errors.DatabaseError("failed to scan row", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellText(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, errors.DatabaseError("failed to iterate rows", err)
	}

	df, err := dataset.FromTypedRecords(records, types)
	if err != nil {
		return df, errors.Wrap(err, "failed to build frame from query result")
	}
	return df, nil
}

// frameType maps a database column type to a frame column type. Text
// columns stay strings so codes keep their leading zeros; unknown types and
// computed expressions are left to type detection.
func frameType(dbType string) (series.Type, bool) {
	base := strings.ToUpper(strings.TrimSpace(dbType))
	if i := strings.IndexAny(base, " ("); i >= 0 {
		base = base[:i]
	}
	switch base {
	case "BOOL", "BOOLEAN":
		return series.Bool, true
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "MEDIUMINT":
		return series.Int, true
	case "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "NUMERIC", "DECIMAL":
		return series.Float, true
	case "TEXT", "VARCHAR", "NVARCHAR", "CHAR", "CHARACTER", "BPCHAR":
		return series.String, true
	}
	return "", false
}

// cellText renders a scanned driver value as frame cell text
func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return dataset.NA
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(TimestampLayout)
	default:
		return fmt.Sprint(x)
	}
}
