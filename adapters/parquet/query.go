package parquet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bizwiz/adapters/db"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

var fromTarget = regexp.MustCompile(`(?is)^\s*(select\s.+?\sfrom)\s+(\S+)(.*)$`)

// Query runs a SELECT against the rows of a Parquet file. Whatever the query
// names after FROM is replaced by the file's contents, loaded into a private
// in-memory SQLite table. Column names are cleaned the same way as
// db.CreateTableFromFrame cleans them.
func Query(ctx context.Context, sqlQuery, path string) (dataframe.DataFrame, error) {
	table := "parquet_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	rewritten, err := RewriteFrom(sqlQuery, table)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df, err := Read(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	conn, err := db.OpenMemory(ctx)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer conn.Close()

	if _, err := db.CreateTableFromFrame(ctx, conn, df, table, db.LoadOptions{Typed: true}); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to stage %s: %w", path, err)
	}
	return db.Query(ctx, conn, rewritten)
}

// RewriteFrom replaces the first FROM target of a SELECT with table
func RewriteFrom(sqlQuery, table string) (string, error) {
	m := fromTarget.FindStringSubmatch(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";")))
	if m == nil {
		return "", errors.InvalidInput("query must be a SELECT with a FROM clause")
	}
	return m[1] + " " + table + m[3], nil
}
