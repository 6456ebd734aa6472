package db

import (
	"context"
	"fmt"
	"log"
	"strings"

	"bizwiz/internal/dataset"
	"bizwiz/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	// DefaultChunkSize is the number of rows inserted per chunk
	DefaultChunkSize = 10000
	// DefaultVarcharLen is the width of untyped columns
	DefaultVarcharLen = 1000

	// maxBindParams keeps one INSERT under the bind parameter limits of
	// both Postgres (65535) and SQLite (32766).
	maxBindParams = 32000
)

// LoadOptions configures CreateTableFromFrame
type LoadOptions struct {
	// ChunkSize defaults to DefaultChunkSize
	ChunkSize int
	// GrantGroup, when set, is granted all privileges on the new table
	GrantGroup string
	// Typed creates bigint/double precision/boolean columns from the frame
	// types instead of varchar for everything
	Typed bool
	// VarcharLen defaults to DefaultVarcharLen
	VarcharLen int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.VarcharLen <= 0 {
		o.VarcharLen = DefaultVarcharLen
	}
	return o
}

// CreateTableFromFrame replaces table with the contents of df and returns
// the number of rows inserted. Column names are cleaned first. Missing
// cells are inserted as NULL.
func CreateTableFromFrame(ctx context.Context, conn Conn, df dataframe.DataFrame, table string, opts LoadOptions) (int, error) {
	opts = opts.withDefaults()
	if !ValidIdentifier(table) {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid table name %q", table))
	}
	if opts.GrantGroup != "" && !ValidIdentifier(opts.GrantGroup) {
		return 0, errors.InvalidInput(fmt.Sprintf("invalid group name %q", opts.GrantGroup))
	}
	if df.Err != nil {
		return 0, errors.Wrap(df.Err, "cannot load frame")
	}
	if df.Ncol() == 0 {
		return 0, errors.InvalidInput("frame has no columns")
	}

	df, err := dataset.CleanNames(df)
	if err != nil {
		return 0, errors.Wrap(err, "failed to clean column names")
	}
	names := df.Names()
	types := df.Types()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return 0, errors.DatabaseError(fmt.Sprintf("failed to drop table %s", table), err)
	}

	defs := make([]string, len(names))
	for i, n := range names {
		defs[i] = fmt.Sprintf("%s %s", quoteColumn(n), columnType(types[i], opts))
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, create); err != nil {
		return 0, errors.DatabaseError(fmt.Sprintf("failed to create table %s", table), err)
	}
	log.Printf("[DB] Created table %s with %d column(s)", table, len(names))

	inserted, err := insertChunks(ctx, conn, df, table, opts)
	if err != nil {
		return inserted, err
	}

	if opts.GrantGroup != "" {
		grant := fmt.Sprintf("GRANT ALL ON TABLE %s TO GROUP %s", table, opts.GrantGroup)
		if _, err := conn.ExecContext(ctx, grant); err != nil {
			return inserted, errors.DatabaseError(fmt.Sprintf("failed to grant access on %s", table), err)
		}
		log.Printf("[DB] Granted all on %s to group %s", table, opts.GrantGroup)
	}
	return inserted, nil
}

func insertChunks(ctx context.Context, conn Conn, df dataframe.DataFrame, table string, opts LoadOptions) (int, error) {
	names := df.Names()
	cols := make([]series.Series, len(names))
	quoted := make([]string, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
		quoted[i] = quoteColumn(n)
	}

	perStatement := opts.ChunkSize
	if limit := maxBindParams / len(names); limit < perStatement {
		perStatement = limit
	}
	if perStatement < 1 {
		perStatement = 1
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(quoted, ", "))

	total := df.Nrow()
	inserted := 0
	for start := 0; start < total; start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > total {
			end = total
		}
		for lo := start; lo < end; lo += perStatement {
			hi := lo + perStatement
			if hi > end {
				hi = end
			}
			placeholders := make([]string, 0, hi-lo)
			args := make([]interface{}, 0, (hi-lo)*len(names))
			for r := lo; r < hi; r++ {
				placeholders = append(placeholders, rowPlaceholder)
				for _, col := range cols {
					args = append(args, cellArg(col.Elem(r), opts.Typed))
				}
			}
			query := conn.Rebind(prefix + strings.Join(placeholders, ", "))
			if _, err := conn.ExecContext(ctx, query, args...); err != nil {
				return inserted, errors.DatabaseError(fmt.Sprintf("failed to insert rows %d-%d into %s", lo+1, hi, table), err)
			}
			inserted += hi - lo
		}
		log.Printf("[DB] Inserted rows %d-%d of %d into %s", start+1, end, total, table)
	}
	return inserted, nil
}

func columnType(t series.Type, opts LoadOptions) string {
	if opts.Typed {
		switch t {
		case series.Int:
			return "bigint"
		case series.Float:
			return "double precision"
		case series.Bool:
			return "boolean"
		}
	}
	return fmt.Sprintf("varchar(%d)", opts.VarcharLen)
}

// cellArg converts a frame cell to a bind argument
func cellArg(e series.Element, typed bool) interface{} {
	if e.IsNA() {
		return nil
	}
	if !typed {
		return e.String()
	}
	switch e.Type() {
	case series.Int:
		if v, err := e.Int(); err == nil {
			return int64(v)
		}
		return nil
	case series.Float:
		return e.Float()
	case series.Bool:
		if v, err := e.Bool(); err == nil {
			return v
		}
		return nil
	}
	return e.String()
}

func quoteColumn(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
