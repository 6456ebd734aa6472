// Package db runs ad-hoc SQL against Postgres-protocol databases (including
// Redshift) and SQLite, moving results in and out of dataframes.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"bizwiz/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Conn is the subset of *sqlx.DB and *sqlx.Tx the helpers need
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	Rebind(query string) string
}

var (
	_ Conn = (*sqlx.DB)(nil)
	_ Conn = (*sqlx.Tx)(nil)
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens and pings a database. timeout bounds the ping; zero means no
// extra bound beyond ctx.
func Connect(ctx context.Context, driver, dsn string, timeout time.Duration) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported database driver %q", driver))
	}
	if dsn == "" {
		return nil, errors.ConfigInvalid("database DSN is required")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == DriverSQLite {
		// Each connection to an in-memory SQLite database is its own database.
		conn.SetMaxOpenConns(1)
	}

	log.Printf("[DB] Connected using %s driver", driver)
	return conn, nil
}

// OpenMemory opens a private in-memory SQLite database
func OpenMemory(ctx context.Context) (*sqlx.DB, error) {
	return Connect(ctx, DriverSQLite, ":memory:", 0)
}
