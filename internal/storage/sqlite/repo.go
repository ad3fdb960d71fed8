package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clinetl/internal/storage/sqlstore"

	_ "modernc.org/sqlite"
)

// NewStore opens a SQLite database and returns a Store over it.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:clinvar.db?cache=shared"
//	"clinvar.db"
//
// The pool is limited to one connection: SQLite has a single writer, and an
// in-memory database exists only on the connection that created it.
func NewStore(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if cfg.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout = %d;", cfg.BusyTimeout.Milliseconds())
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: busy_timeout: %w", err)
		}
	}

	return sqlstore.New(db, dialect{}), nil
}
