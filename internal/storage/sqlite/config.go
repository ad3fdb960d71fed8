// Package sqlite implements a SQLite-backed storage.Store.
package sqlite

import "time"

// Config holds SQLite store configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:clinvar.db?cache=shared"
	//   "clinvar.db" (interpreted by the driver)
	//   ":memory:"
	DSN string

	// BusyTimeout is applied with PRAGMA busy_timeout. Zero leaves the
	// driver default.
	BusyTimeout time.Duration
}
