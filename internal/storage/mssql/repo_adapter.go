package mssql

import (
	"context"

	"clinetl/internal/storage"
)

// newStore is a test hook that points to NewStore by default.
// Tests may replace this variable to avoid real DB connections.
var newStore = NewStore

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		s, err := newStore(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
