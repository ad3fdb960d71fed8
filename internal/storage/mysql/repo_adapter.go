package mysql

import (
	"context"

	"clinetl/internal/storage"
)

// newStore is a test hook that points to NewStore by default.
// Tests may replace this variable to avoid real DB connections.
var newStore = NewStore

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		s, err := newStore(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
