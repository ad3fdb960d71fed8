package postgres

import (
	"context"

	"clinetl/internal/storage"
)

// newStore is a test hook that points to NewStore by default.
// Tests may replace this variable to avoid real DB connections.
var newStore = NewStore

// init registers the "postgres" backend with the storage factory, so callers
// can obtain a Store via storage.New without importing this package.
func init() {
	factory := func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		s, err := newStore(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	storage.Register("postgres", factory)
	storage.Register("postgresql", factory)
}
