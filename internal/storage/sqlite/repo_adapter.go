package sqlite

import (
	"context"
	"time"

	"clinetl/internal/storage"
)

// newStore is a test hook that points to NewStore by default.
// Tests may replace this variable to avoid real DB connections.
var newStore = NewStore

// defaultBusyTimeout applies to every store opened through the registry.
const defaultBusyTimeout = 5 * time.Second

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Store, error) {
		s, err := newStore(ctx, Config{DSN: cfg.DSN, BusyTimeout: defaultBusyTimeout})
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
