package storage

import (
	"context"
	"fmt"

	"clinetl/internal/ddl"
)

// EnsureTables creates every table in defs that does not exist yet, in order.
func EnsureTables(ctx context.Context, s Store, defs ...ddl.TableDef) error {
	for _, def := range defs {
		if err := s.EnsureTable(ctx, def); err != nil {
			return fmt.Errorf("ensure table %s: %w", def.FQN, err)
		}
	}
	return nil
}
