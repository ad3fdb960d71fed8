// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "sqlite"   (clinetl/internal/storage/sqlite)
//   - "postgres" (clinetl/internal/storage/postgres), alias "postgresql"
//   - "mysql"    (clinetl/internal/storage/mysql)
//   - "mssql"    (clinetl/internal/storage/mssql)
//
// Typical usage:
//
//	import _ "clinetl/internal/storage/all"
//
//	s, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "clinvar.db"})
package all

import (
	_ "clinetl/internal/storage/mssql"
	_ "clinetl/internal/storage/mysql"
	_ "clinetl/internal/storage/postgres"
	_ "clinetl/internal/storage/sqlite"
)
