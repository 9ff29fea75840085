// Package all wires all built-in storage backends into the storage registry.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their dialects with the storage package. After that the following kinds are
// available to storage.Open:
//
//   - "sqlite"   (recordmap/internal/storage/sqlite)
//   - "postgres" (recordmap/internal/storage/postgres)
//   - "mysql"    (recordmap/internal/storage/mysql)
//   - "mssql"    (recordmap/internal/storage/mssql)
//
// Typical usage:
//
//	import (
//	    _ "recordmap/internal/storage/all"
//
//	    "recordmap/internal/storage"
//	)
//
//	s, err := storage.Open(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:"}, log)
//	if err != nil {
//	    // handle error
//	}
//	defer s.Close(true)
//
// A binary that needs only a subset can import the backend packages directly.
package all

import (
	_ "recordmap/internal/storage/mssql"
	_ "recordmap/internal/storage/mysql"
	_ "recordmap/internal/storage/postgres"
	_ "recordmap/internal/storage/sqlite"
)
