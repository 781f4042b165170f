// Package all wires all built-in sink backends into the sink factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories and DDL bootstrappers with the sink package.
//
// In other words, importing this package makes the following output kinds
// available at runtime:
//
//   - "csv"      (scramble/internal/sink/csvfile)
//   - "parquet"  (scramble/internal/sink/parquet)
//   - "postgres" (scramble/internal/sink/postgres)
//   - "mysql"    (scramble/internal/sink/mysql)
//   - "mssql"    (scramble/internal/sink/mssql)
//   - "sqlite"   (scramble/internal/sink/sqlite)
//
// Typical usage (in cmd/scramble/main.go or a similar wiring layer):
//
//	package main
//
//	import (
//	    "context"
//
//	    _ "scramble/internal/sink/all" // enable all built-in backends
//
//	    "scramble/internal/sink"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    cfg := sink.Config{
//	        Kind:   p.Output.Kind,
//	        Path:   p.Output.File.Path,
//	        DSN:    p.Output.DB.DSN,
//	        Table:  p.Output.DB.Table,
//	        Schema: transformed,
//	    }
//	    s, err := sink.New(ctx, cfg)
//	    if err != nil {
//	        // handle error
//	    }
//	    defer s.Close()
//
//	    // Optionally create the destination table if requested.
//	    if p.Output.DB.AutoCreateTable {
//	        if err := sink.EnsureTable(ctx, cfg, s); err != nil {
//	            // handle DDL error
//	        }
//	    }
//	}
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the sink abstraction
// rather than individual backends.
//
// Note: if you want a binary that supports only a subset of backends, define
// an alternative wiring package that imports only the required ones instead
// of this package.
package all

import (
	_ "scramble/internal/sink/csvfile"
	_ "scramble/internal/sink/mssql"
	_ "scramble/internal/sink/mysql"
	_ "scramble/internal/sink/parquet"
	_ "scramble/internal/sink/postgres"
	_ "scramble/internal/sink/sqlite"
)
