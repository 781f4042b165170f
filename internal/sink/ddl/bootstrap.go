package ddl

import "context"

// Execer is the statement surface EnsureTable needs. sink.Sink satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the target table if it does not exist. It is idempotent
// and simply issues the rendered CREATE TABLE via the sink's Exec method.
func EnsureTable(ctx context.Context, d Dialect, e Execer, def TableDef) error {
	sql, err := BuildCreateTableSQL(d, def)
	if err != nil {
		return err
	}
	return e.Exec(ctx, sql)
}
