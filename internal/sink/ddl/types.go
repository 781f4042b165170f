// Package ddl renders CREATE TABLE statements for scrambled output tables.
//
// One model serves every database backend: the column type catalog is a
// closed enum, so type mapping is a small total table per dialect rather than
// a per-backend package. Scrambled tables carry no primary keys or defaults
// (surrogate columns have no key semantics to preserve), so the column model
// stays minimal: name, SQL type, nullability.
package ddl

import (
	"fmt"
	"strings"

	"scramble/internal/schema"
)

// Dialect selects the SQL flavor used for type mapping, identifier quoting
// and existence guards.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
	MSSQL    Dialect = "mssql"
	MySQL    Dialect = "mysql"
)

func (d Dialect) valid() bool {
	switch d {
	case Postgres, SQLite, MSSQL, MySQL:
		return true
	}
	return false
}

// ColumnDef describes one column of a table to create.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef describes a table to create. FQN may be schema-qualified
// ("public.users"); quoting happens at render time.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// MapType maps a column type tag into a SQL column type for the dialect.
//
// The mapping is biased toward safe, widely-supported choices:
//   - integers are 64-bit everywhere
//   - floats map to the dialect's IEEE double type, never DECIMAL, so values
//     survive a round-trip bit-exactly
//   - SQLite has no boolean or date types; booleans become INTEGER (0/1) and
//     dates TEXT (ISO-8601)
//   - categorical columns are stored as text; MySQL gets VARCHAR(255) since
//     category label sets are small and TEXT columns cannot be indexed there
//
// Unknown dialects yield an empty type, which BuildCreateTableSQL rejects.
func MapType(d Dialect, tag schema.TypeTag) string {
	switch d {
	case Postgres:
		switch tag {
		case schema.Integer:
			return "BIGINT"
		case schema.Float:
			return "DOUBLE PRECISION"
		case schema.Boolean:
			return "BOOLEAN"
		case schema.Date:
			return "DATE"
		default:
			return "TEXT"
		}
	case SQLite:
		switch tag {
		case schema.Integer, schema.Boolean:
			return "INTEGER"
		case schema.Float:
			return "REAL"
		default:
			return "TEXT" // dates stored as ISO-8601 strings
		}
	case MSSQL:
		switch tag {
		case schema.Integer:
			return "BIGINT"
		case schema.Float:
			return "FLOAT"
		case schema.Boolean:
			return "BIT"
		case schema.Date:
			return "DATE"
		default:
			return "NVARCHAR(MAX)"
		}
	case MySQL:
		switch tag {
		case schema.Integer:
			return "BIGINT"
		case schema.Float:
			return "DOUBLE"
		case schema.Boolean:
			return "TINYINT(1)"
		case schema.Date:
			return "DATE"
		case schema.Categorical:
			return "VARCHAR(255)"
		default:
			return "TEXT"
		}
	}
	return ""
}

// FromSchema derives a TableDef for a transformed schema. Column order follows
// the schema's column order; nullability carries over unchanged.
func FromSchema(d Dialect, table string, sc schema.Schema) (TableDef, error) {
	if !d.valid() {
		return TableDef{}, fmt.Errorf("ddl: unknown dialect %q", d)
	}
	if strings.TrimSpace(table) == "" {
		return TableDef{}, fmt.Errorf("ddl: table name must not be empty")
	}
	if err := sc.Validate(); err != nil {
		return TableDef{}, err
	}

	cols := make([]ColumnDef, 0, sc.Len())
	for _, c := range sc.Columns {
		cols = append(cols, ColumnDef{
			Name:     c.CurrentName,
			SQLType:  MapType(d, c.Type),
			Nullable: c.Nullable,
		})
	}
	return TableDef{FQN: table, Columns: cols}, nil
}
