package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement for the
// given dialect.
//
// Rules:
//   - t.FQN must be non-empty; it may be schema-qualified and is quoted per
//     dialect at render time.
//   - Each column must have a non-empty Name and SQLType.
//   - NOT NULL is added when Nullable == false.
//   - Postgres, SQLite and MySQL use CREATE TABLE IF NOT EXISTS. T-SQL has no
//     such clause, so MSSQL wraps CREATE TABLE in an IF OBJECT_ID(...) IS NULL
//     guard.
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	if !d.valid() {
		return "", fmt.Errorf("ddl: unknown dialect %q", d)
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(d, name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	fqnQuoted := quoteFQN(d, fqn)

	if d == MSSQL {
		// Indent inner CREATE TABLE for readability.
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
			fqnQuoted,
			fqnQuoted,
			strings.Join(cols, ",\n    "),
		), nil
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		fqnQuoted,
		strings.Join(cols, ",\n  "),
	), nil
}

// quoteIdent quotes a single identifier segment for the dialect, escaping any
// embedded quoting character by doubling it:
//
//	Postgres/SQLite:  name       -> "name"
//	MSSQL:            weird]id   -> [weird]]id]
//	MySQL:            name       -> `name`
func quoteIdent(d Dialect, id string) string {
	switch d {
	case MSSQL:
		return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
	case MySQL:
		return "`" + strings.ReplaceAll(id, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
	}
}

// quoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"public.users" -> "public"."users"  (Postgres)
//	"dbo.Users"    -> [dbo].[Users]     (MSSQL)
//
// Empty segments are ignored.
func quoteFQN(d Dialect, fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(d, p))
	}
	return strings.Join(out, ".")
}
