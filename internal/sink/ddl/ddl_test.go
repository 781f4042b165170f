package ddl

import (
	"strings"
	"testing"

	"scramble/internal/schema"
)

// TestQuoteIdent verifies identifier quoting and escaping per dialect.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{name: "postgres simple", dialect: Postgres, in: "name", want: `"name"`},
		{name: "postgres with double quote", dialect: Postgres, in: `weird"name`, want: `"weird""name"`},
		{name: "sqlite simple", dialect: SQLite, in: "column_3", want: `"column_3"`},
		{name: "mssql simple", dialect: MSSQL, in: "name", want: "[name]"},
		{name: "mssql with bracket", dialect: MSSQL, in: "weird]id", want: "[weird]]id]"},
		{name: "mysql simple", dialect: MySQL, in: "name", want: "`name`"},
		{name: "mysql with backtick", dialect: MySQL, in: "weird`name", want: "`weird``name`"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := quoteIdent(tt.dialect, tt.in)
			if got != tt.want {
				t.Fatalf("quoteIdent(%q, %q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
			}
		})
	}
}

// TestQuoteFQN verifies quoting and splitting behavior for schema-qualified
// table names in quoteFQN.
func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{name: "simple table", dialect: Postgres, in: "users", want: `"users"`},
		{name: "schema and table", dialect: Postgres, in: "public.users", want: `"public"."users"`},
		{name: "with empty segments", dialect: Postgres, in: ".public..users.", want: `"public"."users"`},
		{name: "mssql qualified", dialect: MSSQL, in: "dbo.Users", want: "[dbo].[Users]"},
		{name: "mysql qualified", dialect: MySQL, in: "demo.users", want: "`demo`.`users`"},
		{name: "empty", dialect: Postgres, in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := quoteFQN(tt.dialect, tt.in)
			if got != tt.want {
				t.Fatalf("quoteFQN(%q, %q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
			}
		})
	}
}

// TestMapType verifies the full type table per dialect. Every tag maps to a
// non-empty type under every known dialect.
func TestMapType(t *testing.T) {
	t.Parallel()

	want := map[Dialect]map[schema.TypeTag]string{
		Postgres: {
			schema.Integer:     "BIGINT",
			schema.Float:       "DOUBLE PRECISION",
			schema.String:      "TEXT",
			schema.Boolean:     "BOOLEAN",
			schema.Date:        "DATE",
			schema.Categorical: "TEXT",
		},
		SQLite: {
			schema.Integer:     "INTEGER",
			schema.Float:       "REAL",
			schema.String:      "TEXT",
			schema.Boolean:     "INTEGER",
			schema.Date:        "TEXT",
			schema.Categorical: "TEXT",
		},
		MSSQL: {
			schema.Integer:     "BIGINT",
			schema.Float:       "FLOAT",
			schema.String:      "NVARCHAR(MAX)",
			schema.Boolean:     "BIT",
			schema.Date:        "DATE",
			schema.Categorical: "NVARCHAR(MAX)",
		},
		MySQL: {
			schema.Integer:     "BIGINT",
			schema.Float:       "DOUBLE",
			schema.String:      "TEXT",
			schema.Boolean:     "TINYINT(1)",
			schema.Date:        "DATE",
			schema.Categorical: "VARCHAR(255)",
		},
	}

	for d, table := range want {
		for _, tag := range schema.Tags() {
			got := MapType(d, tag)
			if got != table[tag] {
				t.Errorf("MapType(%q, %v) = %q, want %q", d, tag, got, table[tag])
			}
			if got == "" {
				t.Errorf("MapType(%q, %v) returned empty type", d, tag)
			}
		}
	}

	if got := MapType(Dialect("oracle"), schema.Integer); got != "" {
		t.Fatalf("MapType(oracle) = %q, want empty", got)
	}
}

// TestFromSchema verifies that a transformed schema maps onto a table
// definition with the schema's column order and nullability.
func TestFromSchema(t *testing.T) {
	t.Parallel()

	sc := schema.Schema{Columns: []schema.Column{
		{OriginalName: "city", CurrentName: "column_1", Type: schema.Categorical, Nullable: false, Position: 0},
		{OriginalName: "id", CurrentName: "column_2", Type: schema.String, Nullable: false, Position: 1},
		{OriginalName: "ratio", CurrentName: "column_3", Type: schema.Float, Nullable: true, Position: 2},
	}}

	td, err := FromSchema(Postgres, "public.scrambled", sc)
	if err != nil {
		t.Fatalf("FromSchema error: %v", err)
	}
	if td.FQN != "public.scrambled" {
		t.Fatalf("FQN = %q", td.FQN)
	}
	want := []ColumnDef{
		{Name: "column_1", SQLType: "TEXT", Nullable: false},
		{Name: "column_2", SQLType: "TEXT", Nullable: false},
		{Name: "column_3", SQLType: "DOUBLE PRECISION", Nullable: true},
	}
	if len(td.Columns) != len(want) {
		t.Fatalf("columns = %d, want %d", len(td.Columns), len(want))
	}
	for i, w := range want {
		if td.Columns[i] != w {
			t.Errorf("column[%d] = %+v, want %+v", i, td.Columns[i], w)
		}
	}
}

// TestFromSchema_Rejects covers input validation: unknown dialect, empty table
// name, and invalid schemas.
func TestFromSchema_Rejects(t *testing.T) {
	t.Parallel()

	sc := schema.Schema{Columns: []schema.Column{
		{OriginalName: "a", CurrentName: "a", Type: schema.Integer},
	}}

	if _, err := FromSchema(Dialect("oracle"), "t", sc); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	if _, err := FromSchema(Postgres, "  ", sc); err == nil {
		t.Fatalf("expected error for empty table name")
	}
	if _, err := FromSchema(Postgres, "t", schema.Schema{}); err == nil {
		t.Fatalf("expected error for empty schema")
	}
}

// TestBuildCreateTableSQLBasic verifies the rendered statement for a simple
// Postgres table with mixed nullability.
func TestBuildCreateTableSQLBasic(t *testing.T) {
	t.Parallel()

	def := TableDef{
		FQN: "public.scrambled",
		Columns: []ColumnDef{
			{Name: "column_1", SQLType: "BIGINT", Nullable: false},
			{Name: "column_2", SQLType: "TEXT", Nullable: true},
		},
	}

	got, err := BuildCreateTableSQL(Postgres, def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}

	want := "" +
		`CREATE TABLE IF NOT EXISTS "public"."scrambled" (` + "\n" +
		`  "column_1" BIGINT NOT NULL,` + "\n" +
		`  "column_2" TEXT` + "\n" +
		`);`

	if got != want {
		t.Fatalf("BuildCreateTableSQL() =\n%s\nwant:\n%s", got, want)
	}
}

// TestBuildCreateTableSQLMSSQLGuard verifies that the MSSQL statement wraps
// CREATE TABLE in an OBJECT_ID existence guard with bracket quoting.
func TestBuildCreateTableSQLMSSQLGuard(t *testing.T) {
	t.Parallel()

	def := TableDef{
		FQN: "dbo.scrambled",
		Columns: []ColumnDef{
			{Name: "column_1", SQLType: "BIGINT", Nullable: false},
		},
	}

	got, err := BuildCreateTableSQL(MSSQL, def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}

	if !strings.HasPrefix(got, "IF OBJECT_ID(N'[dbo].[scrambled]', N'U') IS NULL\nBEGIN\n") {
		t.Fatalf("missing OBJECT_ID guard:\n%s", got)
	}
	if !strings.Contains(got, "CREATE TABLE [dbo].[scrambled] (") {
		t.Fatalf("missing bracketed CREATE TABLE:\n%s", got)
	}
	if !strings.Contains(got, "[column_1] BIGINT NOT NULL") {
		t.Fatalf("missing column definition:\n%s", got)
	}
	if !strings.HasSuffix(got, "END;") {
		t.Fatalf("missing END:\n%s", got)
	}
}

// TestBuildCreateTableSQLErrors validates error handling and basic input
// validation in BuildCreateTableSQL.
func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
		def     TableDef
	}{
		{
			name:    "unknown dialect",
			dialect: Dialect("oracle"),
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT"}}},
		},
		{
			name:    "empty FQN",
			dialect: Postgres,
			def:     TableDef{FQN: "   ", Columns: []ColumnDef{{Name: "id", SQLType: "BIGINT"}}},
		},
		{
			name:    "no columns",
			dialect: Postgres,
			def:     TableDef{FQN: "public.users", Columns: nil},
		},
		{
			name:    "column empty name",
			dialect: Postgres,
			def: TableDef{FQN: "public.users", Columns: []ColumnDef{
				{Name: "id", SQLType: "BIGINT"},
				{Name: "   ", SQLType: "TEXT"},
			}},
		},
		{
			name:    "column missing SQLType",
			dialect: Postgres,
			def: TableDef{FQN: "public.users", Columns: []ColumnDef{
				{Name: "id", SQLType: ""},
			}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.dialect, tt.def)
			if err == nil {
				t.Fatalf("BuildCreateTableSQL(%+v) error = nil, want non-nil", tt.def)
			}
			if got != "" {
				t.Fatalf("BuildCreateTableSQL(%+v) SQL = %q, want empty string on error", tt.def, got)
			}
		})
	}
}

// BenchmarkBuildCreateTableSQLSmall measures BuildCreateTableSQL for a small
// table definition.
func BenchmarkBuildCreateTableSQLSmall(b *testing.B) {
	def := TableDef{
		FQN: "public.scrambled",
		Columns: []ColumnDef{
			{Name: "column_1", SQLType: "BIGINT"},
			{Name: "column_2", SQLType: "TEXT", Nullable: true},
			{Name: "column_3", SQLType: "DATE"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCreateTableSQL(Postgres, def); err != nil {
			b.Fatal(err)
		}
	}
}
