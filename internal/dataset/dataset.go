// Package dataset holds the in-memory table model the scrambler operates on:
// ordered column names plus rows of typed cells.
//
// Cell values are restricted to a small set of Go types so that every later
// stage (type conversion, sinks, provenance) can switch on them exhaustively:
//
//	nil        NULL
//	int64      integer
//	float64    float
//	bool       boolean
//	string     text and categorical labels
//	time.Time  date
//
// The package performs no transformation itself; it only loads, stores, and
// serializes data. Transformations always produce a new Dataset and leave the
// input untouched.
package dataset

// Dataset is an in-memory table. Columns are ordered; Rows[i][j] is the cell
// of row i under Columns[j]. Every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// New constructs a Dataset from the given columns and rows. The slices are
// used as-is; callers that need isolation should Clone.
func New(columns []string, rows [][]any) *Dataset {
	return &Dataset{Columns: columns, Rows: rows}
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex returns the position of the named column, or -1 when absent.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the dataset. Cell values themselves are value
// types (or immutable), so copying the row slices is sufficient.
func (d *Dataset) Clone() *Dataset {
	cols := make([]string, len(d.Columns))
	copy(cols, d.Columns)

	rows := make([][]any, len(d.Rows))
	for i, r := range d.Rows {
		cp := make([]any, len(r))
		copy(cp, r)
		rows[i] = cp
	}
	return &Dataset{Columns: cols, Rows: rows}
}

// Column returns a copy of the cells in column i, in row order. Returning a
// copy keeps callers from aliasing the dataset's backing rows.
func (d *Dataset) Column(i int) []any {
	out := make([]any, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row[i]
	}
	return out
}

// Sample returns up to limit cells from column i, in row order. limit <= 0
// means the whole column.
func (d *Dataset) Sample(i, limit int) []any {
	n := len(d.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]any, n)
	for r := 0; r < n; r++ {
		out[r] = d.Rows[r][i]
	}
	return out
}
