package domain

import (
	"errors"
	"fmt"
)

// Dataset is an ordered table of raw cell values. Columns keep their declared
// order and every row holds one cell per column. An empty cell is a missing value.
type Dataset struct {
	Columns []string
	Rows    [][]string
	// Target names the column that is excluded from embedding input
	// but kept for coloring and labelling.
	Target string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex returns the position of col, or -1 when it is absent.
func (d *Dataset) ColumnIndex(col string) int {
	for i, c := range d.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the dataset carries the named column.
func (d *Dataset) Has(col string) bool { return d.ColumnIndex(col) >= 0 }

// ColumnSet returns the column names as a lookup set.
func (d *Dataset) ColumnSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		set[c] = struct{}{}
	}
	return set
}

// Value returns the cell at (row, col).
func (d *Dataset) Value(row int, col string) (string, bool) {
	idx := d.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(d.Rows) {
		return "", false
	}
	return d.Rows[row][idx], true
}

// Column returns a copy of every value of col in row order.
func (d *Dataset) Column(col string) ([]string, error) {
	idx := d.ColumnIndex(col)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column %q", col)
	}
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Features returns every column except the target, in declared order.
func (d *Dataset) Features() []string {
	out := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c == d.Target {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Validate checks that the table is rectangular, column names are unique and
// the target column, when set, is present.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return errors.New("dataset has no columns")
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, r := range d.Rows {
		if len(r) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(d.Columns))
		}
	}
	if d.Target != "" && !d.Has(d.Target) {
		return fmt.Errorf("target column %q not found", d.Target)
	}
	return nil
}

// Select returns a new dataset restricted to the given feature columns plus the
// target. Column order follows the source dataset. The receiver is not modified.
func (d *Dataset) Select(columns []string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, errors.New("no columns selected")
	}
	keep := make(map[string]struct{}, len(columns)+1)
	for _, c := range columns {
		if !d.Has(c) {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		keep[c] = struct{}{}
	}
	if d.Target != "" {
		keep[d.Target] = struct{}{}
	}
	var idxs []int
	out := &Dataset{Target: d.Target}
	for i, c := range d.Columns {
		if _, ok := keep[c]; ok {
			idxs = append(idxs, i)
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([][]string, len(d.Rows))
	for r, row := range d.Rows {
		cells := make([]string, len(idxs))
		for j, i := range idxs {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out, nil
}
