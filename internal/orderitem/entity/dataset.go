package entity

// Cell is one value of a row. A missing cell carries no value at all,
// which is different from an empty string.
type Cell struct {
	Value   string
	Missing bool
}

// Text returns a cell holding value.
func Text(value string) Cell {
	return Cell{Value: value}
}

// Missing returns an empty cell.
func Missing() Cell {
	return Cell{Missing: true}
}

// Row holds one cell per dataset column, in column order.
type Row []Cell

// Dataset is an ordered table of rows sharing the same columns.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// ColumnIndex returns the position of the first column named name, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every name is a column of d.
func (d Dataset) HasColumns(names ...string) bool {
	for _, name := range names {
		if d.ColumnIndex(name) < 0 {
			return false
		}
	}
	return true
}
