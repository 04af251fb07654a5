package models

// Table is a raw tabular source: one header row plus data rows.
// Rows may be ragged; missing trailing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the value at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
