package layout

// Table is a parsed header row plus data rows of raw cells. It is not
// modified after creation; accessors return copies.
type Table struct {
	headers   []string
	rows      [][]string
	delimiter rune
}

// NewTable builds a Table from headers and rows. Short rows are padded.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{headers: append([]string(nil), headers...), delimiter: ','}
	t.rows = make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(headers))
		copy(r, row)
		t.rows[i] = r
	}
	return t
}

// Headers returns the column names in file order.
func (t *Table) Headers() []string { return append([]string(nil), t.headers...) }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Delimiter returns the delimiter the table was parsed with.
func (t *Table) Delimiter() rune { return t.delimiter }

// Cell returns the raw cell at row i, column j; out of range yields "".
func (t *Table) Cell(i, j int) string {
	if i < 0 || i >= len(t.rows) || j < 0 || j >= len(t.rows[i]) {
		return ""
	}
	return t.rows[i][j]
}

// Row maps header to raw value for row i. With duplicate headers the first column wins.
func (t *Table) Row(i int) map[string]string {
	out := make(map[string]string, len(t.headers))
	for j := len(t.headers) - 1; j >= 0; j-- {
		out[t.headers[j]] = t.Cell(i, j)
	}
	return out
}
