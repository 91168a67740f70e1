package tabular

import "strconv"

// RowData represents a single row of tabular data keyed by column header
type RowData map[string]string

// Table represents parsed tabular data with ordered headers
type Table struct {
	Headers []string
	Rows    []RowData
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}

// HasColumn reports whether the table has a column with the given header
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the raw string values of a column, one per row.
// Rows missing the column contribute an empty string.
func (t *Table) Column(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// NumericColumn returns the parseable numeric values of a column.
// Empty and non-numeric cells are skipped.
func (t *Table) NumericColumn(name string) []float64 {
	var values []float64
	for _, row := range t.Rows {
		cell, exists := row[name]
		if !exists || cell == "" {
			continue
		}
		if val, err := strconv.ParseFloat(cell, 64); err == nil {
			values = append(values, val)
		}
	}
	return values
}
