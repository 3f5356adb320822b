package ml

import (
	"fmt"
)

// Frame は文字列カラムのみを持つ読み取り専用の表です。
type Frame struct {
	columns []string
	values  map[string][]string
	rows    int
}

// NewFrame builds a frame from columns in the given order. Every column must
// exist in data and all columns must have the same length.
func NewFrame(columns []string, data map[string][]string) (*Frame, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("frame requires at least one column")
	}

	values := make(map[string][]string, len(columns))
	rows := -1
	for _, name := range columns {
		col, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("column %q is missing", name)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("column %q is duplicated", name)
		}
		if rows >= 0 && len(col) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(col), rows)
		}
		rows = len(col)
		values[name] = append([]string(nil), col...)
	}

	return &Frame{
		columns: append([]string(nil), columns...),
		values:  values,
		rows:    rows,
	}, nil
}

// Len は行数を返します。
func (f *Frame) Len() int {
	return f.rows
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Value returns the cell at (row, column).
func (f *Frame) Value(row int, column string) (string, bool) {
	col, ok := f.values[column]
	if !ok || row < 0 || row >= len(col) {
		return "", false
	}
	return col[row], true
}
