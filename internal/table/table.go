// Package table holds the tabular content passed between upload, dashboard,
// edit and save, plus the spreadsheet codecs that produce and consume it.
package table

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var (
	// ErrInvalidFormat indicates content that could not be parsed as a table.
	ErrInvalidFormat = errors.New("invalid spreadsheet format")
	// ErrUnsupported indicates a file extension no codec handles.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrUnsupportedValue indicates a cell value the codecs cannot serialize.
	ErrUnsupportedValue = errors.New("unsupported cell value")
)

// Table is a header row plus data rows. Cells are nil, string, int64,
// float64, bool or time.Time. No schema is enforced.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given column names.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row, padding or truncating nothing.
func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Width is the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// ColumnIndex returns the index of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row, col or nil when the row is short.
func (t *Table) Cell(row, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// Set assigns a value by zero-based row index and column name. A row index
// equal to the row count appends a new row.
func (t *Table) Set(row int, column string, value any) error {
	col := t.ColumnIndex(column)
	if col < 0 {
		return fmt.Errorf("unknown column %q", column)
	}
	if row < 0 || row > len(t.Rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", row+1, len(t.Rows))
	}
	if row == len(t.Rows) {
		t.Rows = append(t.Rows, make([]any, len(t.Columns)))
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], nil)
	}
	t.Rows[row][col] = value
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}

// Equal reports whether both tables have the same columns and cell values.
// Missing trailing cells compare equal to nil, numbers compare by value
// (int64(2) equals 2.0) and times by instant.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !reflect.DeepEqual(normColumns(t.Columns), normColumns(o.Columns)) {
		return false
	}
	if len(t.Rows) != len(o.Rows) {
		return false
	}
	width := len(t.Columns)
	for i := range t.Rows {
		w := max(width, len(t.Rows[i]), len(o.Rows[i]))
		for j := 0; j < w; j++ {
			if !cellEqual(t.Cell(i, j), o.Cell(i, j)) {
				return false
			}
		}
	}
	return true
}

func cellEqual(a, b any) bool {
	if x, ok := asFloat(a); ok {
		y, ok := asFloat(b)
		return ok && x == y
	}
	if x, ok := a.(time.Time); ok {
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// TrimBlankRows drops trailing rows whose cells are all nil.
func (t *Table) TrimBlankRows() {
	n := len(t.Rows)
	for n > 0 && blankRow(t.Rows[n-1]) {
		n--
	}
	t.Rows = t.Rows[:n]
}

func blankRow(row []any) bool {
	for _, v := range row {
		if v != nil {
			return false
		}
	}
	return true
}

func normColumns(c []string) []string {
	if len(c) == 0 {
		return nil
	}
	return c
}

// normalize pads every row to the column count and names blank headers.
func (t *Table) normalize() {
	for i, c := range t.Columns {
		if c == "" {
			t.Columns[i] = unnamed(i)
		}
	}
	for i := range t.Rows {
		for len(t.Rows[i]) < len(t.Columns) {
			t.Rows[i] = append(t.Rows[i], nil)
		}
		for len(t.Columns) < len(t.Rows[i]) {
			t.Columns = append(t.Columns, unnamed(len(t.Columns)))
		}
	}
}

func unnamed(i int) string {
	return "Unnamed: " + strconv.Itoa(i)
}

// Layouts used to print and parse date cells.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ParseValue parses a string as int64, then float64, then a DateLayout or
// DateTimeLayout time (UTC), falling back to the string itself. The empty
// string becomes nil.
func ParseValue(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	for _, layout := range []string{DateLayout, DateTimeLayout} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return s
}

// FormatValue renders a cell for display and CSV export.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(DateLayout)
		}
		return x.Format(DateTimeLayout)
	default:
		return fmt.Sprint(x)
	}
}

func checkValue(v any) error {
	switch v.(type) {
	case nil, string, int64, int, float64, bool, time.Time:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
