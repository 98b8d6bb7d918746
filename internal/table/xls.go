package table

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// maxXLSRows bounds how many rows are pulled from a legacy workbook.
const maxXLSRows = 100000

// ReadXLS parses the first worksheet of a legacy BIFF (.xls) workbook. Legacy
// workbooks carry no reliable cell types, so every value is inferred with
// ParseValue.
func ReadXLS(r io.ReadSeeker) (*Table, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidFormat)
	}
	return fromStrings(wb.ReadAllCells(maxXLSRows), ParseValue), nil
}

// fromStrings builds a table from a header row followed by data rows.
func fromStrings(rows [][]string, parse func(string) any) *Table {
	if len(rows) == 0 {
		return &Table{}
	}
	t := &Table{Columns: append([]string(nil), rows[0]...)}
	for _, row := range rows[1:] {
		cells := make([]any, len(row))
		for i, s := range row {
			cells[i] = parse(s)
		}
		t.Rows = append(t.Rows, cells)
	}
	t.normalize()
	return t
}
