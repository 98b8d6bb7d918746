package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Sheet1"

// blankRowHeight is set on rows with no values so the row element is kept in
// the sheet and ReadXLSX returns it.
const blankRowHeight = 15

// ReadXLSX parses the first worksheet of an xlsx workbook. The first row is
// the header. Every row element in the sheet becomes a row, including blank
// ones at the end.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidFormat)
	}
	rows, err := readRawRows(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidFormat, sheet, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	cr, err := newCellReader(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	t := &Table{Columns: append([]string(nil), rows[0]...)}
	for rowIdx, row := range rows[1:] {
		cells := make([]any, len(row))
		for colIdx, raw := range row {
			v, err := cr.value(colIdx+1, rowIdx+2, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
			}
			cells[colIdx] = v
		}
		t.Rows = append(t.Rows, cells)
	}
	t.normalize()
	return t, nil
}

// readRawRows streams the sheet with the row iterator. Unlike GetRows it
// keeps trailing rows that have no values.
func readRawRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		cols, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		rows = append(rows, cols)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return rows, nil
}

// cellReader converts raw cell strings using the stored cell type and number
// format, so text such as "007" stays text, numeric cells come back as
// numbers and date-formatted numbers come back as time.Time.
type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newCellReader(f *excelize.File, sheet string) (*cellReader, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	return &cellReader{
		f:          f,
		sheet:      sheet,
		date1904:   props.Date1904 != nil && *props.Date1904,
		dateStyles: make(map[int]bool),
	}, nil
}

func (c *cellReader) value(col, row int, raw string) (any, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := c.f.GetCellType(c.sheet, name)
	if err != nil {
		return nil, err
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return raw, nil
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return ts, nil
		}
		return ParseValue(raw), nil
	}
	if raw == "" {
		return nil, nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		isDate, err := c.isDateCell(name)
		if err != nil {
			return nil, err
		}
		if isDate {
			return excelize.ExcelDateToTime(serial, c.date1904)
		}
	}
	return ParseValue(raw), nil
}

func (c *cellReader) isDateCell(name string) (bool, error) {
	idx, err := c.f.GetCellStyle(c.sheet, name)
	if err != nil {
		return false, err
	}
	if isDate, ok := c.dateStyles[idx]; ok {
		return isDate, nil
	}
	// A workbook without a usable style table formats everything as General.
	isDate := false
	if style, err := c.f.GetStyle(idx); err == nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	c.dateStyles[idx] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format id shows a date or
// time, including the East Asian locale date ids.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) ||
		(id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormatCode reports whether a custom format code contains date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case 'y', 'm', 'd', 'h', 's':
			return true
		}
	}
	return false
}

// WriteXLSX serializes t into a single-sheet workbook. Nil cells are left
// empty, times get a date number format, and no index column is written.
func WriteXLSX(w io.Writer, t *Table) error {
	for _, row := range t.Rows {
		for _, v := range row {
			if err := checkValue(v); err != nil {
				return err
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	for col, name := range t.Columns {
		if err := setCell(f, col+1, 1, name); err != nil {
			return err
		}
	}
	for rowIdx, row := range t.Rows {
		if blankRow(row) {
			if err := f.SetRowHeight(SheetName, rowIdx+2, blankRowHeight); err != nil {
				return err
			}
			continue
		}
		for col, v := range row {
			if v == nil {
				continue
			}
			if err := setCell(f, col+1, rowIdx+2, v); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		return f.SetCellStr(SheetName, name, s)
	}
	return f.SetCellValue(SheetName, name, v)
}
