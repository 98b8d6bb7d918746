package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses comma-separated text with a header row. TRUE and FALSE
// become booleans; numbers are inferred with ParseValue.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	return fromStrings(records, parseCSVValue), nil
}

// ReadCSVEdit parses CSV text that WriteCSV produced from base and a user
// then edited. Columns are matched to base by name and rows by position. A
// cell whose text still equals base's formatted cell keeps base's value, so
// untouched text like "007" or "TRUE" and untouched dates keep their type.
// Only changed cells are inferred as in ReadCSV.
func ReadCSVEdit(r io.Reader, base *Table) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	t := fromStrings(records, func(s string) any { return s })
	for j, name := range t.Columns {
		bj := base.ColumnIndex(name)
		for i, row := range t.Rows {
			text, _ := row[j].(string)
			if bj >= 0 && i < len(base.Rows) {
				if orig := base.Cell(i, bj); FormatValue(orig) == text {
					row[j] = orig
					continue
				}
			}
			row[j] = parseCSVValue(text)
		}
	}
	return t, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return records, nil
}

// WriteCSV writes the header and every row. Rows are padded to the header
// width.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		rec := make([]string, max(len(t.Columns), len(row)))
		for j := range rec {
			v := t.Cell(i, j)
			if err := checkValue(v); err != nil {
				return err
			}
			rec[j] = FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCSVValue(s string) any {
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return ParseValue(s)
}
