package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile parses a spreadsheet from disk, choosing the codec by extension.
// Trailing blank rows, which spreadsheet apps leave behind as formatted
// empty rows, are dropped.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(f)
	case ".xls":
		t, err = ReadXLS(f)
	case ".csv":
		t, err = ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q (expected .xlsx, .xls or .csv)", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	t.TrimBlankRows()
	return t, nil
}

// WriteFile writes t to path as xlsx or csv depending on the extension.
func WriteFile(path string, t *Table) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".csv" {
		return fmt.Errorf("%w: %q (expected .xlsx or .csv)", ErrUnsupported, ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if ext == ".csv" {
		err = WriteCSV(f, t)
	} else {
		err = WriteXLSX(f, t)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
