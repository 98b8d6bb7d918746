package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/rogersnm/sheetkeep/internal/store"
	sheet "github.com/rogersnm/sheetkeep/internal/table"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
	indexStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Sheet renders a client table with a 1-based row number column, the same
// numbering the set command accepts.
func Sheet(t *sheet.Table) string {
	if len(t.Columns) == 0 {
		return "Empty sheet."
	}
	headers := append([]string{"#"}, t.Columns...)
	rows := make([][]string, len(t.Rows))
	for i := range t.Rows {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(i+1))
		for j := range t.Columns {
			row = append(row, sheet.FormatValue(t.Cell(i, j)))
		}
		rows[i] = row
	}
	return renderTable(headers, rows, true)
}

func Backups(entries []store.BackupEntry) string {
	if len(entries) == 0 {
		return "No backups found."
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, e.Taken.Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(e.Size))}
	}
	return renderTable([]string{"Backup", "Taken", "Size"}, rows, false)
}

func Clients(ids []string) string {
	if len(ids) == 0 {
		return "No clients found. Upload one with: sheetkeep upload <file> --client <id>"
	}
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id}
	}
	return renderTable([]string{"Client"}, rows, false)
}

func renderTable(headers []string, rows [][]string, indexed bool) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			if indexed && col == 0 {
				return indexStyle
			}
			return cellStyle
		})
	return t.Render()
}
