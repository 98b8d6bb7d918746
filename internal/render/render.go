// Package render formats tables, backups and messages for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Markdown renders content with glamour, falling back to the raw text if the
// renderer cannot be built.
func Markdown(content string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// DashboardHeader is the markdown intro shown above a client's table.
func DashboardHeader(clientID string, rows int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Dashboard for Client: %s\n\n", clientID)
	fmt.Fprintf(&sb, "%d row(s). Edit with `sheetkeep edit --client %s` or `sheetkeep set --client %s <row> <column> <value>`.\n", rows, clientID, clientID)
	return Markdown(sb.String())
}

func Field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func Success(msg string) string {
	return successStyle.Render(msg)
}

func Info(msg string) string {
	return infoStyle.Render(msg)
}

func Warn(msg string) string {
	return warnStyle.Render(msg)
}

func Header(title string) string {
	return headerStyle.Render(title)
}
