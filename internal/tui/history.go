package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/kylemclaren/clockbar/internal/store"
)

// SessionsMarkdown builds a markdown table of clock sessions.
func SessionsMarkdown(sessions []*store.Session) string {
	var b strings.Builder
	b.WriteString("# Clock sessions\n\n")
	if len(sessions) == 0 {
		b.WriteString("_No sessions recorded yet._\n")
		return b.String()
	}

	b.WriteString("| Task | Clocked in | Last seen | Duration |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escapeCell(s.TaskName),
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.LastSeenAt.Local().Format("15:04"),
			display.FormatElapsed(s.Duration()),
		)
	}
	return b.String()
}

// RemindersMarkdown builds a markdown table of reminders.
func RemindersMarkdown(reminders []*store.Reminder) string {
	var b strings.Builder
	b.WriteString("# Break reminders\n\n")
	if len(reminders) == 0 {
		b.WriteString("_No reminders sent yet._\n")
		return b.String()
	}

	b.WriteString("| Task | Sent | Worked | Delivered |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range reminders {
		delivered := "yes"
		if !r.Delivered {
			delivered = "no: " + escapeCell(r.Error)
		}
		fmt.Fprintf(&b, "| %s | %s | %d min | %s |\n",
			escapeCell(r.TaskName),
			r.FiredAt.Local().Format("2006-01-02 15:04"),
			r.ElapsedMinutes,
			delivered,
		)
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal.
func RenderMarkdown(md string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return renderer.Render(md)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SessionsTable renders sessions as a bordered terminal table.
func SessionsTable(sessions []*store.Session) string {
	t := newTable("TASK", "CLOCKED IN", "LAST SEEN", "DURATION")
	for _, s := range sessions {
		t.Row(
			s.TaskName,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.LastSeenAt.Local().Format("15:04"),
			display.FormatElapsed(s.Duration()),
		)
	}
	return t.String()
}

// RemindersTable renders reminders as a bordered terminal table.
func RemindersTable(reminders []*store.Reminder) string {
	t := newTable("TASK", "SENT", "WORKED", "DELIVERED")
	for _, r := range reminders {
		delivered := "yes"
		if !r.Delivered {
			delivered = "no"
		}
		t.Row(
			r.TaskName,
			r.FiredAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d min", r.ElapsedMinutes),
			delivered,
		)
	}
	return t.String()
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(primaryColor).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dividerStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
