package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237"))

	dialogStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusPending   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	noticeSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	noticeErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	formErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	focusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Column widths in cells.
const (
	colTitle   = 28
	colComment = 36
	colStatus  = 10
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Task Manager "))
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.renderForm())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("tab: next field | space: toggle status | enter: save | esc: cancel"))
		return b.String()
	case modeConfirm:
		b.WriteString(dialogStyle.Render("Confirm Delete\n\nAre you sure you want to delete this task?\n\n[y] Yes   [n] No"))
		return b.String()
	}

	b.WriteString(m.renderSearch())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("  Loading tasks...\n")
	} else {
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	if m.notice != nil {
		b.WriteString("\n\n")
		b.WriteString(m.renderNotice())
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("a: add | e: edit | d: delete | /: search | 1/2/3: sort | s: page size | ←/→: page | q: quit"))

	return b.String()
}

func (m Model) renderSearch() string {
	if m.mode == modeSearch {
		return focusStyle.Render(m.search.View())
	}
	if m.search.Value() == "" {
		return helpStyle.Render(m.search.Prompt + m.search.Placeholder)
	}
	return m.search.Prompt + m.search.Value()
}

func (m Model) renderTable() string {
	var b strings.Builder

	header := fmt.Sprintf("  %s %s %s",
		pad(m.columnHeader(ColumnTitle), colTitle),
		pad(m.columnHeader(ColumnComment), colComment),
		pad(m.columnHeader(ColumnStatus), colStatus),
	)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	tasks := m.pageTasks()
	if len(tasks) == 0 {
		b.WriteString("  No data\n")
		return b.String()
	}

	for i, t := range tasks {
		row := fmt.Sprintf("%s %s ",
			pad(trimForCell(t.Title, colTitle), colTitle),
			pad(trimForCell(t.Description, colComment), colComment),
		)
		status := styleForStatus(t).Render(pad(t.StatusLabel(), colStatus))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+row) + status)
		} else {
			b.WriteString("  " + row + status)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) columnHeader(col SortColumn) string {
	name := col.String()
	if m.sort.Column != col {
		return name
	}
	switch m.sort.Direction {
	case Ascending:
		return name + " ▲"
	case Descending:
		return name + " ▼"
	}
	return name
}

func (m Model) renderFooter() string {
	total := len(m.visibleTasks())
	pages := PageCount(total, m.pageSize)
	page := ClampPage(m.page, total, m.pageSize)
	return fmt.Sprintf("  Total %d items   Page %d/%d   %d / page", total, page+1, pages, m.pageSize)
}

func (m Model) renderNotice() string {
	style := noticeSuccessStyle
	if m.notice.kind == noticeError {
		style = noticeErrorStyle
	}
	return "  " + style.Render(m.notice.text)
}

func (m Model) renderForm() string {
	f := m.form
	var b strings.Builder
	b.WriteString(headerStyle.Render(f.heading()))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		value string
	}{
		{"Title", f.title.View()},
		{"Comment", f.comment.View()},
		{"Status", "< " + statusLabel(f.completed) + " >"},
	}
	for i, field := range fields {
		label := fmt.Sprintf("%-8s", field.label)
		value := field.value
		if i == f.focus {
			label = focusStyle.Render(label)
		}
		b.WriteString(label + " " + value + "\n")
		if i == fieldTitle && f.err != "" {
			b.WriteString("         " + formErrorStyle.Render(f.err) + "\n")
		}
	}

	return dialogStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func styleForStatus(t models.Task) lipgloss.Style {
	if t.Completed {
		return statusCompleted
	}
	return statusPending
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func trimForCell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}
