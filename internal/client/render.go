package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const EmptyPlaceholder = "No todos yet. Press a to add one."

type Styles struct {
	Title    lipgloss.Style
	Success  lipgloss.Style
	Pending  lipgloss.Style
	Muted    lipgloss.Style
	Done     lipgloss.Style
	Selected lipgloss.Style
	Delete   lipgloss.Style
	Error    lipgloss.Style

	BoxChecked   string
	BoxUnchecked string
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Muted:    lipgloss.NewStyle().Faint(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Selected: lipgloss.NewStyle().Bold(true),
		Delete:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		BoxChecked:   "☑",
		BoxUnchecked: "☐",
	}
}

// PlainStyles renders without any escape codes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Success: plain, Pending: plain, Muted: plain,
		Done: plain, Selected: plain, Delete: plain, Error: plain,

		BoxChecked:   "[x]",
		BoxUnchecked: "[ ]",
	}
}

// Render draws the list with the row at cursor marked. It reads state and
// nothing else.
func Render(state *State, cursor int, styles Styles) string {
	if state.Len() == 0 {
		return styles.Muted.Render(EmptyPlaceholder)
	}

	var b strings.Builder
	for i, todo := range state.todos {
		prefix := "  "
		if i == cursor {
			prefix = styles.Selected.Render("> ")
		}

		box := styles.Muted.Render(styles.BoxUnchecked)
		title := todo.Title
		if todo.Completed {
			box = styles.Success.Render(styles.BoxChecked)
			title = styles.Done.Render(title)
		}

		fmt.Fprintf(&b, "%s%s %s  %s\n", prefix, box, title, styles.Delete.Render("✖"))
	}

	b.WriteString("\n")
	b.WriteString(RenderStats(state.Stats(), styles))
	return b.String()
}

func RenderStats(stats Stats, styles Styles) string {
	return fmt.Sprintf("%s %d | %s %d | %s %d",
		styles.Title.Render("Total:"), stats.Total,
		styles.Success.Render("Completed:"), stats.Completed,
		styles.Pending.Render("Pending:"), stats.Pending,
	)
}
