package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/todosync/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames content using the current theme.
func Panel(content string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(content)
}

// Header is the "Todos ✔ n • n Total n" line plus the active filter.
func Header(todos []model.Todo, f model.Filter) string {
	t := Current()
	d, p := model.Stats(todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d  %s",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(todos),
		t.Muted.Render("["+f.String()+"]"),
	)
}

// TodoLine renders one todo as "<box> <title>  #id".
func TodoLine(td model.Todo) string {
	t := Current()
	box, title := t.Muted.Render(t.BoxUnchecked), td.Title
	if td.Completed {
		box, title = t.Success.Render(t.BoxChecked), t.Done.Render(td.Title)
	}
	return fmt.Sprintf("%s %s  %s", box, title, t.Muted.Render(fmt.Sprintf("#%d", td.ID)))
}

// ListLines renders todos flat, or grouped by pending/done.
func ListLines(todos []model.Todo, group bool) []string {
	t := Current()
	if !group {
		return flatLines(todos)
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	lines = append(lines, flatLines(model.Apply(todos, model.FilterActive))...)
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	lines = append(lines, flatLines(model.Apply(todos, model.FilterCompleted))...)
	return lines
}

// maxTitleWidth is measured in terminal cells, not bytes.
const maxTitleWidth = 80

func flatLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{Current().Muted.Render("(none)")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		td.Title = ansi.Truncate(td.Title, maxTitleWidth, "...")
		out = append(out, TodoLine(td))
	}
	return out
}

// Out and Err are where OK and Fail print; tests swap them.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

func OK(msg string)   { fmt.Fprintln(Out, Current().Success.Render(Current().SymDone+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(Err, Current().Error.Render(Current().SymFail+" "+msg)) }
