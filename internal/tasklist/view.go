package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/taskview/internal/model"
	"github.com/Makepad-fr/taskview/internal/ui"
)

// chromeHeight is everything View draws around the list: panel border,
// header, progress, input, status line, blank lines and help.
const chromeHeight = 11

// taskItem adapts model.Task to list.Item.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Text }

// itemDelegate renders one task per line: checkbox, text, delete mark.
type itemDelegate struct {
	focused bool
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(it.task, d.focused && index == m.Index()))
}

func renderRow(t model.Task, selected bool) string {
	th := ui.Current()
	box := th.Muted.Render(th.BoxUnchecked)
	text := t.Text
	if t.Completed {
		box = th.Success.Render(th.BoxChecked)
		text = th.Done.Render(text)
	}
	prefix := "  "
	if selected {
		prefix = th.Selected.Render(">") + " "
	}
	return fmt.Sprintf("%s%s %s  %s", prefix, box, text, th.Muted.Render(th.SymDelete))
}

// View implements tea.Model.
func (m *Model) View() string {
	th := ui.Current()
	done, pending := stats(m.tasks)

	var b strings.Builder
	fmt.Fprintf(&b, "%s   %s %d  %s %d  %s %d\n",
		th.Title.Render("To-Do"),
		th.Success.Render(th.SymDone), done,
		th.Pending.Render(th.SymPending), pending,
		th.Accent.Render("Total"), len(m.tasks),
	)
	b.WriteString(th.Muted.Render(ui.ProgressBar(done, done+pending, 28)))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading…\n")
	}
	if m.errMessage != "" {
		line := fmt.Sprintf("Error: %s — is the backend running at %s?", m.errMessage, m.base)
		b.WriteString(th.Error.Render(line) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	keys := m.keys.listHelp()
	if m.focus == focusInput {
		keys = m.keys.inputHelp()
	}
	b.WriteString(m.help.View(keys))

	return ui.PanelString(b.String())
}

func stats(tasks []model.Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
