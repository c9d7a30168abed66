// Package tasklist is the interactive to-do view: it holds the task
// collection last received from the API, the draft input, the loading
// flag and the error line, and turns key presses into API calls.
//
// Every call runs as a tea.Cmd off the update loop; its result comes back
// as a message and is applied in Update, so state is only ever touched
// from the update loop. Mutations are followed by a full reload; nothing
// is patched locally.
package tasklist

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/taskview/internal/api"
	"github.com/Makepad-fr/taskview/internal/model"
	"github.com/Makepad-fr/taskview/internal/ui"
)

const (
	opCreate = "create"
	opToggle = "toggle"
	opDelete = "delete"

	defaultWidth  = 80
	defaultHeight = 24
)

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// Model is the Bubble Tea model for the task list.
type Model struct {
	svc  api.Service
	base string
	ctx  context.Context

	tasks      []model.Task
	loading    bool
	errMessage string

	list    list.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	focus   focusArea

	width, height int
}

// New builds the view over svc. base is the API root shown in the error
// line. ctx bounds every request the view makes; nil means Background.
func New(ctx context.Context, svc api.Service, base string) *Model {
	if ctx == nil {
		ctx = context.Background()
	}

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Add a task..."
	in.CharLimit = 0
	in.Focus()

	l := list.New(nil, itemDelegate{}, defaultWidth, defaultHeight)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.DisableQuitKeybindings()
	l.Styles.NoItems = ui.Current().Muted.PaddingLeft(2)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		svc:     svc,
		base:    base,
		ctx:     ctx,
		tasks:   []model.Task{},
		list:    l,
		input:   in,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
		focus:   focusInput,
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Tasks returns the tasks as last received from the server.
func (m *Model) Tasks() []model.Task { return m.tasks }

// Draft returns the pending new-task text.
func (m *Model) Draft() string { return m.input.Value() }

// SetDraft replaces the pending new-task text.
func (m *Model) SetDraft(s string) { m.input.SetValue(s) }

// Loading reports whether a reload is in flight.
func (m *Model) Loading() bool { return m.loading }

// Err returns the error line, empty when there is none.
func (m *Model) Err() string { return m.errMessage }

// Init loads the initial task collection.
func (m *Model) Init() tea.Cmd {
	return m.Refresh()
}

// Refresh marks the view loading, clears the error and fetches the full
// collection.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	m.errMessage = ""
	svc, ctx := m.svc, m.ctx
	fetch := func() tea.Msg {
		tasks, err := svc.List(ctx)
		if err != nil {
			return refreshFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// CreateTask sends the trimmed draft as a new task. A draft that trims to
// nothing sends no request and changes nothing.
func (m *Model) CreateTask() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.errMessage = ""
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.Create(ctx, model.NewTask(text)); err != nil {
			return opFailedMsg{op: opCreate, err: err}
		}
		return taskCreatedMsg{}
	}
}

// ToggleTask sends task back with its completion flipped. The local copy
// is left alone until the reload that follows.
func (m *Model) ToggleTask(task model.Task) tea.Cmd {
	m.errMessage = ""
	svc, ctx := m.svc, m.ctx
	body := task.Toggled()
	return func() tea.Msg {
		if err := svc.Update(ctx, body); err != nil {
			return opFailedMsg{op: opToggle, err: err}
		}
		return taskChangedMsg{op: opToggle}
	}
}

// DeleteTask removes the task with the given id.
func (m *Model) DeleteTask(id model.ID) tea.Cmd {
	m.errMessage = ""
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		if err := svc.Delete(ctx, id); err != nil {
			return opFailedMsg{op: opDelete, err: err}
		}
		return taskChangedMsg{op: opDelete}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loading = false
		m.setTasks(msg.tasks)
		return m, nil

	case refreshFailedMsg:
		m.loading = false
		m.errMessage = msg.err.Error()
		return m, nil

	case taskCreatedMsg:
		m.input.SetValue("")
		return m, m.Refresh()

	case taskChangedMsg:
		return m, m.Refresh()

	case opFailedMsg:
		m.errMessage = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add), key.Matches(msg, m.keys.AddAlt):
		return m, m.CreateTask()
	case key.Matches(msg, m.keys.Blur), key.Matches(msg, m.keys.Focus):
		m.setFocus(focusList)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Edit):
		m.setFocus(focusInput)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Reload):
		return m, m.Refresh()
	case key.Matches(msg, m.keys.Toggle):
		if task, ok := m.selected(); ok {
			return m, m.ToggleTask(task)
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			return m, m.DeleteTask(task.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// setTasks replaces the collection with the server's, in server order.
func (m *Model) setTasks(tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	m.tasks = tasks
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t}
	}
	m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m *Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.list.SetDelegate(itemDelegate{focused: f == focusList})
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = max(10, w-10)
	m.help.Width = w - 4
	m.list.SetSize(max(10, w-4), max(3, h-chromeHeight))
}
