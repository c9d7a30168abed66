package tasklist

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/taskview/internal/model"
	"github.com/Makepad-fr/taskview/internal/testutil"
)

const testBase = "http://localhost:15000"

// run executes cmd and feeds every API result it produces back into the
// model until no further API work is pending. Spinner ticks and cursor
// blinks are dropped.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command chain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tasksLoadedMsg, refreshFailedMsg, taskCreatedMsg, taskChangedMsg, opFailedMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// loaded returns a view that has completed its initial load.
func loaded(t *testing.T, svc *testutil.FakeService) *Model {
	t.Helper()
	m := New(context.Background(), svc, testBase)
	run(t, m, m.Init())
	svc.ResetCalls()
	return m
}

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialLoad(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)

	m := New(context.Background(), svc, testBase)
	cmd := m.Init()
	if !m.Loading() {
		t.Fatal("Init should mark the view loading")
	}
	if !strings.Contains(m.View(), "Loading") {
		t.Error("loading indicator not rendered")
	}

	run(t, m, cmd)

	if m.Loading() {
		t.Error("still loading after initial load")
	}
	if m.Err() != "" {
		t.Errorf("Err = %q", m.Err())
	}
	tasks := m.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "buy milk" || tasks[0].Completed {
		t.Fatalf("tasks = %+v", tasks)
	}
	view := m.View()
	if !strings.Contains(view, "☐ buy milk") {
		t.Errorf("view missing unchecked row:\n%s", view)
	}
	if strings.Contains(view, "Error:") || strings.Contains(view, "Loading") {
		t.Errorf("view shows error or loading:\n%s", view)
	}
	if n := len(svc.CallsTo("list")); n != 1 {
		t.Errorf("list calls = %d, want 1", n)
	}
}

func TestRefreshKeepsServerOrder(t *testing.T) {
	svc := testutil.NewFakeService()
	for _, text := range []string{"c", "a", "b"} {
		svc.AddTask(text, false)
	}
	m := loaded(t, svc)

	var got []string
	for _, task := range m.Tasks() {
		got = append(got, task.Text)
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("order = %v, want c,a,b", got)
	}
}

func TestCreateTaskTrimsAndReloads(t *testing.T) {
	svc := testutil.NewFakeService()
	m := loaded(t, svc)

	m.SetDraft("  wash car  ")
	run(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	creates := svc.CallsTo("create")
	if len(creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(creates))
	}
	if got := creates[0].Task; got.Text != "wash car" || got.Completed || !got.ID.IsZero() {
		t.Errorf("create body = %+v", got)
	}
	if n := len(svc.CallsTo("list")); n != 1 {
		t.Errorf("list calls after create = %d, want 1", n)
	}
	if m.Draft() != "" {
		t.Errorf("draft = %q, want cleared", m.Draft())
	}
	if tasks := m.Tasks(); len(tasks) != 1 || tasks[0].Text != "wash car" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestCreateTaskAddAction(t *testing.T) {
	svc := testutil.NewFakeService()
	m := loaded(t, svc)

	m.SetDraft("call mom")
	run(t, m, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))

	if n := len(svc.CallsTo("create")); n != 1 {
		t.Fatalf("create calls = %d, want 1", n)
	}
}

func TestCreateTaskBlankIsNoop(t *testing.T) {
	for _, draft := range []string{"", "   ", "\t\n"} {
		svc := testutil.NewFakeService()
		m := loaded(t, svc)
		m.SetDraft(draft)
		before := m.Draft()

		if cmd := m.CreateTask(); cmd != nil {
			t.Errorf("CreateTask(%q) returned a command", draft)
		}
		if calls := svc.Calls(); len(calls) != 0 {
			t.Errorf("CreateTask(%q) made calls: %+v", draft, calls)
		}
		if m.Draft() != before || m.Err() != "" || m.Loading() {
			t.Errorf("state changed for %q: draft=%q err=%q loading=%v", draft, m.Draft(), m.Err(), m.Loading())
		}
	}
}

func TestCreateTaskLongDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	m := loaded(t, svc)

	long := strings.Repeat("a", 2000)
	m.SetDraft(long)
	run(t, m, m.CreateTask())

	creates := svc.CallsTo("create")
	if len(creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(creates))
	}
	if got := len(creates[0].Task.Text); got != len(long) {
		t.Errorf("created text length = %d, want %d", got, len(long))
	}
}

func TestCreateTaskFailureKeepsDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	m := loaded(t, svc)
	svc.CreateErr = testutil.StatusError("POST", "/tasks", 422)

	m.SetDraft("wash car")
	run(t, m, m.CreateTask())

	if m.Err() != "POST /tasks -> 422" {
		t.Errorf("Err = %q", m.Err())
	}
	if m.Draft() != "wash car" {
		t.Errorf("draft = %q, want kept", m.Draft())
	}
	if n := len(svc.CallsTo("list")); n != 0 {
		t.Errorf("list calls after failed create = %d, want 0", n)
	}
	if m.Loading() {
		t.Error("loading after failed create")
	}
}

func TestToggleTaskSendsFlippedCopy(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	m := loaded(t, svc)

	orig := m.Tasks()[0]
	cmd := m.ToggleTask(orig)
	if m.Tasks()[0].Completed {
		t.Fatal("ToggleTask flipped the local copy")
	}
	run(t, m, cmd)

	updates := svc.CallsTo("update")
	if len(updates) != 1 {
		t.Fatalf("update calls = %d, want 1", len(updates))
	}
	body := updates[0].Task
	if !body.ID.Equal(orig.ID) || body.Text != "buy milk" || !body.Completed {
		t.Errorf("update body = %+v", body)
	}
	if n := len(svc.CallsTo("list")); n != 1 {
		t.Errorf("list calls after toggle = %d, want 1", n)
	}
	if !m.Tasks()[0].Completed {
		t.Error("reloaded task not completed")
	}
	if !strings.Contains(m.View(), "☑") {
		t.Error("view missing checked box")
	}
}

func TestToggleTaskFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	m := loaded(t, svc)
	svc.UpdateErr = errors.New("PUT /tasks/1: connection refused")

	run(t, m, m.ToggleTask(m.Tasks()[0]))

	if m.Err() == "" {
		t.Fatal("Err empty after failed toggle")
	}
	if m.Tasks()[0].Completed {
		t.Error("task flipped despite failure")
	}
	if n := len(svc.CallsTo("list")); n != 0 {
		t.Errorf("list calls after failed toggle = %d, want 0", n)
	}
	if m.Loading() {
		t.Error("loading after failed toggle")
	}
}

func TestDeleteTask(t *testing.T) {
	svc := testutil.NewFakeService()
	first := svc.AddTask("buy milk", false)
	svc.AddTask("wash car", false)
	m := loaded(t, svc)

	run(t, m, m.DeleteTask(first.ID))

	deletes := svc.CallsTo("delete")
	if len(deletes) != 1 || !deletes[0].ID.Equal(model.NumericID(1)) {
		t.Fatalf("delete calls = %+v", deletes)
	}
	tasks := m.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "wash car" {
		t.Errorf("tasks after delete = %+v", tasks)
	}
}

func TestDeleteTaskFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	m := loaded(t, svc)
	svc.DeleteErr = testutil.StatusError("DELETE", "/tasks/1", 500)

	run(t, m, m.DeleteTask(model.NumericID(1)))

	if m.Err() != "DELETE /tasks/1 -> 500" {
		t.Errorf("Err = %q", m.Err())
	}
	if len(m.Tasks()) != 1 {
		t.Errorf("tasks = %+v", m.Tasks())
	}
	if n := len(svc.CallsTo("list")); n != 0 {
		t.Errorf("list calls = %d, want 0", n)
	}
}

func TestRefreshFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	m := loaded(t, svc)
	svc.ListErr = testutil.StatusError("GET", "/tasks", 500)

	run(t, m, m.Refresh())

	if m.Err() != "GET /tasks -> 500" {
		t.Errorf("Err = %q", m.Err())
	}
	if m.Loading() {
		t.Error("still loading after failed refresh")
	}
	if len(m.Tasks()) != 1 || m.Tasks()[0].Text != "buy milk" {
		t.Errorf("tasks changed: %+v", m.Tasks())
	}
	want := "Error: GET /tasks -> 500 — is the backend running at " + testBase + "?"
	if !strings.Contains(m.View(), want) {
		t.Errorf("view missing %q:\n%s", want, m.View())
	}

	svc.ListErr = nil
	run(t, m, m.Refresh())
	if m.Err() != "" {
		t.Errorf("Err not cleared by successful refresh: %q", m.Err())
	}
}

func TestLastResponseWins(t *testing.T) {
	svc := testutil.NewFakeService()
	m := New(context.Background(), svc, testBase)

	older := tasksLoadedMsg{tasks: []model.Task{{ID: model.NumericID(1), Text: "old"}}}
	newer := tasksLoadedMsg{tasks: []model.Task{{ID: model.NumericID(1), Text: "new"}}}
	m.Update(newer)
	m.Update(older)

	if got := m.Tasks()[0].Text; got != "old" {
		t.Errorf("text = %q, want the last delivered response", got)
	}
}

func TestListKeys(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	svc.AddTask("wash car", false)
	m := loaded(t, svc)

	// Typing goes to the input while it has focus.
	press(m, runes("q"))
	if m.Draft() != "q" {
		t.Fatalf("draft = %q, want typed text", m.Draft())
	}
	m.SetDraft("")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	run(t, m, press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}))

	updates := svc.CallsTo("update")
	if len(updates) != 1 || updates[0].Task.Text != "wash car" || !updates[0].Task.Completed {
		t.Fatalf("update calls = %+v", updates)
	}

	run(t, m, press(m, runes("d")))
	deletes := svc.CallsTo("delete")
	if len(deletes) != 1 || !deletes[0].ID.Equal(model.NumericID(2)) {
		t.Fatalf("delete calls = %+v", deletes)
	}
	if len(m.Tasks()) != 1 {
		t.Errorf("tasks = %+v", m.Tasks())
	}

	svc.ResetCalls()
	run(t, m, press(m, runes("r")))
	if n := len(svc.CallsTo("list")); n != 1 {
		t.Errorf("reload list calls = %d, want 1", n)
	}

	cmd := press(m, runes("q"))
	if cmd == nil {
		t.Fatal("q in list returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q in list did not quit")
	}
}

func TestListKeysOnEmptyList(t *testing.T) {
	svc := testutil.NewFakeService()
	m := loaded(t, svc)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	if cmd := press(m, runes("d")); cmd != nil {
		t.Error("delete on empty list returned a command")
	}
	if cmd := press(m, runes("x")); cmd != nil {
		t.Error("toggle on empty list returned a command")
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("calls = %+v", svc.Calls())
	}
	if !strings.Contains(m.View(), "No tasks.") {
		t.Errorf("empty view:\n%s", m.View())
	}
}

func TestEscDoesNotQuit(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	m := loaded(t, svc)

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("esc in list quit the program")
		}
	}
	if m.focus != focusList {
		t.Errorf("focus = %v, want list", m.focus)
	}
}

func TestCtrlCQuitsFromInput(t *testing.T) {
	m := New(context.Background(), testutil.NewFakeService(), testBase)
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}
