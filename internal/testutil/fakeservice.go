// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/Makepad-fr/taskview/internal/api"
	"github.com/Makepad-fr/taskview/internal/model"
)

// Call records one request made against FakeService.
type Call struct {
	Op   string // "list", "create", "update", "delete"
	Task model.Task
	ID   model.ID
}

// FakeService is an in-memory implementation of api.Service for testing.
// Ids are assigned as increasing numbers, the way a store with integer
// keys would.
type FakeService struct {
	mu     sync.Mutex
	tasks  []model.Task
	nextID int64
	calls  []Call

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

// AddTask seeds a task and returns it with its assigned id.
func (f *FakeService) AddTask(text string, completed bool) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := model.Task{ID: model.NumericID(f.nextID), Text: text, Completed: completed}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns the stored tasks.
func (f *FakeService) Tasks() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Task(nil), f.tasks...)
}

// Calls returns every request made so far.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the requests made for one operation.
func (f *FakeService) CallsTo(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// List implements api.Service.
func (f *FakeService) List(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "list"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]model.Task{}, f.tasks...), nil
}

// Create implements api.Service.
func (f *FakeService) Create(ctx context.Context, task model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Task: task})
	if f.CreateErr != nil {
		return f.CreateErr
	}
	task.ID = model.NumericID(f.nextID)
	f.nextID++
	f.tasks = append(f.tasks, task)
	return nil
}

// Update implements api.Service.
func (f *FakeService) Update(ctx context.Context, task model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "update", Task: task, ID: task.ID})
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i, t := range f.tasks {
		if t.ID.Equal(task.ID) {
			f.tasks[i] = task
			return nil
		}
	}
	return notFound(http.MethodPut, task.ID)
}

// Delete implements api.Service.
func (f *FakeService) Delete(ctx context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "delete", ID: id})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID.Equal(id) {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound(http.MethodDelete, id)
}

func notFound(method string, id model.ID) error {
	return &api.Error{Method: method, Path: "/tasks/" + id.String(), Status: http.StatusNotFound}
}

// StatusError builds the error a status failure produces.
func StatusError(method, path string, status int) error {
	return &api.Error{Method: method, Path: path, Status: status}
}

var _ api.Service = (*FakeService)(nil)
