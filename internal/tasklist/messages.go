package tasklist

import "github.com/Makepad-fr/taskview/internal/model"

// Results of the four API calls, delivered back to Update.
type (
	tasksLoadedMsg struct{ tasks []model.Task }

	refreshFailedMsg struct{ err error }

	taskCreatedMsg struct{}

	// taskChangedMsg follows a successful toggle or delete.
	taskChangedMsg struct{ op string }

	// opFailedMsg is a failed create, toggle or delete.
	opFailedMsg struct {
		op  string
		err error
	}
)
