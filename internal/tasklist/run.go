package tasklist

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the view full-screen and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
