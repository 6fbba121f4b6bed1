package chattui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the chat view until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	if deps.Events == nil {
		deps.Events = NewEvents()
	}
	defer deps.Events.Close()

	model := NewModel(ctx, cfg, deps)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
