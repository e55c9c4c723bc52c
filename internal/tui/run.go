package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todosync/internal/store"
	"github.com/idilsaglam/todosync/internal/syncer"
)

// Run starts the interactive view and blocks until the user quits. Every
// store transition is forwarded into the program while it runs.
func Run(ctx context.Context, svc *syncer.Service, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, svc), opts...)

	unsubscribe := svc.Store().Subscribe(func(snap store.Snapshot) {
		p.Send(snapshotMsg{snap: snap})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
