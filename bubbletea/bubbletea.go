// Package bubbletea provides a Bubble Tea TUI for sketch-to-UI sessions.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sketchui"
)

// RunFunc runs one session for the given instruction. The onEvent callback
// is called for each progress event. The function blocks until the session
// terminates or the context is cancelled.
type RunFunc func(ctx context.Context, instruction string, onEvent func(sketchui.Event)) (sketchui.Result, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg wraps a progress event for delivery to the Bubble Tea model.
type EventMsg struct {
	Event sketchui.Event
}

// DoneMsg signals that a session has finished.
type DoneMsg struct {
	Result sketchui.Result
	Err    error
}
