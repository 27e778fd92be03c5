package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sketchui"
)

var _ Block = (*ErrorBlock)(nil)

// ErrorBlock renders a session-aborting error, with a hint for the error
// classes the user can act on.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	content := b.styles.Error.Render(wrap.Render(fmt.Sprintf("Error: %v", b.err)))
	if hint := errorHint(b.err); hint != "" {
		content += "\n" + b.styles.Muted.Render(wrap.Render(hint))
	}
	return content
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, sketchui.ErrConfiguration):
		return "Check the provider API key and model."
	case errors.Is(err, sketchui.ErrGeneratorFailure):
		return "The generator failed; press Enter to start a new session."
	default:
		return ""
	}
}
