package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sketchui"
)

var _ Block = (*ResultBlock)(nil)

// ResultBlock summarizes a terminated session.
type ResultBlock struct {
	result sketchui.Result
	styles Styles
}

// NewResultBlock creates a ResultBlock.
func NewResultBlock(r sketchui.Result, styles Styles) *ResultBlock {
	return &ResultBlock{result: r, styles: styles}
}

func (b *ResultBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *ResultBlock) View(width int) string {
	r := b.result
	var line string
	switch r.Termination {
	case sketchui.TerminationApproved:
		line = b.styles.Success.Render(fmt.Sprintf("✓ Approved after %s", plural(r.Iterations, "iteration")))
	case sketchui.TerminationAttemptLimit:
		line = b.styles.Error.Render(fmt.Sprintf("✗ Attempt limit reached after %s", plural(r.Attempts, "rejection")))
	default:
		line = b.styles.Muted.Render(string(r.Termination))
	}
	return lipgloss.NewStyle().Width(width).Render(line)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
