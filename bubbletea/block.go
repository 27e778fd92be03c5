package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// Block is a renderable element of the session log.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type Block interface {
	Update(tea.Msg) (Block, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
// Sent by the root model when the user presses Tab on a focused block.
type ToggleMsg struct{}

// blockSeparator returns the spacing between two consecutive blocks.
// A new instruction or iteration starts after a blank line; result and
// error lines attach directly to the iteration they close.
func blockSeparator(_, curr Block) string {
	switch curr.(type) {
	case *ResultBlock, *ErrorBlock:
		return "\n"
	default:
		return "\n\n"
	}
}
