package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ Block = (*InstructionBlock)(nil)

// InstructionBlock echoes the submitted instruction with a "> " prefix.
type InstructionBlock struct {
	text   string
	sketch string
	styles Styles
}

// NewInstructionBlock creates an InstructionBlock for a session over sketch.
func NewInstructionBlock(text, sketch string, styles Styles) *InstructionBlock {
	return &InstructionBlock{text: text, sketch: sketch, styles: styles}
}

func (b *InstructionBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *InstructionBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	content := wrap.Render(b.styles.Instruction.Render("> ") + b.text)
	if b.sketch == "" {
		return content
	}
	return content + "\n" + b.styles.Muted.Render(wrap.Render("  sketch: "+b.sketch))
}
