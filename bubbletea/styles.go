package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sketchui"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Instruction lipgloss.Style
	Thinking    lipgloss.Style
	Progress    lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	CodeBg      lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t sketchui.Theme) Styles {
	return Styles{
		Instruction: lipgloss.NewStyle().Foreground(ansiColor(t.Instruction)).Bold(true),
		Thinking:    lipgloss.NewStyle().Foreground(ansiColor(t.Thinking)).Faint(true),
		Progress:    lipgloss.NewStyle().Foreground(ansiColor(t.Progress)),
		Error:       lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:     lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:       lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		CodeBg:      lipgloss.NewStyle().Background(ansiColor(t.CodeBg)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
