package sketchui

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Instruction int // Instruction echo accent
	Thinking    int // Model thinking text
	Progress    int // Iteration headers, spinner
	Error       int // Error messages, rejected verdicts
	Success     int // Approved verdicts
	Muted       int // Status bar, placeholders
	CodeBg      int // Code block background
	Accent      int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Instruction: 4,
		Thinking:    8,
		Progress:    3,
		Error:       1,
		Success:     2,
		Muted:       8,
		CodeBg:      0,
		Accent:      5,
	}
}
