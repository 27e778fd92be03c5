// Package goldmark parses generator output into candidate segments and
// renders evaluator verdicts as ANSI-styled terminal text, using goldmark
// for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/sketchui"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow, labelled with the segment they
// would fill in a candidate.
func Render(source string, width int, theme sketchui.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
