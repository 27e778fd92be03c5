package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/ansi"
	"github.com/fwojciec/sketchui/goldmark"
	"github.com/rivo/uniseg"
)

var _ Block = (*IterationBlock)(nil)

// IterationBlock renders one generate/evaluate pair: a spinner while a
// collaborator call is in flight, the candidate (collapsed to a summary by
// default) and the rendered verdict.
type IterationBlock struct {
	n      int
	limit  int
	phase  sketchui.State
	theme  sketchui.Theme
	styles Styles
	spin   spinner.Model

	streamed  int // grapheme clusters received while generating
	thinking  bool
	candidate *sketchui.Candidate
	verdict   sketchui.Verdict
	attempts  int
	collapsed bool
}

// NewIterationBlock creates the block for iteration n. A limit of zero hides
// the attempt budget.
func NewIterationBlock(n, limit int, theme sketchui.Theme, styles Styles) *IterationBlock {
	return &IterationBlock{
		n:         n,
		limit:     limit,
		phase:     sketchui.StateGenerating,
		theme:     theme,
		styles:    styles,
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Progress)),
		collapsed: true,
	}
}

// Tick starts the block's spinner.
func (b *IterationBlock) Tick() tea.Msg {
	return b.spin.Tick()
}

// Iteration returns the iteration number.
func (b *IterationBlock) Iteration() int { return b.n }

// SetPhase moves the block to the given controller state.
func (b *IterationBlock) SetPhase(s sketchui.State) {
	b.phase = s
}

// AppendText counts a streamed text delta.
func (b *IterationBlock) AppendText(delta string) {
	b.streamed += uniseg.GraphemeClusterCount(delta)
}

// AppendThinking marks that the model is reasoning.
func (b *IterationBlock) AppendThinking(string) {
	b.thinking = true
}

// SetCandidate records the parsed candidate.
func (b *IterationBlock) SetCandidate(c sketchui.Candidate) {
	b.candidate = &c
}

// SetVerdict records the classified verdict and the attempt count after it.
func (b *IterationBlock) SetVerdict(v sketchui.Verdict, attempts int) {
	b.verdict = v
	b.attempts = attempts
}

// Busy reports whether a collaborator call is in flight.
func (b *IterationBlock) Busy() bool {
	switch b.phase {
	case sketchui.StateGenerating:
		return b.candidate == nil
	case sketchui.StateEvaluating:
		return b.verdict == nil
	default:
		return false
	}
}

func (b *IterationBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	switch msg := msg.(type) {
	case ToggleMsg:
		if b.candidate != nil {
			b.collapsed = !b.collapsed
		}
	case spinner.TickMsg:
		if !b.Busy() {
			return b, nil
		}
		var cmd tea.Cmd
		b.spin, cmd = b.spin.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b *IterationBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	lines := []string{b.styles.Accent.Render(fmt.Sprintf("Iteration %d", b.n))}

	if b.candidate == nil {
		status := "Generating candidate"
		if b.thinking && b.streamed == 0 {
			status = "Thinking"
		}
		if b.streamed > 0 {
			status += b.styles.Muted.Render(fmt.Sprintf(" (%d chars)", b.streamed))
		}
		lines = append(lines, b.spin.View()+" "+status)
		return strings.Join(lines, "\n")
	}

	lines = append(lines, b.candidateView(width))

	switch {
	case b.verdict != nil:
		lines = append(lines, b.verdictHeader())
		if text := strings.TrimSpace(goldmark.Render(ansi.Sanitize(b.verdict.Text()), width, b.theme)); text != "" {
			lines = append(lines, text)
		}
	case b.phase == sketchui.StateEvaluating:
		lines = append(lines, b.spin.View()+" Evaluating candidate")
	}
	return wrap.Render(strings.Join(lines, "\n"))
}

func (b *IterationBlock) candidateView(width int) string {
	c := b.candidate
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	summary := fmt.Sprintf("%s Candidate: html %s · css %s · js %s",
		indicator, lineCount(c.Markup), lineCount(c.Style), lineCount(c.Script))
	header := b.styles.Progress.Render(summary)
	if c.Empty() {
		header += b.styles.Error.Render(" (no code blocks found)")
	}
	if b.collapsed || c.Empty() {
		return header
	}
	return header + "\n" + strings.TrimRight(goldmark.Render(candidateMarkdown(*c), width, b.theme), "\n")
}

func (b *IterationBlock) verdictHeader() string {
	if sketchui.IsApproved(b.verdict) {
		return b.styles.Success.Render("Approved")
	}
	label := fmt.Sprintf("Rejected (attempt %d)", b.attempts)
	if b.limit > 0 {
		label = fmt.Sprintf("Rejected (attempt %d/%d)", b.attempts, b.limit)
	}
	return b.styles.Error.Render(label)
}

// candidateMarkdown rebuilds fenced blocks from the non-empty segments so
// the goldmark renderer labels them.
func candidateMarkdown(c sketchui.Candidate) string {
	var sb strings.Builder
	for _, seg := range []struct{ lang, code string }{
		{"html", c.Markup},
		{"css", c.Style},
		{"javascript", c.Script},
	} {
		if seg.code == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "```%s\n%s\n```\n", seg.lang, seg.code)
	}
	return sb.String()
}

func lineCount(s string) string {
	if s == "" {
		return "–"
	}
	return fmt.Sprintf("%dL", strings.Count(s, "\n")+1)
}
