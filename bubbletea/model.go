package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sketchui"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Option configures a Model.
type Option func(*Model)

// WithInstruction pre-fills the instruction input.
func WithInstruction(s string) Option {
	return func(m *Model) {
		m.Input.SetValue(s)
	}
}

// WithAttemptLimit shows rejections against the given attempt budget.
func WithAttemptLimit(n int) Option {
	return func(m *Model) {
		m.limit = n
	}
}

// Model is the Bubble Tea model for the sketchui TUI.
type Model struct {
	// Input is the instruction input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable session log. Exported for test access.
	Viewport viewport.Model

	run    RunFunc
	sketch string
	limit  int
	theme  sketchui.Theme
	styles Styles

	blocks     []Block
	blockFocus int // index of focused iteration block (-1 = none)
	current    *IterationBlock

	running bool
	cancel  context.CancelFunc
	eventCh chan sketchui.Event
	doneCh  chan DoneMsg
	result  *sketchui.Result
	err     error
	ready   bool
}

// New creates a new TUI Model that runs sessions over the sketch at
// sketchRef.
func New(run RunFunc, sketchRef string, theme sketchui.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe the UI to generate..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:      ti,
		run:        run,
		sketch:     sketchRef,
		theme:      theme,
		styles:     NewStyles(theme),
		blockFocus: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Running returns whether a session is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last session, if any.
func (m Model) Err() error { return m.err }

// Result returns the result of the last completed session.
func (m Model) Result() (sketchui.Result, bool) {
	if m.result == nil {
		return sketchui.Result{}, false
	}
	return *m.result, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		var cmd tea.Cmd
		m, cmd = m.processEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmds = append(cmds, cmd)
		if m.eventCh != nil {
			cmds = append(cmds, listenForEvent(m.eventCh, m.doneCh))
		}
		return m, tea.Batch(cmds...)

	case DoneMsg:
		m = m.finish(msg)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		return m, m.Input.Focus()

	case spinner.TickMsg:
		if m.current == nil {
			return m, nil
		}
		_, cmd := m.current.Update(msg)
		m.Viewport.SetContent(m.renderContent())
		return m, cmd
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyTab:
		if m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		m = m.cycleFocusPrev()
		return m, nil
	}

	// When idle, pass keys to both the input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submit(instruction string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.result = nil
	m.current = nil

	m.blocks = append(m.blocks, NewInstructionBlock(instruction, m.sketch, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan sketchui.Event, 256)
	m.doneCh = make(chan DoneMsg, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startRun(m.run, ctx, instruction, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

func (m Model) finish(msg DoneMsg) Model {
	m.running = false
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	m.current = nil

	switch {
	case msg.Err == nil:
		r := msg.Result
		m.result = &r
	case errors.Is(msg.Err, context.Canceled):
		m.blocks = append(m.blocks, NewErrorBlock(errors.New("session cancelled"), m.styles))
	default:
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processEvent routes a progress event to the active iteration block.
func (m Model) processEvent(evt sketchui.Event) (Model, tea.Cmd) {
	switch e := evt.(type) {
	case sketchui.EventStateChanged:
		switch e.State {
		case sketchui.StateGenerating:
			if m.current != nil && m.current.Iteration() == e.Iteration {
				return m, nil
			}
			b := NewIterationBlock(e.Iteration, m.limit, m.theme, m.styles)
			m.blocks = append(m.blocks, b)
			m.current = b
			m.blockFocus = len(m.blocks) - 1
			return m, b.Tick
		case sketchui.StateEvaluating:
			if m.current != nil {
				m.current.SetPhase(sketchui.StateEvaluating)
				return m, m.current.Tick
			}
		case sketchui.StateDone:
			if m.current != nil {
				m.current.SetPhase(sketchui.StateDone)
			}
		}
	case sketchui.EventTextDelta:
		if m.current != nil {
			m.current.AppendText(e.Delta)
		}
	case sketchui.EventThinkingDelta:
		if m.current != nil {
			m.current.AppendThinking(e.Delta)
		}
	case sketchui.EventCandidate:
		if m.current != nil {
			m.current.SetCandidate(e.Candidate)
		}
	case sketchui.EventVerdict:
		if m.current != nil {
			m.current.SetVerdict(e.Verdict, e.Attempts)
		}
	case sketchui.EventFinished:
		m.blocks = append(m.blocks, NewResultBlock(e.Result, m.styles))
	}
	return m, nil
}

// cycleFocusPrev moves blockFocus to the previous iteration block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	if len(m.blocks) == 0 {
		return m
	}
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if _, ok := m.blocks[idx].(*IterationBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	switch {
	case m.err != nil:
		return m.styles.Error.Render(truncate(fmt.Sprintf("Error: %v", m.err), width))
	case m.running:
		text := "Generating..."
		if m.current != nil {
			text = fmt.Sprintf("Iteration %d · Ctrl+C to cancel", m.current.Iteration())
		}
		return m.styles.Muted.Render(truncate(text, width))
	default:
		text := "Enter to generate, Tab to toggle code, Ctrl+C to quit"
		if m.result != nil {
			text = fmt.Sprintf("Session %s: %s · %s", m.result.SessionID, m.result.Termination, text)
		}
		return m.styles.Muted.Render(truncate(text, width))
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// startRun runs the session in a goroutine and signals completion.
func startRun(run RunFunc, ctx context.Context, instruction string, eventCh chan<- sketchui.Event, doneCh chan<- DoneMsg) tea.Cmd {
	return func() tea.Msg {
		r, err := run(ctx, instruction, func(e sketchui.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- DoneMsg{Result: r, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the outcome from doneCh.
func listenForEvent(ch <-chan sketchui.Event, doneCh <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return EventMsg{Event: evt}
	}
}
