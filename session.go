package sketchui

import (
	"fmt"
	"time"
)

// State is a refinement controller state.
type State int

const (
	StateGenerating State = iota // Initial: next step calls the Generator.
	StateEvaluating              // Next step calls the Evaluator.
	StateDone                    // Terminal.
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateGenerating:
		return "GENERATING"
	case StateEvaluating:
		return "EVALUATING"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Termination records why a session ended.
type Termination string

const (
	TerminationNone         Termination = ""
	TerminationApproved     Termination = "approved_by_evaluator"
	TerminationAttemptLimit Termination = "attempt_limit_reached"
)

// Session is one sketch-to-UI attempt. It is created fresh per request,
// owned by a single controller for the duration of the loop and never
// resumed. Sessions must not be shared between goroutines.
type Session struct {
	ID          string
	Sketch      Sketch
	Instruction string

	Candidate    Candidate
	Verdict      Verdict // nil until the first evaluation
	AttemptCount int
	Iterations   int
	State        State
	Termination  Termination

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session in StateGenerating.
func NewSession(id string, sketch Sketch, instruction string) *Session {
	now := time.Now()
	return &Session{
		ID:          id,
		Sketch:      sketch,
		Instruction: instruction,
		State:       StateGenerating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// VerdictText returns the latest verdict text, or "" before any evaluation.
func (s *Session) VerdictText() string {
	if s.Verdict == nil {
		return ""
	}
	return s.Verdict.Text()
}

// Result snapshots a terminated session.
func (s *Session) Result() Result {
	return Result{
		SessionID:   s.ID,
		SketchRef:   s.Sketch.Ref,
		Instruction: s.Instruction,
		Candidate:   s.Candidate,
		VerdictText: s.VerdictText(),
		Termination: s.Termination,
		Attempts:    s.AttemptCount,
		Iterations:  s.Iterations,
		CreatedAt:   s.CreatedAt,
		FinishedAt:  s.UpdatedAt,
	}
}
