package sketchui

import (
	"context"
	"errors"
	"time"
)

// Result is what a terminated session hands to the outside world.
// VerdictText may carry the ExhaustionMarker.
type Result struct {
	SessionID   string
	SketchRef   string
	Instruction string
	Candidate   Candidate
	VerdictText string
	Termination Termination
	Attempts    int
	Iterations  int
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// Approved reports whether the session ended on an approving verdict.
func (r Result) Approved() bool {
	return r.Termination == TerminationApproved
}

// ResultSink persists or publishes a session result.
type ResultSink interface {
	Save(ctx context.Context, r Result) error
}

// MultiSink saves a result to each sink in order. Every sink is attempted;
// failures are joined.
type MultiSink []ResultSink

// Save implements ResultSink.
func (m MultiSink) Save(ctx context.Context, r Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
