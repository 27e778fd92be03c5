package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/sketchui"
)

// Controller is the refinement state machine for a single session:
//
//	GENERATING -> EVALUATING -> DONE
//	                   |
//	                   +------> GENERATING (retry with feedback)
//
// Each Step performs exactly one transition and completes every session
// mutation before returning. A Controller is not safe for concurrent use.
type Controller struct {
	gen     sketchui.Generator
	eval    sketchui.Evaluator
	parser  sketchui.CandidateParser
	cfg     config
	session *sketchui.Session
	onEvent func(sketchui.Event)
}

// NewController creates a Controller that owns session.
func NewController(session *sketchui.Session, gen sketchui.Generator, eval sketchui.Evaluator, parser sketchui.CandidateParser, opts ...Option) *Controller {
	return &Controller{
		gen:     gen,
		eval:    eval,
		parser:  parser,
		cfg:     newConfig(opts),
		session: session,
	}
}

// Session returns the session owned by the controller.
func (c *Controller) Session() *sketchui.Session { return c.session }

// State returns the current controller state.
func (c *Controller) State() sketchui.State { return c.session.State }

// Step performs one transition. It returns ErrDone when called on a
// terminated session. Errors other than ErrDone are fatal for the session.
func (c *Controller) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch c.session.State {
	case sketchui.StateGenerating:
		return c.generate(ctx)
	case sketchui.StateEvaluating:
		return c.evaluate(ctx)
	case sketchui.StateDone:
		return ErrDone
	default:
		return fmt.Errorf("agent: unknown state %s", c.session.State)
	}
}

func (c *Controller) generate(ctx context.Context) error {
	s := c.session
	s.Iterations++
	c.emit(sketchui.EventStateChanged{SessionID: s.ID, State: sketchui.StateGenerating, Iteration: s.Iterations})

	feedback := sketchui.Feedback(s.Verdict, c.cfg.policy.ApprovalMarker)
	c.cfg.logger.Debug("generating candidate",
		"session", s.ID, "iteration", s.Iterations, "feedback", feedback != "")

	text, err := c.gen.Generate(ctx, sketchui.GenerateRequest{
		Instruction: s.Instruction,
		Sketch:      s.Sketch,
		Feedback:    feedback,
	})
	if err != nil {
		if errors.Is(err, sketchui.ErrConfiguration) {
			return fmt.Errorf("agent: generate: %w", err)
		}
		return fmt.Errorf("agent: generate (iteration %d): %w: %w", s.Iterations, sketchui.ErrGeneratorFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("agent: generate (iteration %d): empty response: %w", s.Iterations, sketchui.ErrGeneratorFailure)
	}

	candidate := c.parser.ParseCandidate(text)
	candidate.Raw = text
	s.Candidate = candidate
	s.State = sketchui.StateEvaluating
	s.UpdatedAt = time.Now()

	c.emit(sketchui.EventCandidate{SessionID: s.ID, Iteration: s.Iterations, Candidate: candidate})
	return nil
}

func (c *Controller) evaluate(ctx context.Context) error {
	s := c.session
	policy := c.cfg.policy
	c.emit(sketchui.EventStateChanged{SessionID: s.ID, State: sketchui.StateEvaluating, Iteration: s.Iterations})

	text, err := c.eval.Evaluate(ctx, sketchui.EvaluateRequest{
		Sketch:        s.Sketch,
		CandidateText: s.Candidate.Raw,
	})

	var verdict sketchui.Verdict
	switch {
	case err == nil:
		verdict = sketchui.Classify(text, policy.ApprovalMarker)
	case errors.Is(err, sketchui.ErrConfiguration), ctx.Err() != nil:
		return fmt.Errorf("agent: evaluate (iteration %d): %w", s.Iterations, err)
	default:
		c.cfg.logger.Warn("evaluator failed, counting as rejection",
			"session", s.ID, "iteration", s.Iterations, "error", err)
		verdict = sketchui.Rejected{Critique: err.Error()}
	}

	if !sketchui.IsApproved(verdict) {
		s.AttemptCount++
	}

	decision := sketchui.Decide(policy, s.AttemptCount, verdict)
	switch decision {
	case sketchui.DecisionExhausted:
		verdict = annotateExhausted(verdict)
		s.Termination = sketchui.TerminationAttemptLimit
		s.State = sketchui.StateDone
	case sketchui.DecisionApproved:
		s.Termination = sketchui.TerminationApproved
		s.State = sketchui.StateDone
	default:
		s.State = sketchui.StateGenerating
	}
	s.Verdict = verdict
	s.UpdatedAt = time.Now()

	c.cfg.logger.Debug("candidate evaluated",
		slog.String("session", s.ID),
		slog.Int("iteration", s.Iterations),
		slog.Bool("approved", sketchui.IsApproved(verdict)),
		slog.Int("attempts", s.AttemptCount),
		slog.String("decision", decision.String()))

	c.emit(sketchui.EventVerdict{SessionID: s.ID, Iteration: s.Iterations, Verdict: verdict, Attempts: s.AttemptCount})
	return nil
}

// annotateExhausted appends the exhaustion marker to the stored verdict text
// without changing the verdict's kind.
func annotateExhausted(v sketchui.Verdict) sketchui.Verdict {
	switch v := v.(type) {
	case sketchui.Approved:
		return sketchui.Approved{Message: v.Message + sketchui.ExhaustionMarker}
	case sketchui.Rejected:
		return sketchui.Rejected{Critique: v.Critique + sketchui.ExhaustionMarker}
	default:
		return v
	}
}

func (c *Controller) emit(e sketchui.Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}
