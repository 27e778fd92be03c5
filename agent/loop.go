package agent

import (
	"context"
	"fmt"

	"github.com/fwojciec/sketchui"
	"github.com/google/uuid"
)

// Loop runs sessions through the refinement controller. A Loop holds no
// per-session state and may run several sessions concurrently; each Run
// call creates and owns its own Session.
type Loop struct {
	gen    sketchui.Generator
	eval   sketchui.Evaluator
	parser sketchui.CandidateParser
	cfg    config
	opts   []Option
}

// New creates a new Loop with the given collaborators. parser splits
// Generator output into candidate segments.
func New(gen sketchui.Generator, eval sketchui.Evaluator, parser sketchui.CandidateParser, opts ...Option) *Loop {
	return &Loop{gen: gen, eval: eval, parser: parser, cfg: newConfig(opts), opts: opts}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent   func(sketchui.Event)
	sessionID string
}

// WithEventHandler sets a callback that receives each progress event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(sketchui.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithSessionID sets the session ID. Empty means a random UUID.
func WithSessionID(id string) RunOption {
	return func(c *runConfig) {
		c.sessionID = id
	}
}

// Run executes one session: it generates a candidate from the sketch and
// instruction, evaluates it, and retries with the evaluator's critique until
// the candidate is approved or the attempt limit is reached. Both outcomes
// return a Result and a nil error. Configuration errors and generator
// failures abort the session and no Result is produced.
func (l *Loop) Run(ctx context.Context, sketch sketchui.Sketch, instruction string, opts ...RunOption) (sketchui.Result, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := l.cfg.policy.Validate(); err != nil {
		return sketchui.Result{}, fmt.Errorf("agent: %w", err)
	}
	if l.gen == nil || l.eval == nil || l.parser == nil {
		return sketchui.Result{}, fmt.Errorf("agent: generator, evaluator and parser are required: %w", sketchui.ErrConfiguration)
	}
	if len(sketch.Data) == 0 {
		return sketchui.Result{}, fmt.Errorf("agent: sketch %q has no image data: %w", sketch.Ref, sketchui.ErrValidation)
	}

	id := cfg.sessionID
	if id == "" {
		id = uuid.NewString()
	}
	session := sketchui.NewSession(id, sketch, instruction)
	c := NewController(session, l.gen, l.eval, l.parser, l.opts...)
	c.onEvent = cfg.onEvent

	logger := l.cfg.logger.With("session", id)
	logger.Info("session started", "sketch", sketch.Ref, "attempt_limit", l.cfg.policy.AttemptLimit)

	for c.State() != sketchui.StateDone {
		if err := c.Step(ctx); err != nil {
			logger.Error("session failed", "state", c.State().String(), "iteration", session.Iterations, "error", err)
			return sketchui.Result{}, err
		}
	}

	result := session.Result()
	logger.Info("session finished",
		"termination", string(result.Termination),
		"attempts", result.Attempts,
		"iterations", result.Iterations)
	if cfg.onEvent != nil {
		cfg.onEvent(sketchui.EventFinished{Result: result})
	}
	return result, nil
}
