// Package agent drives the sketch-to-UI refinement loop: a Controller state
// machine alternating Generator and Evaluator calls, and a Loop that runs a
// fresh session through the controller until it terminates.
package agent

import (
	"errors"
	"log/slog"

	"github.com/fwojciec/sketchui"
)

// ErrDone is returned by Controller.Step once the session has terminated.
var ErrDone = errors.New("agent: session already done")

// Option configures a Loop or a Controller.
type Option func(*config)

type config struct {
	policy sketchui.Policy
	logger *slog.Logger
}

func newConfig(opts []Option) config {
	c := config{
		policy: sketchui.DefaultPolicy(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithPolicy sets the attempt limit, approval marker and tie-break.
func WithPolicy(p sketchui.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
