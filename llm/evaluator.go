package llm

import (
	"context"
	"fmt"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/ansi"
)

var _ sketchui.Evaluator = (*Evaluator)(nil)

// Evaluator asks a model to compare a candidate against its sketch.
type Evaluator struct {
	provider sketchui.Provider
	marker   string
	cfg      config
}

// NewEvaluator creates an Evaluator that tells the model to answer with
// marker on approval. Empty marker means sketchui.DefaultApprovalMarker.
func NewEvaluator(p sketchui.Provider, marker string, opts ...Option) *Evaluator {
	if marker == "" {
		marker = sketchui.DefaultApprovalMarker
	}
	return &Evaluator{provider: p, marker: marker, cfg: newConfig("", opts)}
}

// Evaluate implements sketchui.Evaluator. The reply is sanitized so the
// text that is classified is the text that is displayed.
func (e *Evaluator) Evaluate(ctx context.Context, req sketchui.EvaluateRequest) (string, error) {
	text, err := complete(ctx, e.provider, e.cfg, EvaluatorPrompt(e.marker, req.CandidateText), req.Sketch)
	if err != nil {
		return "", fmt.Errorf("llm: evaluate: %w", err)
	}
	return ansi.Sanitize(text), nil
}
