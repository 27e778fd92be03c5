package mock

import (
	"context"

	"github.com/fwojciec/sketchui"
)

// Interface compliance checks.
var (
	_ sketchui.Generator  = (*Generator)(nil)
	_ sketchui.Evaluator  = (*Evaluator)(nil)
	_ sketchui.ResultSink = (*ResultSink)(nil)
)

// Generator is a test double for sketchui.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, req sketchui.GenerateRequest) (string, error)
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, req sketchui.GenerateRequest) (string, error) {
	return g.GenerateFn(ctx, req)
}

// Evaluator is a test double for sketchui.Evaluator.
type Evaluator struct {
	EvaluateFn func(ctx context.Context, req sketchui.EvaluateRequest) (string, error)
}

// Evaluate delegates to EvaluateFn.
func (e *Evaluator) Evaluate(ctx context.Context, req sketchui.EvaluateRequest) (string, error) {
	return e.EvaluateFn(ctx, req)
}

// ResultSink is a test double for sketchui.ResultSink.
type ResultSink struct {
	SaveFn func(ctx context.Context, r sketchui.Result) error
}

// Save delegates to SaveFn.
func (s *ResultSink) Save(ctx context.Context, r sketchui.Result) error {
	return s.SaveFn(ctx, r)
}
