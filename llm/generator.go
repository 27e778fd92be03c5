package llm

import (
	"context"
	"fmt"

	"github.com/fwojciec/sketchui"
)

var _ sketchui.Generator = (*Generator)(nil)

// Generator produces candidate UI code from a sketch through a Provider.
type Generator struct {
	provider sketchui.Provider
	marker   string
	cfg      config
}

// NewGenerator creates a Generator using GeneratorSystemPrompt unless
// overridden. marker is stripped from feedback before it reaches the model.
// Empty marker means sketchui.DefaultApprovalMarker.
func NewGenerator(p sketchui.Provider, marker string, opts ...Option) *Generator {
	if marker == "" {
		marker = sketchui.DefaultApprovalMarker
	}
	return &Generator{provider: p, marker: marker, cfg: newConfig(GeneratorSystemPrompt, opts)}
}

// Generate implements sketchui.Generator.
func (g *Generator) Generate(ctx context.Context, req sketchui.GenerateRequest) (string, error) {
	text, err := complete(ctx, g.provider, g.cfg, GeneratorPrompt(req.Instruction, req.Feedback, g.marker), req.Sketch)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	return text, nil
}
