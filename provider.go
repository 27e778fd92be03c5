package sketchui

import "context"

// Provider is a strategy pattern interface for multimodal model providers.
// The generator and evaluator collaborators are built on top of it.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
