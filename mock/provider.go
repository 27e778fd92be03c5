// Package mock provides test doubles for sketchui interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/sketchui"
)

// Interface compliance check.
var _ sketchui.Provider = (*Provider)(nil)

// Provider is a test double for sketchui.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req sketchui.Request) (sketchui.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req sketchui.Request) (sketchui.Stream, error) {
	return p.StreamFn(ctx, req)
}
