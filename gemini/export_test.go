package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/sketchui"
	"google.golang.org/genai"
)

// NewStreamFromIter exposes the stream constructor to tests.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) sketchui.Stream {
	return newStream(ctx, seq)
}
