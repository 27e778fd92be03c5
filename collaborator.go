package sketchui

import "context"

// GenerateRequest is the input of one Generator call. Feedback is empty on
// the first iteration and carries the previous critique on retries.
type GenerateRequest struct {
	Instruction string
	Sketch      Sketch
	Feedback    string
}

// Generator produces a candidate UI implementation as marked-up text with
// html, css and javascript fenced segments. An error or an empty response
// is fatal for the session.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// EvaluateRequest is the input of one Evaluator call. CandidateText is the
// full unparsed Generator output.
type EvaluateRequest struct {
	Sketch        Sketch
	CandidateText string
}

// Evaluator judges a candidate against the sketch and returns its raw
// verdict text. Errors other than ErrConfiguration and context cancellation
// are absorbed by the loop as rejections.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (string, error)
}
