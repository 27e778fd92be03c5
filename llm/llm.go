// Package llm adapts a streaming sketchui.Provider into the Generator and
// Evaluator collaborators of the refinement loop.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sketchui"
)

// Option configures a Generator or an Evaluator.
type Option func(*config)

type config struct {
	model        string
	systemPrompt string
	maxTokens    int
	temperature  *float64
	onEvent      func(sketchui.Event)
	logger       *slog.Logger
}

// WithModel sets the model ID. Empty means the provider default.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(p string) Option {
	return func(c *config) { c.systemPrompt = p }
}

// WithMaxTokens caps the response length. Zero means the provider default.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = &t }
}

// WithEventHandler forwards the provider's streaming events.
func WithEventHandler(h func(sketchui.Event)) Option {
	return func(c *config) { c.onEvent = h }
}

// WithLogger sets the logger that records per-request token usage.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(systemPrompt string, opts []Option) config {
	c := config{systemPrompt: systemPrompt, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// complete sends a single user turn of text and image and returns the
// assistant's concatenated text.
func complete(ctx context.Context, p sketchui.Provider, cfg config, prompt string, sketch sketchui.Sketch) (string, error) {
	req := sketchui.Request{
		Model:        cfg.model,
		SystemPrompt: cfg.systemPrompt,
		MaxTokens:    cfg.maxTokens,
		Temperature:  cfg.temperature,
		Messages: []sketchui.Message{
			sketchui.UserMessage{
				Content: []sketchui.ContentBlock{
					sketchui.TextBlock{Text: prompt},
					sketch.Image(),
				},
				Timestamp: time.Now(),
			},
		},
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	stream, err := p.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var streamErr error
	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if cfg.onEvent != nil {
			cfg.onEvent(evt)
		}
	}
	if streamErr != nil {
		return "", streamErr
	}

	msg, err := stream.Message()
	if err != nil {
		return "", err
	}
	cfg.logger.Debug("completion finished",
		"model", cfg.model,
		"stop_reason", msg.StopReason,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"cache_read_tokens", msg.Usage.CacheReadTokens,
		"total_input_tokens", msg.Usage.TotalInput(),
	)
	switch msg.StopReason {
	case sketchui.StopError, sketchui.StopAborted:
		return "", fmt.Errorf("response ended with stop reason %q (%s)", msg.StopReason, msg.RawStopReason)
	}
	return msg.Text(), nil
}
