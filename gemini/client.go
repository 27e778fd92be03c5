package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/sketchui"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ sketchui.Provider = (*Client)(nil)

// Client implements [sketchui.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID used when a request names none.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client]. An empty key is a
// [sketchui.ErrConfiguration].
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key not set: %w", sketchui.ErrConfiguration)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream starts a streaming generation and returns a [sketchui.Stream].
func (c *Client) Stream(ctx context.Context, req sketchui.Request) (sketchui.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	it := c.client.Models.GenerateContentStream(ctx, model, ConvertMessages(req.Messages), BuildConfig(req))
	return newStream(ctx, it), nil
}

// BuildConfig maps request settings onto a generation config.
func BuildConfig(req sketchui.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}
	return config
}

// ConvertMessages converts sketchui messages to genai contents.
func ConvertMessages(msgs []sketchui.Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case sketchui.UserMessage:
			result = append(result, &genai.Content{Role: "user", Parts: convertParts(m.Content)})
		case sketchui.AssistantMessage:
			result = append(result, &genai.Content{Role: "model", Parts: convertParts(m.Content)})
		}
	}
	return result
}

func convertParts(blocks []sketchui.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case sketchui.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case sketchui.ThinkingBlock:
			parts = append(parts, &genai.Part{Text: bl.Thinking, Thought: true, ThoughtSignature: bl.Signature})
		case sketchui.ImageBlock:
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: bl.MimeType, Data: bl.Data},
			})
		}
	}
	return parts
}
