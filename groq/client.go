package groq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/sketchui"
)

// Interface compliance check.
var _ sketchui.Provider = (*Client)(nil)

// Client implements [sketchui.Provider] for Groq.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Groq [Client]. An empty key is reported as
// [sketchui.ErrConfiguration] on the first Stream call.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming chat completion request.
func (c *Client) Stream(ctx context.Context, req sketchui.Request) (sketchui.Stream, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("groq: api key not set: %w", sketchui.ErrConfiguration)
	}
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("groq: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return newStream(ctx, resp.Body), nil
}

func (c *Client) buildRequest(req sketchui.Request) apiRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	out := apiRequest{
		Model:               model,
		Stream:              true,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         req.Temperature,
	}
	if req.SystemPrompt != "" {
		out.Messages = append(out.Messages, apiMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, msg := range req.Messages {
		switch m := msg.(type) {
		case sketchui.UserMessage:
			out.Messages = append(out.Messages, apiMessage{Role: "user", Content: convertParts(m.Content)})
		case sketchui.AssistantMessage:
			// Thinking is not replayed to OpenAI-compatible endpoints.
			out.Messages = append(out.Messages, apiMessage{Role: "assistant", Content: m.Text()})
		}
	}
	return out
}

func convertParts(blocks []sketchui.ContentBlock) []apiPart {
	parts := make([]apiPart, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case sketchui.TextBlock:
			parts = append(parts, apiPart{Type: "text", Text: bl.Text})
		case sketchui.ImageBlock:
			parts = append(parts, apiPart{Type: "image_url", ImageURL: &apiImageURL{URL: DataURL(bl)}})
		}
	}
	return parts
}

// DataURL encodes an image block as a base64 data URL.
func DataURL(img sketchui.ImageBlock) string {
	return "data:" + img.MimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("groq: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("groq: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	kind := apiErr.Error.Type
	if apiErr.Error.Code != "" {
		kind = apiErr.Error.Code
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("groq: %s: %s: %w", kind, apiErr.Error.Message, sketchui.ErrConfiguration)
	}
	return fmt.Errorf("groq: HTTP %d: %s: %s", resp.StatusCode, kind, apiErr.Error.Message)
}
