package anthropic

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

// Client implements [sketchui.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
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

// New creates a new Anthropic [Client]. An empty key is accepted here and
// reported as [sketchui.ErrConfiguration] on the first Stream call.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming request and returns a [sketchui.Stream] of
// semantic events.
func (c *Client) Stream(ctx context.Context, req sketchui.Request) (sketchui.Stream, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("anthropic: api key not set: %w", sketchui.ErrConfiguration)
	}
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return newStream(ctx, resp.Body), nil
}

func buildRequest(req sketchui.Request) apiRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	out := apiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Stream:      true,
		Messages:    convertMessages(req.Messages),
		Temperature: req.Temperature,
	}
	// The system prompt repeats on every iteration of a session.
	if req.SystemPrompt != "" {
		out.System = []apiContentBlock{{
			Type:         "text",
			Text:         req.SystemPrompt,
			CacheControl: &apiCacheControl{Type: "ephemeral"},
		}}
	}
	return out
}

func convertMessages(msgs []sketchui.Message) []apiMessage {
	result := make([]apiMessage, 0, len(msgs))
	for _, msg := range msgs {
		switch m := msg.(type) {
		case sketchui.UserMessage:
			result = append(result, apiMessage{Role: "user", Content: convertContentBlocks(m.Content)})
		case sketchui.AssistantMessage:
			result = append(result, apiMessage{Role: "assistant", Content: convertContentBlocks(m.Content)})
		}
	}
	return result
}

func convertContentBlocks(blocks []sketchui.ContentBlock) []apiContentBlock {
	result := make([]apiContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch bl := b.(type) {
		case sketchui.TextBlock:
			result = append(result, apiContentBlock{Type: "text", Text: bl.Text})
		case sketchui.ThinkingBlock:
			result = append(result, apiContentBlock{Type: "thinking", Thinking: bl.Thinking, Signature: string(bl.Signature)})
		case sketchui.ImageBlock:
			result = append(result, apiContentBlock{
				Type: "image",
				Source: &apiImageSource{
					Type:      "base64",
					MediaType: bl.MimeType,
					Data:      base64.StdEncoding.EncodeToString(bl.Data),
				},
			})
		}
	}
	return result
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Type == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("anthropic: %s: %s: %w", apiErr.Error.Type, apiErr.Error.Message, sketchui.ErrConfiguration)
	}
	return fmt.Errorf("anthropic: %s: %s", apiErr.Error.Type, apiErr.Error.Message)
}
