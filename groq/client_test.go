package groq_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/groq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sketchRequest() sketchui.Request {
	return sketchui.Request{
		Messages: []sketchui.Message{
			sketchui.UserMessage{Content: []sketchui.ContentBlock{
				sketchui.TextBlock{Text: "Build this"},
				sketchui.ImageBlock{Data: []byte("img"), MimeType: "image/jpeg"},
			}},
		},
	}
}

// sseHandler writes each payload as a data line, then the done sentinel.
func sseHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, p := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", p)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		sseHandler()(w, r)
	}))
	defer srv.Close()

	temp := 0.3
	req := sketchRequest()
	req.SystemPrompt = "You build UIs."
	req.MaxTokens = 4096
	req.Temperature = &temp

	s, err := groq.New("gsk-test", groq.WithBaseURL(srv.URL)).Stream(context.Background(), req)
	require.NoError(t, err)
	defer s.Close()

	var body struct {
		Model               string  `json:"model"`
		Stream              bool    `json:"stream"`
		MaxCompletionTokens int     `json:"max_completion_tokens"`
		Temperature         float64 `json:"temperature"`
		Messages            []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured, &body))

	assert.Equal(t, groq.DefaultModel, body.Model)
	assert.True(t, body.Stream)
	assert.Equal(t, 4096, body.MaxCompletionTokens)
	assert.Equal(t, 0.3, body.Temperature)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.JSONEq(t, `"You build UIs."`, string(body.Messages[0].Content))
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.JSONEq(t, `[
		{"type":"text","text":"Build this"},
		{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,aW1n"}}
	]`, string(body.Messages[1].Content))
}

func TestClient_ModelOverride(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		sseHandler()(w, r)
	}))
	defer srv.Close()

	client := groq.New("k", groq.WithBaseURL(srv.URL), groq.WithModel("client-default"))

	s, err := client.Stream(context.Background(), sketchRequest())
	require.NoError(t, err)
	s.Close()
	assert.Contains(t, string(captured), `"model":"client-default"`)
	assert.NotContains(t, string(captured), "max_completion_tokens")

	req := sketchRequest()
	req.Model = "per-request"
	s, err = client.Stream(context.Background(), req)
	require.NoError(t, err)
	s.Close()
	assert.Contains(t, string(captured), `"model":"per-request"`)
}

func TestClient_MissingAPIKey(t *testing.T) {
	t.Parallel()
	_, err := groq.New("").Stream(context.Background(), sketchRequest())
	require.ErrorIs(t, err, sketchui.ErrConfiguration)
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantConfig bool
	}{
		{
			name:       "invalid key",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantErr:    "groq: invalid_api_key: Invalid API Key",
			wantConfig: true,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"Rate limit reached","type":"tokens"}}`,
			wantErr: "groq: HTTP 429: tokens: Rate limit reached",
		},
		{
			name:    "plain body",
			status:  http.StatusBadGateway,
			body:    "bad gateway\n",
			wantErr: "groq: HTTP 502: bad gateway",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.Copy(w, strings.NewReader(tt.body))
			}))
			defer srv.Close()

			_, err := groq.New("k", groq.WithBaseURL(srv.URL)).Stream(context.Background(), sketchRequest())
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantErr), err.Error())
			if tt.wantConfig {
				assert.ErrorIs(t, err, sketchui.ErrConfiguration)
			} else {
				assert.NotErrorIs(t, err, sketchui.ErrConfiguration)
			}
		})
	}
}

func TestDataURL(t *testing.T) {
	t.Parallel()
	got := groq.DataURL(sketchui.ImageBlock{Data: []byte("hi"), MimeType: "image/png"})
	assert.Equal(t, "data:image/png;base64,aGk=", got)
}
