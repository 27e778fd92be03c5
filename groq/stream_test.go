package groq_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/groq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamFrom(t *testing.T, h http.Handler) sketchui.Stream {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := groq.New("k", groq.WithBaseURL(srv.URL)).Stream(context.Background(), sketchRequest())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func collect(t *testing.T, s sketchui.Stream) []sketchui.Event {
	t.Helper()
	var events []sketchui.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func delta(content string) string {
	return fmt.Sprintf(`{"id":"c1","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`, content)
}

func TestStream_TextResponse(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, sseHandler(
		`{"id":"c1","choices":[{"index":0,"delta":{"role":"assistant"},"finish_reason":null}]}`,
		delta("**NOT APPROVED**"),
		delta(" the header is missing"),
		`{"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"x_groq":{"usage":{"prompt_tokens":900,"completion_tokens":12}}}`,
	))
	events := collect(t, s)

	assert.Equal(t, []sketchui.Event{
		sketchui.EventTextDelta{Index: 0, Delta: "**NOT APPROVED**"},
		sketchui.EventTextDelta{Index: 0, Delta: " the header is missing"},
	}, events)

	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, "**NOT APPROVED** the header is missing", msg.Text())
	assert.Equal(t, sketchui.StopEndTurn, msg.StopReason)
	assert.Equal(t, "stop", msg.RawStopReason)
	assert.Equal(t, sketchui.Usage{InputTokens: 900, OutputTokens: 12}, msg.Usage)
	assert.Equal(t, sketchui.StreamStateComplete, s.State())
}

func TestStream_ReasoningBeforeContent(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, sseHandler(
		`{"choices":[{"index":0,"delta":{"reasoning":"Looking at boxes"}}]}`,
		`{"choices":[{"index":0,"delta":{"reasoning":"...","content":"ok"}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"length"}],"usage":{"prompt_tokens":50,"completion_tokens":3,"prompt_tokens_details":{"cached_tokens":40}}}`,
	))
	events := collect(t, s)

	assert.Equal(t, []sketchui.Event{
		sketchui.EventThinkingDelta{Index: 0, Delta: "Looking at boxes"},
		sketchui.EventThinkingDelta{Index: 0, Delta: "..."},
		sketchui.EventTextDelta{Index: 1, Delta: "ok"},
	}, events)

	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, []sketchui.ContentBlock{
		sketchui.ThinkingBlock{Thinking: "Looking at boxes..."},
		sketchui.TextBlock{Text: "ok"},
	}, msg.Content)
	assert.Equal(t, sketchui.StopLength, msg.StopReason)
	assert.Equal(t, sketchui.Usage{InputTokens: 10, OutputTokens: 3, CacheReadTokens: 40}, msg.Usage)
}

func TestStream_MidStreamError(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, sseHandler(delta("par"), `{"error":{"message":"service unavailable"}}`))
	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, sketchui.EventTextDelta{Index: 0, Delta: "par"}, evt)

	_, err = s.Next()
	require.EqualError(t, err, "groq: service unavailable")
	assert.Equal(t, sketchui.StreamStateError, s.State())

	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, sketchui.StopError, msg.StopReason)
	assert.Equal(t, "par", msg.Text())
}

func TestStream_UnexpectedEOF(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "data: %s\n\n", delta("cut"))
	}))
	_, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.EqualError(t, err, "groq: unexpected end of stream")
}

func TestStream_IgnoresCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	s := streamFrom(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprintf(w, "data:%s\n\n", delta("x"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	assert.Equal(t, []sketchui.Event{sketchui.EventTextDelta{Index: 0, Delta: "x"}}, collect(t, s))
}

func TestStream_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("message before next", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, sseHandler(delta("a")))
		assert.Equal(t, sketchui.StreamStateNew, s.State())
		_, err := s.Message()
		require.ErrorIs(t, err, sketchui.ErrStreamNotReady)
	})

	t.Run("close mid-stream aborts", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, sseHandler(delta("a"), delta("b")))
		_, err := s.Next()
		require.NoError(t, err)
		require.NoError(t, s.Close())

		msg, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, sketchui.StopAborted, msg.StopReason)
		_, err = s.Next()
		require.ErrorIs(t, err, sketchui.ErrStreamClosed)
	})

	t.Run("done without finish reason ends turn", func(t *testing.T) {
		t.Parallel()
		s := streamFrom(t, sseHandler(delta("a")))
		collect(t, s)
		msg, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, sketchui.StopEndTurn, msg.StopReason)
		_, err = s.Next()
		assert.Equal(t, io.EOF, err)
	})
}
