package groq

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sketchui"
)

// stream implements [sketchui.Stream] over a chat completions SSE body.
// Reasoning deltas fill a thinking block at index 0 when present; content
// deltas fill the text block after it.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   sketchui.StreamState
	msg     sketchui.AssistantMessage
	err     error
	pending []sketchui.Event

	thinking  strings.Builder
	text      strings.Builder
	thinkIdx  int
	textIdx   int
	finishRaw string
}

var _ sketchui.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{
		body:     body,
		scanner:  sc,
		ctx:      ctx,
		state:    sketchui.StreamStateNew,
		thinkIdx: -1,
		textIdx:  -1,
	}
}

// Next returns the next delta event, or io.EOF after "[DONE]".
func (s *stream) Next() (sketchui.Event, error) {
	for {
		switch s.state {
		case sketchui.StreamStateComplete:
			return nil, io.EOF
		case sketchui.StreamStateError:
			return nil, s.err
		case sketchui.StreamStateClosed:
			return nil, fmt.Errorf("groq: %w", sketchui.ErrStreamClosed)
		}
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}

		data, err := s.readData()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		s.state = sketchui.StreamStateStreaming
		if data == doneSentinel {
			s.complete()
			continue
		}
		if err := s.process([]byte(data)); err != nil {
			s.terminate(err)
			return nil, s.err
		}
	}
}

// readData returns the payload of the next "data:" line.
func (s *stream) readData() (string, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "data:")), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	return "", io.EOF
}

func (s *stream) process(data []byte) error {
	var chunk apiChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return fmt.Errorf("groq: failed to parse chunk: %w", err)
	}
	if chunk.Error != nil {
		return fmt.Errorf("groq: %s", chunk.Error.Message)
	}
	if chunk.Usage == nil && chunk.XGroq != nil {
		chunk.Usage = chunk.XGroq.Usage
	}
	if chunk.Usage != nil {
		s.setUsage(chunk.Usage)
	}
	if len(chunk.Choices) == 0 {
		return nil
	}

	choice := chunk.Choices[0]
	if d := choice.Delta.Reasoning; d != "" {
		if s.thinkIdx < 0 {
			s.thinkIdx = len(s.msg.Content)
			s.msg.Content = append(s.msg.Content, sketchui.ThinkingBlock{})
		}
		s.thinking.WriteString(d)
		s.msg.Content[s.thinkIdx] = sketchui.ThinkingBlock{Thinking: s.thinking.String()}
		s.pending = append(s.pending, sketchui.EventThinkingDelta{Index: s.thinkIdx, Delta: d})
	}
	if d := choice.Delta.Content; d != "" {
		if s.textIdx < 0 {
			s.textIdx = len(s.msg.Content)
			s.msg.Content = append(s.msg.Content, sketchui.TextBlock{})
		}
		s.text.WriteString(d)
		s.msg.Content[s.textIdx] = sketchui.TextBlock{Text: s.text.String()}
		s.pending = append(s.pending, sketchui.EventTextDelta{Index: s.textIdx, Delta: d})
	}
	if choice.FinishReason != nil {
		s.finishRaw = *choice.FinishReason
	}
	return nil
}

// setUsage maps OpenAI usage onto sketchui.Usage, subtracting cached tokens
// from input.
func (s *stream) setUsage(u *apiUsage) {
	cached := 0
	if u.PromptTokensDetails != nil {
		cached = u.PromptTokensDetails.CachedTokens
	}
	s.msg.Usage = sketchui.Usage{
		InputTokens:     max(0, u.PromptTokens-cached),
		OutputTokens:    u.CompletionTokens,
		CacheReadTokens: cached,
	}
}

func (s *stream) complete() {
	s.state = sketchui.StreamStateComplete
	raw := s.finishRaw
	if raw == "" {
		raw = "stop"
	}
	s.msg.RawStopReason = raw
	s.msg.StopReason = mapFinishReason(raw)
}

func (s *stream) terminate(err error) {
	s.state = sketchui.StreamStateError
	switch {
	case errors.Is(err, io.EOF):
		s.err = errors.New("groq: unexpected end of stream")
		s.msg.StopReason = sketchui.StopError
		s.msg.RawStopReason = "error"
	case s.ctx.Err() != nil:
		s.err = err
		s.msg.StopReason = sketchui.StopAborted
		s.msg.RawStopReason = "aborted"
	default:
		s.err = err
		s.msg.StopReason = sketchui.StopError
		s.msg.RawStopReason = "error"
	}
}

// State returns the current stream state.
func (s *stream) State() sketchui.StreamState {
	return s.state
}

// Message returns the assembled, possibly partial, AssistantMessage.
func (s *stream) Message() (sketchui.AssistantMessage, error) {
	if s.state == sketchui.StreamStateNew {
		return sketchui.AssistantMessage{}, fmt.Errorf("groq: %w", sketchui.ErrStreamNotReady)
	}
	return s.msg, nil
}

// Close closes the response body.
func (s *stream) Close() error {
	if s.state != sketchui.StreamStateComplete && s.state != sketchui.StreamStateError {
		s.state = sketchui.StreamStateClosed
		s.msg.StopReason = sketchui.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	return s.body.Close()
}

func mapFinishReason(raw string) sketchui.StopReason {
	switch raw {
	case "stop":
		return sketchui.StopEndTurn
	case "length":
		return sketchui.StopLength
	case "content_filter":
		return sketchui.StopError
	default:
		return sketchui.StopUnknown
	}
}
