package anthropic

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

// stream implements [sketchui.Stream] over an SSE response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	state   sketchui.StreamState
	msg     sketchui.AssistantMessage
	blocks  map[int]*blockState
	err     error
}

// blockState accumulates one content block.
type blockState struct {
	kind      string
	text      strings.Builder
	signature strings.Builder
}

var _ sketchui.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &stream{
		body:    body,
		scanner: sc,
		ctx:     ctx,
		state:   sketchui.StreamStateNew,
		blocks:  make(map[int]*blockState),
	}
}

// Next reads the next semantic event. Returns io.EOF on message_stop.
func (s *stream) Next() (sketchui.Event, error) {
	switch s.state {
	case sketchui.StreamStateComplete:
		return nil, io.EOF
	case sketchui.StreamStateError:
		return nil, s.err
	case sketchui.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", sketchui.ErrStreamClosed)
	}

	for {
		eventType, data, err := s.readEvent()
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		s.state = sketchui.StreamStateStreaming

		evt, err := s.process(eventType, []byte(data))
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if s.state == sketchui.StreamStateComplete {
			return nil, io.EOF
		}
		if evt != nil {
			return evt, nil
		}
	}
}

// State returns the current stream state.
func (s *stream) State() sketchui.StreamState {
	return s.state
}

// Message returns the assembled, possibly partial, AssistantMessage.
func (s *stream) Message() (sketchui.AssistantMessage, error) {
	if s.state == sketchui.StreamStateNew {
		return sketchui.AssistantMessage{}, fmt.Errorf("anthropic: %w", sketchui.ErrStreamNotReady)
	}
	msg := s.msg
	msg.Content = make([]sketchui.ContentBlock, 0, len(s.msg.Content))
	for _, b := range s.msg.Content {
		if b != nil {
			msg.Content = append(msg.Content, b)
		}
	}
	return msg, nil
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

func (s *stream) terminate(err error) {
	s.state = sketchui.StreamStateError
	switch {
	case errors.Is(err, io.EOF):
		s.err = errors.New("anthropic: unexpected end of stream")
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

// readEvent reads lines until a complete SSE event is assembled.
func (s *stream) readEvent() (string, string, error) {
	var eventType string
	var data strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				return eventType, data.String(), nil
			}
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}
	if data.Len() > 0 {
		return eventType, data.String(), nil
	}
	return "", "", io.EOF
}

func (s *stream) process(eventType string, data []byte) (sketchui.Event, error) {
	switch eventType {
	case "message_start":
		var evt sseMessageStart
		if err := json.Unmarshal(data, &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse message_start: %w", err)
		}
		u := evt.Message.Usage
		s.msg.Usage.InputTokens = u.InputTokens
		if u.CacheReadInputTokens != nil {
			s.msg.Usage.CacheReadTokens = *u.CacheReadInputTokens
		}
		if u.CacheCreationInputTokens != nil {
			s.msg.Usage.CacheWriteTokens = *u.CacheCreationInputTokens
		}
		return nil, nil
	case "content_block_start":
		return nil, s.startBlock(data)
	case "content_block_delta":
		return s.delta(data)
	case "message_delta":
		var evt sseMessageDelta
		if err := json.Unmarshal(data, &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
		}
		s.msg.Usage.OutputTokens = evt.Usage.OutputTokens
		if evt.Delta.StopReason != nil {
			s.msg.RawStopReason = *evt.Delta.StopReason
			s.msg.StopReason = mapStopReason(*evt.Delta.StopReason)
		}
		return nil, nil
	case "message_stop":
		s.state = sketchui.StreamStateComplete
		return nil, nil
	case "error":
		var evt apiError
		if err := json.Unmarshal(data, &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse error event: %w", err)
		}
		return nil, fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
	default:
		// ping, content_block_stop and unknown events carry nothing we need.
		return nil, nil
	}
}

func (s *stream) startBlock(data []byte) error {
	var evt sseContentBlockStart
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse content_block_start: %w", err)
	}
	s.blocks[evt.Index] = &blockState{kind: evt.ContentBlock.Type}
	for len(s.msg.Content) <= evt.Index {
		s.msg.Content = append(s.msg.Content, nil)
	}
	switch evt.ContentBlock.Type {
	case "text":
		s.msg.Content[evt.Index] = sketchui.TextBlock{}
	case "thinking":
		s.msg.Content[evt.Index] = sketchui.ThinkingBlock{}
	}
	return nil
}

func (s *stream) delta(data []byte) (sketchui.Event, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	bs := s.blocks[evt.Index]
	if bs == nil {
		return nil, fmt.Errorf("anthropic: delta for unknown block index %d", evt.Index)
	}

	switch evt.Delta.Type {
	case "text_delta":
		bs.text.WriteString(evt.Delta.Text)
		s.msg.Content[evt.Index] = sketchui.TextBlock{Text: bs.text.String()}
		return sketchui.EventTextDelta{Index: evt.Index, Delta: evt.Delta.Text}, nil
	case "thinking_delta":
		bs.text.WriteString(evt.Delta.Thinking)
		s.msg.Content[evt.Index] = s.thinking(bs)
		return sketchui.EventThinkingDelta{Index: evt.Index, Delta: evt.Delta.Thinking}, nil
	case "signature_delta":
		bs.signature.WriteString(evt.Delta.Signature)
		s.msg.Content[evt.Index] = s.thinking(bs)
		return nil, nil
	default:
		return nil, nil
	}
}

func (s *stream) thinking(bs *blockState) sketchui.ThinkingBlock {
	tb := sketchui.ThinkingBlock{Thinking: bs.text.String()}
	if bs.signature.Len() > 0 {
		tb.Signature = []byte(bs.signature.String())
	}
	return tb
}

func mapStopReason(raw string) sketchui.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return sketchui.StopEndTurn
	case "max_tokens":
		return sketchui.StopLength
	case "refusal":
		return sketchui.StopError
	default:
		return sketchui.StopUnknown
	}
}
