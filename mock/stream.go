package mock

import (
	"io"

	"github.com/fwojciec/sketchui"
)

// Interface compliance check.
var _ sketchui.Stream = (*Stream)(nil)

// Stream is a test double for sketchui.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn    func() (sketchui.Event, error)
	StateFn   func() sketchui.StreamState
	MessageFn func() (sketchui.AssistantMessage, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (sketchui.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() sketchui.StreamState {
	if s.StateFn == nil {
		return sketchui.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (sketchui.AssistantMessage, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// TextStream returns a Stream that emits one EventTextDelta per chunk and
// then completes with an AssistantMessage holding the joined text.
func TextStream(chunks ...string) *Stream {
	i := 0
	var text string
	for _, c := range chunks {
		text += c
	}
	state := sketchui.StreamStateNew
	return &Stream{
		NextFn: func() (sketchui.Event, error) {
			if i >= len(chunks) {
				state = sketchui.StreamStateComplete
				return nil, io.EOF
			}
			state = sketchui.StreamStateStreaming
			evt := sketchui.EventTextDelta{Index: 0, Delta: chunks[i]}
			i++
			return evt, nil
		},
		StateFn: func() sketchui.StreamState { return state },
		MessageFn: func() (sketchui.AssistantMessage, error) {
			return sketchui.AssistantMessage{
				Content:    []sketchui.ContentBlock{sketchui.TextBlock{Text: text}},
				StopReason: sketchui.StopEndTurn,
			}, nil
		},
	}
}
