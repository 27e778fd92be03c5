package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/sketchui"
	"google.golang.org/genai"
)

// stream implements [sketchui.Stream] over the genai streaming iterator.
// Consecutive parts of the same kind (thought or text) accumulate into one
// content block; a change of kind opens a new block.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   sketchui.StreamState
	msg     sketchui.AssistantMessage
	err     error
	pending []sketchui.Event

	kind string // "text" or "thinking"; empty before the first part
	buf  strings.Builder
}

var _ sketchui.Stream = (*stream)(nil)

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: sketchui.StreamStateNew,
	}
}

// Next returns the next text or thinking delta. Returns io.EOF once the
// iterator is exhausted.
func (s *stream) Next() (sketchui.Event, error) {
	for {
		switch s.state {
		case sketchui.StreamStateComplete:
			return nil, io.EOF
		case sketchui.StreamStateError:
			return nil, s.err
		case sketchui.StreamStateClosed:
			return nil, fmt.Errorf("gemini: %w", sketchui.ErrStreamClosed)
		}
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			return evt, nil
		}
		if err := s.ctx.Err(); err != nil {
			s.fail(fmt.Errorf("gemini: %w", err), sketchui.StopAborted, "aborted")
			return nil, s.err
		}

		resp, err, ok := s.pull()
		if !ok {
			s.finish()
			continue
		}
		s.state = sketchui.StreamStateStreaming
		if err != nil {
			if s.ctx.Err() != nil {
				s.fail(fmt.Errorf("gemini: %w", err), sketchui.StopAborted, "aborted")
			} else {
				s.fail(fmt.Errorf("gemini: %w", err), sketchui.StopError, "error")
			}
			return nil, s.err
		}
		if err := s.process(resp); err != nil {
			return nil, err
		}
	}
}

func (s *stream) process(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return nil
	}
	if resp.UsageMetadata != nil {
		s.setUsage(resp.UsageMetadata)
	}
	if len(resp.Candidates) == 0 {
		if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
			s.fail(fmt.Errorf("gemini: prompt blocked: %s", pf.BlockReason), sketchui.StopError, string(pf.BlockReason))
			return s.err
		}
		return nil
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			s.processPart(part)
		}
	}
	if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonUnspecified {
		s.msg.RawStopReason = string(cand.FinishReason)
		s.msg.StopReason = mapFinishReason(cand.FinishReason)
	}
	return nil
}

func (s *stream) processPart(part *genai.Part) {
	if part == nil {
		return
	}
	kind := "text"
	if part.Thought {
		kind = "thinking"
	}
	// A signature-only part belongs to the thinking block before it.
	if part.Text == "" {
		if len(part.ThoughtSignature) > 0 {
			s.attachSignature(part.ThoughtSignature)
		}
		return
	}
	if kind != s.kind {
		s.kind = kind
		s.buf.Reset()
		if kind == "text" {
			s.msg.Content = append(s.msg.Content, sketchui.TextBlock{})
		} else {
			s.msg.Content = append(s.msg.Content, sketchui.ThinkingBlock{})
		}
	}
	s.buf.WriteString(part.Text)
	idx := len(s.msg.Content) - 1

	if kind == "text" {
		s.msg.Content[idx] = sketchui.TextBlock{Text: s.buf.String()}
		s.pending = append(s.pending, sketchui.EventTextDelta{Index: idx, Delta: part.Text})
		return
	}
	tb, _ := s.msg.Content[idx].(sketchui.ThinkingBlock)
	tb.Thinking = s.buf.String()
	if len(part.ThoughtSignature) > 0 {
		tb.Signature = part.ThoughtSignature
	}
	s.msg.Content[idx] = tb
	s.pending = append(s.pending, sketchui.EventThinkingDelta{Index: idx, Delta: part.Text})
}

func (s *stream) attachSignature(sig []byte) {
	for i := len(s.msg.Content) - 1; i >= 0; i-- {
		if tb, ok := s.msg.Content[i].(sketchui.ThinkingBlock); ok {
			tb.Signature = sig
			s.msg.Content[i] = tb
			return
		}
	}
}

// setUsage normalises usage metadata: cached tokens are reported separately
// and subtracted from input, clamped at zero.
func (s *stream) setUsage(u *genai.GenerateContentResponseUsageMetadata) {
	cached := int(u.CachedContentTokenCount)
	s.msg.Usage = sketchui.Usage{
		InputTokens:     max(0, int(u.PromptTokenCount)-cached),
		OutputTokens:    int(u.CandidatesTokenCount),
		CacheReadTokens: cached,
	}
}

func (s *stream) finish() {
	s.state = sketchui.StreamStateComplete
	if s.msg.StopReason == "" {
		s.msg.StopReason = sketchui.StopEndTurn
		s.msg.RawStopReason = string(sketchui.StopEndTurn)
	}
}

func (s *stream) fail(err error, reason sketchui.StopReason, raw string) {
	s.state = sketchui.StreamStateError
	s.err = err
	s.msg.StopReason = reason
	s.msg.RawStopReason = raw
}

// State returns the current stream state.
func (s *stream) State() sketchui.StreamState {
	return s.state
}

// Message returns the assembled, possibly partial, AssistantMessage.
func (s *stream) Message() (sketchui.AssistantMessage, error) {
	if s.state == sketchui.StreamStateNew {
		return sketchui.AssistantMessage{}, fmt.Errorf("gemini: %w", sketchui.ErrStreamNotReady)
	}
	return s.msg, nil
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state != sketchui.StreamStateComplete && s.state != sketchui.StreamStateError {
		s.state = sketchui.StreamStateClosed
		s.msg.StopReason = sketchui.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}

func mapFinishReason(r genai.FinishReason) sketchui.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return sketchui.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return sketchui.StopLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return sketchui.StopError
	default:
		return sketchui.StopUnknown
	}
}
