package sketchui

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Next has not been called.
	StreamStateStreaming                    // Receiving deltas.
	StreamStateComplete                     // Next returned io.EOF.
	StreamStateError                        // Next returned another error.
	StreamStateClosed                       // Close called before a terminal state.
)

// Stream is a pull-based iterator over one model response. Cancellation
// flows through the context given to Provider.Stream.
//
// Message returns the assembled reply:
//   - Complete: the full message.
//   - Error or Streaming: the text received so far. After an error the
//     StopReason is StopError, or StopAborted when the context ended.
//   - Closed: the partial message with StopAborted; Next then fails with
//     ErrStreamClosed.
//   - New: a zero message and ErrStreamNotReady.
//
// A terminal state reached before Close wins over Closed.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Message() (AssistantMessage, error)
	Close() error
}
