package sketchui

// Event is a sealed interface representing a progress event. Provider
// streams emit the delta events; the refinement loop emits the session
// events. Transport/protocol errors come from Next()'s error return, not
// from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta represents a text content delta.
type EventTextDelta struct {
	Index int
	Delta string
}

func (EventTextDelta) event() {}

// EventThinkingDelta represents a thinking content delta.
type EventThinkingDelta struct {
	Index int
	Delta string
}

func (EventThinkingDelta) event() {}

// EventStateChanged signals that a session entered a new controller state.
// Iteration counts generate/evaluate pairs starting at 1.
type EventStateChanged struct {
	SessionID string
	State     State
	Iteration int
}

func (EventStateChanged) event() {}

// EventCandidate carries the candidate produced by a Generator call.
type EventCandidate struct {
	SessionID string
	Iteration int
	Candidate Candidate
}

func (EventCandidate) event() {}

// EventVerdict carries the classified result of an Evaluator call.
// Attempts is the session's attempt count after classification.
type EventVerdict struct {
	SessionID string
	Iteration int
	Verdict   Verdict
	Attempts  int
}

func (EventVerdict) event() {}

// EventFinished signals that a session reached StateDone.
type EventFinished struct {
	Result Result
}

func (EventFinished) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventThinkingDelta{}
	_ Event = EventStateChanged{}
	_ Event = EventCandidate{}
	_ Event = EventVerdict{}
	_ Event = EventFinished{}
)
