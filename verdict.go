package sketchui

import (
	"regexp"
	"strings"
)

// Verdict is a sealed interface representing the Evaluator's judgement of a
// candidate: either Approved or Rejected.
// The unexported marker method prevents external implementations.
type Verdict interface {
	isVerdict()
	// Text returns the full verdict text as stored on the session.
	Text() string
}

// Approved is a verdict whose text carries the approval marker.
type Approved struct {
	Message string
}

func (Approved) isVerdict() {}

// Text returns the evaluator's message.
func (v Approved) Text() string { return v.Message }

// Rejected is a verdict without the approval marker. Critique is the full
// evaluator output, or the error text when the evaluator call failed.
type Rejected struct {
	Critique string
}

func (Rejected) isVerdict() {}

// Text returns the critique.
func (v Rejected) Text() string { return v.Critique }

// Interface compliance checks.
var (
	_ Verdict = Approved{}
	_ Verdict = Rejected{}
)

// Classify turns raw evaluator output into a Verdict. The verdict is
// Approved iff marker occurs anywhere in text, compared case-insensitively.
// A quoted marker inside a critique therefore also approves.
func Classify(text, marker string) Verdict {
	if marker != "" && strings.Contains(strings.ToUpper(text), strings.ToUpper(marker)) {
		return Approved{Message: text}
	}
	return Rejected{Critique: text}
}

// IsApproved reports whether v is an Approved verdict.
func IsApproved(v Verdict) bool {
	_, ok := v.(Approved)
	return ok
}

// Feedback derives the text carried into the next Generator call. Only a
// Rejected verdict produces feedback. Every occurrence of marker is removed
// (case-insensitively) so a stale approval signal never reaches a retry
// prompt; the rest of the critique is kept. Blank results yield "".
func Feedback(v Verdict, marker string) string {
	r, ok := v.(Rejected)
	if !ok {
		return ""
	}
	return StripMarker(r.Critique, marker)
}

// StripMarker removes every case-insensitive occurrence of marker from text
// and trims the result.
func StripMarker(text, marker string) string {
	if marker != "" {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(marker))
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
