package sketchui

import (
	"fmt"
	"strings"
)

const (
	// DefaultAttemptLimit is the number of rejected verdicts tolerated
	// before a session gives up.
	DefaultAttemptLimit = 8

	// DefaultApprovalMarker is the token whose presence approves a candidate.
	DefaultApprovalMarker = "**APPROVED**"

	// ExhaustionMarker is appended to the stored verdict text when a session
	// stops on the attempt limit.
	ExhaustionMarker = "\nToo many retries. Exiting."
)

// RejectionMarker derives the token an evaluator is told to use when it
// rejects, "**APPROVED**" becoming "**NOT APPROVED**". Emphasis characters
// around the marker are kept around the whole phrase.
func RejectionMarker(marker string) string {
	core := strings.Trim(marker, "*_")
	wrap := marker[:strings.Index(marker, core)]
	return wrap + "NOT " + core + wrap
}

// TieBreak selects which check wins when a session has hit its attempt
// limit and the latest verdict approves at the same time.
type TieBreak int

const (
	// TieBreakLimitFirst checks the attempt limit before approval. Default.
	TieBreakLimitFirst TieBreak = iota
	// TieBreakApprovalFirst honours an approval even at the limit.
	TieBreakApprovalFirst
)

// String returns the tie-break name.
func (t TieBreak) String() string {
	switch t {
	case TieBreakLimitFirst:
		return "limit_first"
	case TieBreakApprovalFirst:
		return "approval_first"
	default:
		return fmt.Sprintf("TieBreak(%d)", int(t))
	}
}

// Policy configures the refinement loop.
type Policy struct {
	AttemptLimit   int
	ApprovalMarker string
	TieBreak       TieBreak
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		AttemptLimit:   DefaultAttemptLimit,
		ApprovalMarker: DefaultApprovalMarker,
		TieBreak:       TieBreakLimitFirst,
	}
}

// Validate checks the policy's fields.
func (p Policy) Validate() error {
	if p.AttemptLimit < 1 {
		return fmt.Errorf("attempt limit must be at least 1, got %d: %w", p.AttemptLimit, ErrValidation)
	}
	if strings.TrimSpace(p.ApprovalMarker) == "" {
		return fmt.Errorf("approval marker must not be empty: %w", ErrValidation)
	}
	if reject := RejectionMarker(p.ApprovalMarker); strings.Contains(strings.ToUpper(reject), strings.ToUpper(p.ApprovalMarker)) {
		return fmt.Errorf("approval marker %q is contained in its rejection token %q: %w", p.ApprovalMarker, reject, ErrValidation)
	}
	switch p.TieBreak {
	case TieBreakLimitFirst, TieBreakApprovalFirst:
	default:
		return fmt.Errorf("unknown tie-break %s: %w", p.TieBreak, ErrValidation)
	}
	return nil
}

// Decision is the outcome of the termination policy for one verdict.
type Decision int

const (
	DecisionRetry Decision = iota
	DecisionApproved
	DecisionExhausted
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionApproved:
		return "approved"
	case DecisionExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Decide applies the termination policy to the latest verdict. attempts is
// the session's attempt count after the verdict was recorded.
func Decide(p Policy, attempts int, v Verdict) Decision {
	exhausted := attempts >= p.AttemptLimit
	approved := IsApproved(v)
	if p.TieBreak == TieBreakApprovalFirst {
		switch {
		case approved:
			return DecisionApproved
		case exhausted:
			return DecisionExhausted
		}
		return DecisionRetry
	}
	switch {
	case exhausted:
		return DecisionExhausted
	case approved:
		return DecisionApproved
	}
	return DecisionRetry
}
