package sketchui

// Candidate is a generated UI implementation. Markup, Style and Script are
// the segments parsed out of Raw; a segment missing from Raw is empty.
// Raw is the full Generator output and is what the Evaluator judges.
type Candidate struct {
	Markup string
	Style  string
	Script string
	Raw    string
}

// Empty reports whether no segment could be parsed from the output.
func (c Candidate) Empty() bool {
	return c.Markup == "" && c.Style == "" && c.Script == ""
}

// CandidateParser splits raw Generator output into a Candidate. Parsing is
// lenient: implementations never fail, they leave missing segments empty.
type CandidateParser interface {
	ParseCandidate(text string) Candidate
}

// CandidateParserFunc adapts a function to CandidateParser.
type CandidateParserFunc func(text string) Candidate

// ParseCandidate calls f(text).
func (f CandidateParserFunc) ParseCandidate(text string) Candidate { return f(text) }
