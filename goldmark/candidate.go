package goldmark

import (
	"strings"

	"github.com/fwojciec/sketchui"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parser implements sketchui.CandidateParser over the goldmark AST.
type Parser struct{}

var _ sketchui.CandidateParser = Parser{}

// ParseCandidate implements sketchui.CandidateParser.
func (Parser) ParseCandidate(text string) sketchui.Candidate {
	return ParseCandidate(text)
}

// ParseCandidate extracts the first html, css and javascript (or js) fenced
// blocks from generator output. Missing segments are left empty; Raw is
// set to the input unchanged.
func ParseCandidate(source string) sketchui.Candidate {
	c := sketchui.Candidate{Raw: source}
	if source == "" {
		return c
	}
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var dst *string
		switch strings.ToLower(string(block.Language(src))) {
		case "html":
			dst = &c.Markup
		case "css":
			dst = &c.Style
		case "javascript", "js":
			dst = &c.Script
		default:
			return ast.WalkSkipChildren, nil
		}
		if *dst == "" {
			*dst = blockContent(block, src)
		}
		return ast.WalkSkipChildren, nil
	})
	return c
}

func blockContent(n *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return strings.TrimSpace(b.String())
}
