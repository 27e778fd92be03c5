package llm

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/ansi"
)

// Feedback limits applied before a critique is fed back to the generator.
const (
	MaxFeedbackLines = 200
	MaxFeedbackBytes = 16 * 1024
)

// DefaultInstruction is used when the caller gives no instruction.
const DefaultInstruction = "Generate accurate dashboard HTML/CSS/JS from this sketch. " +
	"The CSS HTML styles should be very beautiful..enhance the visual representation"

// GeneratorSystemPrompt asks for the three fenced segments the candidate
// parser extracts.
const GeneratorSystemPrompt = `You turn hand-drawn UI sketches into working web pages.
Reply with exactly three fenced code blocks: one labelled html, one labelled css
and one labelled javascript. The html must not inline the css or javascript;
they are saved as style.css and script.js next to index.html.`

const evaluatorTemplate = `You are a UI evaluator. Compare the HTML/CSS/JS to the original sketch.
If it fully matches, reply only word "%[1]s". If you are not fully satisfied, any tinniest discrepancies, include word "%[2]s".
HTML: `

// GeneratorPrompt builds the user text for one generation. Feedback is
// sanitized before marker is stripped from it, so escape sequences cannot
// hide an approval marker from the strip. Empty marker means
// sketchui.DefaultApprovalMarker.
func GeneratorPrompt(instruction, feedback, marker string) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	if marker == "" {
		marker = sketchui.DefaultApprovalMarker
	}
	feedback = sketchui.StripMarker(ansi.Sanitize(feedback), marker)
	if feedback == "" {
		return instruction
	}
	return instruction + "\nPrevious feedback: " + truncateFeedback(feedback)
}

func truncateFeedback(feedback string) string {
	r := ansi.TruncateHead(feedback, MaxFeedbackLines, MaxFeedbackBytes)
	if !r.Truncated {
		return r.Content
	}
	return r.Content + fmt.Sprintf("\n[feedback truncated: showing %d of %d lines]", r.OutputLines, r.TotalLines)
}

// EvaluatorPrompt builds the user text asking the model to judge
// candidateText, naming marker as the approval token.
func EvaluatorPrompt(marker, candidateText string) string {
	if marker == "" {
		marker = sketchui.DefaultApprovalMarker
	}
	return fmt.Sprintf(evaluatorTemplate, marker, sketchui.RejectionMarker(marker)) + candidateText
}
