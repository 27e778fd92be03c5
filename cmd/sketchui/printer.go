package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/ansi"
	"github.com/fwojciec/sketchui/goldmark"
)

// printer writes session progress to a terminal when the TUI is off.
type printer struct {
	w     io.Writer
	width int
	limit int
	theme sketchui.Theme
}

func (p *printer) handle(e sketchui.Event) {
	switch e := e.(type) {
	case sketchui.EventStateChanged:
		switch e.State {
		case sketchui.StateGenerating:
			fmt.Fprintf(p.w, "iteration %d: generating candidate\n", e.Iteration)
		case sketchui.StateEvaluating:
			fmt.Fprintf(p.w, "iteration %d: evaluating candidate\n", e.Iteration)
		}
	case sketchui.EventCandidate:
		c := e.Candidate
		fmt.Fprintf(p.w, "iteration %d: candidate html=%d css=%d js=%d bytes\n",
			e.Iteration, len(c.Markup), len(c.Style), len(c.Script))
	case sketchui.EventVerdict:
		if sketchui.IsApproved(e.Verdict) {
			fmt.Fprintf(p.w, "iteration %d: approved\n", e.Iteration)
		} else {
			fmt.Fprintf(p.w, "iteration %d: rejected (attempt %d/%d)\n", e.Iteration, e.Attempts, p.limit)
		}
		if text := strings.TrimSpace(goldmark.Render(ansi.Sanitize(e.Verdict.Text()), p.width, p.theme)); text != "" {
			fmt.Fprintln(p.w, text)
		}
	case sketchui.EventFinished:
		r := e.Result
		switch {
		case r.Approved():
			fmt.Fprintf(p.w, "approved after %d iteration(s)\n", r.Iterations)
		default:
			fmt.Fprintf(p.w, "gave up after %d rejected attempt(s)\n", r.Attempts)
		}
	}
}
