package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/ansi"
	"github.com/fwojciec/sketchui/goldmark"
	"github.com/fwojciec/sketchui/sqlite"
)

// browseHistory prints recorded sessions from the -db store: the -history
// most recent ones as a table, or the single -show session in full.
func browseHistory(ctx context.Context, cfg config, w io.Writer) error {
	store, err := sqlite.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Show != "" {
		r, err := store.Get(ctx, cfg.Show)
		if errors.Is(err, sqlite.ErrNotFound) {
			return fmt.Errorf("session %q is not recorded in %s: %w", cfg.Show, cfg.DB, sketchui.ErrValidation)
		}
		if err != nil {
			return err
		}
		printSession(w, r)
		return nil
	}

	results, err := store.List(ctx, cfg.History)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "no sessions recorded")
		return nil
	}
	fmt.Fprintln(w, historyTable(results))
	return nil
}

func historyTable(results []sketchui.Result) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FINISHED", "SESSION", "RESULT", "ATTEMPTS", "ITERATIONS", "SKETCH")
	for _, r := range results {
		t.Row(
			r.FinishedAt.Local().Format(time.DateTime),
			r.SessionID,
			string(r.Termination),
			strconv.Itoa(r.Attempts),
			strconv.Itoa(r.Iterations),
			r.SketchRef,
		)
	}
	return t.String()
}

func printSession(w io.Writer, r sketchui.Result) {
	fmt.Fprintf(w, "session      %s\n", r.SessionID)
	fmt.Fprintf(w, "sketch       %s\n", r.SketchRef)
	fmt.Fprintf(w, "instruction  %s\n", r.Instruction)
	fmt.Fprintf(w, "result       %s after %d iteration(s), %d rejected\n", r.Termination, r.Iterations, r.Attempts)
	fmt.Fprintf(w, "finished     %s (%s)\n", r.FinishedAt.Local().Format(time.DateTime), r.FinishedAt.Sub(r.CreatedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "candidate    html=%d css=%d js=%d bytes\n", len(r.Candidate.Markup), len(r.Candidate.Style), len(r.Candidate.Script))
	if text := strings.TrimSpace(goldmark.Render(ansi.Sanitize(r.VerdictText), terminalWidth, sketchui.DefaultTheme())); text != "" {
		fmt.Fprintf(w, "\n%s\n", text)
	}
}
