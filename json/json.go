// Package json persists session results as versioned JSON reports.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/sketchui"
)

const version = 1

// envelope is the v1 wire format for a session report.
type envelope struct {
	Version     int          `json:"version"`
	SessionID   string       `json:"session_id"`
	Sketch      string       `json:"sketch"`
	Instruction string       `json:"instruction"`
	Candidate   candidateDTO `json:"candidate"`
	Verdict     string       `json:"verdict"`
	Termination string       `json:"termination"`
	Approved    bool         `json:"approved"`
	Attempts    int          `json:"attempts"`
	Iterations  int          `json:"iterations"`
	CreatedAt   time.Time    `json:"created_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

type candidateDTO struct {
	Markup string `json:"html"`
	Style  string `json:"css"`
	Script string `json:"javascript"`
	Raw    string `json:"raw,omitempty"`
}

// MarshalResult serializes a Result to JSON in v1 envelope format.
func MarshalResult(r sketchui.Result) ([]byte, error) {
	env := envelope{
		Version:     version,
		SessionID:   r.SessionID,
		Sketch:      r.SketchRef,
		Instruction: r.Instruction,
		Candidate: candidateDTO{
			Markup: r.Candidate.Markup,
			Style:  r.Candidate.Style,
			Script: r.Candidate.Script,
			Raw:    r.Candidate.Raw,
		},
		Verdict:     r.VerdictText,
		Termination: string(r.Termination),
		Approved:    r.Approved(),
		Attempts:    r.Attempts,
		Iterations:  r.Iterations,
		CreatedAt:   r.CreatedAt,
		FinishedAt:  r.FinishedAt,
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalResult deserializes a Result from JSON in v1 envelope format.
func UnmarshalResult(data []byte) (sketchui.Result, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return sketchui.Result{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != version {
		return sketchui.Result{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return sketchui.Result{
		SessionID:   env.SessionID,
		SketchRef:   env.Sketch,
		Instruction: env.Instruction,
		Candidate: sketchui.Candidate{
			Markup: env.Candidate.Markup,
			Style:  env.Candidate.Style,
			Script: env.Candidate.Script,
			Raw:    env.Candidate.Raw,
		},
		VerdictText: env.Verdict,
		Termination: sketchui.Termination(env.Termination),
		Attempts:    env.Attempts,
		Iterations:  env.Iterations,
		CreatedAt:   env.CreatedAt,
		FinishedAt:  env.FinishedAt,
	}, nil
}

// Save writes a Result to a JSON file, creating parent directories as needed.
func Save(path string, r sketchui.Result) error {
	data, err := MarshalResult(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Result from a JSON file.
func Load(path string) (sketchui.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sketchui.Result{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalResult(data)
}

// Sink writes one report per session into Dir, named after the session ID.
type Sink struct {
	Dir string
}

var _ sketchui.ResultSink = (*Sink)(nil)

// Path returns the report path for a session.
func (s *Sink) Path(sessionID string) string {
	return filepath.Join(s.Dir, sessionID+".json")
}

// Save implements sketchui.ResultSink.
func (s *Sink) Save(_ context.Context, r sketchui.Result) error {
	if r.SessionID == "" {
		return fmt.Errorf("json: result has no session id: %w", sketchui.ErrValidation)
	}
	if err := Save(s.Path(r.SessionID), r); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}
