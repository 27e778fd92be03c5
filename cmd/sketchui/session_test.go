package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/agent"
	"github.com/fwojciec/sketchui/goldmark"
	sketchjson "github.com/fwojciec/sketchui/json"
	"github.com/fwojciec/sketchui/mock"
	"github.com/fwojciec/sketchui/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

const reply = "```html\n<h1>Hi</h1>\n```\n```css\nh1{}\n```\n```javascript\nhi()\n```"

func writeSketch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))
	return path
}

func newRunner(gen sketchui.Generator, eval sketchui.Evaluator) *runner {
	logger := slog.New(slog.DiscardHandler)
	return &runner{
		loop:   agent.New(gen, eval, goldmark.Parser{}, agent.WithLogger(logger)),
		relay:  &relay{},
		logger: logger,
	}
}

func approvingEvaluator() *mock.Evaluator {
	return &mock.Evaluator{EvaluateFn: func(context.Context, sketchui.EvaluateRequest) (string, error) {
		return "**APPROVED**", nil
	}}
}

func staticGenerator(text string) *mock.Generator {
	return &mock.Generator{GenerateFn: func(context.Context, sketchui.GenerateRequest) (string, error) {
		return text, nil
	}}
}

func TestRunner_Session(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSketch(t, dir, "dash.png")
	out := filepath.Join(dir, "out")
	reports := filepath.Join(dir, "reports")
	store, err := sqlite.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := newRunner(staticGenerator(reply), approvingEvaluator())
	r.report = &sketchjson.Sink{Dir: reports}
	r.history = store

	var events []sketchui.Event
	result, err := r.session(context.Background(), path, "Build it", out, func(e sketchui.Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.True(t, result.Approved())
	assert.Equal(t, path, result.SketchRef)
	assert.NotEmpty(t, events)

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", string(html))

	saved, err := sketchjson.Load(filepath.Join(reports, result.SessionID+".json"))
	require.NoError(t, err)
	assert.Equal(t, "Build it", saved.Instruction)

	history, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.SessionID, history[0].SessionID)
}

func TestRunner_SessionRejectsNonImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	r := newRunner(staticGenerator(reply), approvingEvaluator())
	_, err := r.session(context.Background(), path, "Build it", t.TempDir(), nil)
	require.ErrorIs(t, err, sketchui.ErrValidation)
}

func TestRunner_SessionRelaysDeltas(t *testing.T) {
	t.Parallel()

	path := writeSketch(t, t.TempDir(), "dash.png")
	var r *runner
	gen := &mock.Generator{GenerateFn: func(context.Context, sketchui.GenerateRequest) (string, error) {
		r.relay.emit(sketchui.EventTextDelta{Delta: "<h1>"})
		return reply, nil
	}}
	r = newRunner(gen, approvingEvaluator())

	var deltas []string
	_, err := r.session(context.Background(), path, "Build it", t.TempDir(), func(e sketchui.Event) {
		if d, ok := e.(sketchui.EventTextDelta); ok {
			deltas = append(deltas, d.Delta)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"<h1>"}, deltas)

	// The handler is released once the session ends.
	r.relay.emit(sketchui.EventTextDelta{Delta: "late"})
	assert.Equal(t, []string{"<h1>"}, deltas)
}

func TestRunner_SessionTimeout(t *testing.T) {
	t.Parallel()

	path := writeSketch(t, t.TempDir(), "dash.png")
	gen := &mock.Generator{GenerateFn: func(ctx context.Context, _ sketchui.GenerateRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := newRunner(gen, approvingEvaluator())
	r.timeout = 10 * time.Millisecond

	_, err := r.session(context.Background(), path, "Build it", t.TempDir(), nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunner_Batch(t *testing.T) {
	t.Parallel()

	t.Run("each sketch gets its own directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		paths := []string{writeSketch(t, dir, "login.png"), writeSketch(t, dir, "dashboard.png")}
		out := filepath.Join(dir, "out")

		var mu sync.Mutex
		var instructions []string
		gen := &mock.Generator{GenerateFn: func(_ context.Context, req sketchui.GenerateRequest) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			instructions = append(instructions, req.Instruction)
			return reply, nil
		}}
		r := newRunner(gen, approvingEvaluator())

		require.NoError(t, r.batch(context.Background(), paths, "Build it", out, nil))
		for _, name := range []string{"login", "dashboard"} {
			_, err := os.Stat(filepath.Join(out, name, "index.html"))
			require.NoError(t, err, name)
		}
		assert.Equal(t, []string{"Build it", "Build it"}, instructions)
	})

	t.Run("same file name in different directories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		paths := []string{
			writeSketch(t, dir, filepath.Join("mobile", "home.png")),
			writeSketch(t, dir, filepath.Join("desktop", "home.png")),
		}
		out := filepath.Join(dir, "out")

		r := newRunner(staticGenerator(reply), approvingEvaluator())
		require.NoError(t, r.batch(context.Background(), paths, "Build it", out, nil))
		for _, sub := range []string{"mobile", "desktop"} {
			_, err := os.Stat(filepath.Join(out, sub, "home", "index.html"))
			require.NoError(t, err, sub)
		}
	})

	t.Run("failures are collected", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		bad := filepath.Join(dir, "bad.png")
		require.NoError(t, os.WriteFile(bad, []byte("text"), 0o644))
		good := writeSketch(t, dir, "good.png")

		r := newRunner(staticGenerator(reply), approvingEvaluator())
		err := r.batch(context.Background(), []string{bad, good}, "Build it", filepath.Join(dir, "out"), nil)
		require.ErrorIs(t, err, sketchui.ErrValidation)
		assert.Contains(t, err.Error(), "bad.png")

		_, statErr := os.Stat(filepath.Join(dir, "out", "good", "index.html"))
		assert.NoError(t, statErr)
	})

	t.Run("configuration error aborts", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		paths := []string{writeSketch(t, dir, "a.png"), writeSketch(t, dir, "b.png")}

		calls := 0
		gen := &mock.Generator{GenerateFn: func(context.Context, sketchui.GenerateRequest) (string, error) {
			calls++
			return "", fmt.Errorf("groq: bad key: %w", sketchui.ErrConfiguration)
		}}
		r := newRunner(gen, approvingEvaluator())

		err := r.batch(context.Background(), paths, "Build it", filepath.Join(dir, "out"), nil)
		require.ErrorIs(t, err, sketchui.ErrConfiguration)
		assert.Equal(t, 1, calls)
	})
}

func TestOutDirs(t *testing.T) {
	t.Parallel()

	t.Run("single sketch writes into out", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"out"}, outDirs("out", []string{"sketches/dash.png"}))
	})

	t.Run("same directory uses file stems", func(t *testing.T) {
		t.Parallel()
		got := outDirs("out", []string{"s/dash.png", "s/archive.v2.jpg"})
		assert.Equal(t, []string{filepath.Join("out", "dash"), filepath.Join("out", "archive.v2")}, got)
	})

	t.Run("same name in different directories", func(t *testing.T) {
		t.Parallel()
		got := outDirs("out", []string{filepath.Join("s", "a", "x.png"), filepath.Join("s", "b", "x.png")})
		assert.Equal(t, []string{filepath.Join("out", "a", "x"), filepath.Join("out", "b", "x")}, got)
	})

	t.Run("same stem with different extensions", func(t *testing.T) {
		t.Parallel()
		got := outDirs("out", []string{"s/login.jpg", "s/login.png", "s/home.png"})
		assert.Equal(t, []string{filepath.Join("out", "login_jpg"), filepath.Join("out", "login_png"), filepath.Join("out", "home")}, got)
	})
}

func TestOpenSinks(t *testing.T) {
	t.Parallel()

	t.Run("none configured", func(t *testing.T) {
		t.Parallel()
		report, history, closer, err := openSinks(config{})
		require.NoError(t, err)
		assert.Nil(t, report)
		assert.Nil(t, history)
		assert.NoError(t, closer())
	})

	t.Run("report and history", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		report, history, closer, err := openSinks(config{Report: filepath.Join(dir, "r"), DB: filepath.Join(dir, "h.db")})
		require.NoError(t, err)
		assert.IsType(t, &sketchjson.Sink{}, report)
		assert.IsType(t, &sqlite.Store{}, history)
		assert.NoError(t, closer())
	})

	t.Run("db path is a directory", func(t *testing.T) {
		t.Parallel()
		_, _, _, err := openSinks(config{DB: t.TempDir()})
		require.ErrorContains(t, err, "sqlite:")
	})
}
