package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/agent"
	"github.com/fwojciec/sketchui/fs"
	"github.com/fwojciec/sketchui/json"
	"github.com/fwojciec/sketchui/sqlite"
)

// relay forwards provider stream deltas to whichever session handler is
// currently registered. The generator is built once; sessions come and go.
type relay struct {
	mu sync.Mutex
	fn func(sketchui.Event)
}

func (r *relay) set(fn func(sketchui.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn = fn
}

func (r *relay) emit(e sketchui.Event) {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

// runner executes sessions and hands their results to the configured sinks.
type runner struct {
	loop    *agent.Loop
	relay   *relay
	timeout time.Duration
	report  sketchui.ResultSink
	history sketchui.ResultSink
	logger  *slog.Logger
}

// session runs the sketch at path and writes its candidate into outDir.
func (r *runner) session(ctx context.Context, path, instruction, outDir string, onEvent func(sketchui.Event)) (sketchui.Result, error) {
	sketch, err := fs.LoadSketch(path)
	if err != nil {
		return sketchui.Result{}, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if r.relay != nil {
		r.relay.set(onEvent)
		defer r.relay.set(nil)
	}
	result, err := r.loop.Run(ctx, sketch, instruction, agent.WithEventHandler(onEvent))
	if err != nil {
		return sketchui.Result{}, err
	}

	sinks := sketchui.MultiSink{&fs.Sink{Dir: outDir}}
	if r.report != nil {
		sinks = append(sinks, r.report)
	}
	if r.history != nil {
		sinks = append(sinks, r.history)
	}
	if err := sinks.Save(ctx, result); err != nil {
		return result, fmt.Errorf("save result: %w", err)
	}
	r.logger.Info("result saved", "session", result.SessionID, "out", outDir)
	return result, nil
}

// batch runs every sketch in turn. A configuration error aborts the batch;
// other failures are logged and reported together at the end.
func (r *runner) batch(ctx context.Context, paths []string, instruction, out string, onEvent func(sketchui.Event)) error {
	var errs []error
	dirs := outDirs(out, paths)
	for i, path := range paths {
		dir := dirs[i]
		_, err := r.session(ctx, path, instruction, dir, onEvent)
		switch {
		case err == nil:
		case errors.Is(err, sketchui.ErrConfiguration), ctx.Err() != nil:
			return err
		default:
			r.logger.Error("session failed", "sketch", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// outDirs returns one output directory per sketch. A single sketch writes
// straight into out. In batch mode each sketch gets a subdirectory named
// after its path relative to the deepest directory shared by all sketches,
// without the extension. Sketches that would still share a directory, such
// as a.png and a.jpg, keep their extension as a suffix.
func outDirs(out string, paths []string) []string {
	if len(paths) == 1 {
		return []string{out}
	}
	root := commonDir(paths)
	names := make([]string, len(paths))
	seen := make(map[string]int, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		names[i] = strings.TrimSuffix(rel, filepath.Ext(rel))
		seen[names[i]]++
	}
	dirs := make([]string, len(paths))
	for i, p := range paths {
		if ext := strings.TrimPrefix(filepath.Ext(p), "."); seen[names[i]] > 1 && ext != "" {
			names[i] += "_" + ext
		}
		dirs[i] = filepath.Join(out, names[i])
	}
	return dirs
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !within(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, filepath.Dir(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// openSinks opens the optional report and history sinks. The returned
// closer releases the history database.
func openSinks(cfg config) (report, history sketchui.ResultSink, closer func() error, err error) {
	closer = func() error { return nil }
	if cfg.Report != "" {
		report = &json.Sink{Dir: cfg.Report}
	}
	if cfg.DB != "" {
		store, err := sqlite.Open(cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		history = store
		closer = store.Close
	}
	return report, history, closer, nil
}
