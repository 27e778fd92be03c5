// Command sketchui turns a UI sketch into HTML, CSS and JavaScript. A vision
// model generates a candidate, a second call judges it against the sketch,
// and the critique is fed back until the candidate is approved or the
// attempt budget runs out.
//
// Usage:
//
//	GROQ_API_KEY=gsk-...      sketchui -sketch dashboard.png [flags]
//	ANTHROPIC_API_KEY=sk-...  sketchui -sketch 'sketches/**/*.png' [flags]
//	GEMINI_API_KEY=gk-...     sketchui -sketch dashboard.png -tui [flags]
//
// Flags:
//
//	-sketch string       Sketch image path or doublestar glob (batch mode)
//	-prompt string       Instruction for the generator
//	-provider string     Provider: groq, anthropic, gemini (auto-detected from env vars if omitted)
//	-model string        Model ID (default: provider default)
//	-api-key string      API key (overrides provider's env var)
//	-attempts int        Rejected verdicts tolerated before giving up (default 8)
//	-marker string       Approval marker (default "**APPROVED**")
//	-approval-first      Honour an approval that arrives at the attempt limit
//	-out string          Output directory (default "ui_output")
//	-report string       Directory for JSON session reports
//	-db string           SQLite database recording session history
//	-serve string        Serve the output directory at this address when done
//	-tui                 Run the interactive terminal UI
//	-config string       YAML configuration file; flags override it
//	-timeout duration    Maximum duration of one session
//	-log-level string    Log level (default "info", or SKETCHUI_LOG_LEVEL)
//	-log-json            Log as JSON
//	-history int         List the N most recent sessions from -db and exit
//	-show string         Print one session from -db and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/agent"
	bt "github.com/fwojciec/sketchui/bubbletea"
	"github.com/fwojciec/sketchui/fs"
	"github.com/fwojciec/sketchui/goldmark"
	"github.com/fwojciec/sketchui/llm"
	"github.com/fwojciec/sketchui/preview"
)

const terminalWidth = 100

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "sketchui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Args[1:], os.Getenv("SKETCHUI_LOG_LEVEL"), os.Stderr)
	if err != nil {
		return err
	}
	// The TUI owns the terminal; its sessions log nowhere.
	var logOut io.Writer = os.Stderr
	if cfg.TUI {
		logOut = io.Discard
	}
	logger := newLogger(logOut, cfg)

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.browsing() {
		return browseHistory(ctx, cfg, os.Stdout)
	}

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, cfg.Provider, cfg.APIKey, envKeys{
		Groq:      os.Getenv("GROQ_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		Gemini:    os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return err
	}

	paths, err := fs.ResolveSketches(cfg.Sketch)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no sketches match %q: %w", cfg.Sketch, sketchui.ErrValidation)
	}

	report, history, closeSinks, err := openSinks(cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	deltas := &relay{}
	gen := llm.NewGenerator(provider, cfg.Marker, llm.WithModel(cfg.Model), llm.WithEventHandler(deltas.emit), llm.WithLogger(logger))
	eval := llm.NewEvaluator(provider, cfg.Marker, llm.WithModel(cfg.Model), llm.WithLogger(logger))
	loop := agent.New(gen, eval, goldmark.Parser{},
		agent.WithPolicy(cfg.policy()),
		agent.WithLogger(logger),
	)
	r := &runner{
		loop:    loop,
		relay:   deltas,
		timeout: cfg.Timeout,
		report:  report,
		history: history,
		logger:  logger,
	}

	if cfg.TUI {
		if len(paths) > 1 {
			return fmt.Errorf("the TUI takes a single sketch, %q matches %d: %w", cfg.Sketch, len(paths), sketchui.ErrValidation)
		}
		if err := runTUI(ctx, r, paths[0], cfg); err != nil {
			return err
		}
	} else {
		p := &printer{w: os.Stdout, width: terminalWidth, limit: cfg.Attempts, theme: sketchui.DefaultTheme()}
		if err := r.batch(ctx, paths, cfg.Prompt, cfg.Out, p.handle); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "output written to %s\n", cfg.Out)
	}

	if cfg.Serve != "" {
		return serve(ctx, cfg, logger)
	}
	return nil
}

func runTUI(ctx context.Context, r *runner, path string, cfg config) error {
	runFn := func(ctx context.Context, instruction string, onEvent func(sketchui.Event)) (sketchui.Result, error) {
		return r.session(ctx, path, instruction, cfg.Out, onEvent)
	}
	m := bt.New(runFn, path, sketchui.DefaultTheme(),
		bt.WithInstruction(cfg.Prompt),
		bt.WithAttemptLimit(cfg.Attempts),
	)
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cfg config, logger *slog.Logger) error {
	srv, err := preview.Listen(cfg.Serve, preview.NewRouter(cfg.Out, logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "serving UI at %s (Ctrl+C to stop)\n", srv.URL())
	return srv.Serve(ctx)
}
