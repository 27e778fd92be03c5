package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/llm"
	"github.com/fwojciec/sketchui/preview"
	"gopkg.in/yaml.v3"
)

// config is the resolved command configuration. Flags override values from
// the -config file; the API key is only ever taken from a flag or the
// environment.
type config struct {
	Sketch        string        `yaml:"sketch"`
	Prompt        string        `yaml:"prompt"`
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	Attempts      int           `yaml:"attempts"`
	Marker        string        `yaml:"marker"`
	ApprovalFirst bool          `yaml:"approval_first"`
	Out           string        `yaml:"out"`
	Report        string        `yaml:"report"`
	DB            string        `yaml:"db"`
	Serve         string        `yaml:"serve"`
	TUI           bool          `yaml:"tui"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`

	APIKey     string `yaml:"-"`
	ConfigPath string `yaml:"-"`
	History    int    `yaml:"-"`
	Show       string `yaml:"-"`
}

// browsing reports whether the command only reads the history database.
func (c config) browsing() bool {
	return c.History > 0 || c.Show != ""
}

func defaults() config {
	return config{
		Prompt:   llm.DefaultInstruction,
		Attempts: sketchui.DefaultAttemptLimit,
		Marker:   sketchui.DefaultApprovalMarker,
		Out:      "ui_output",
		LogLevel: "info",
	}
}

func (c *config) applyDefaults() {
	d := defaults()
	if c.Prompt == "" {
		c.Prompt = d.Prompt
	}
	if c.Attempts == 0 {
		c.Attempts = d.Attempts
	}
	if c.Marker == "" {
		c.Marker = d.Marker
	}
	if c.Out == "" {
		c.Out = d.Out
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// policy returns the refinement policy described by the configuration.
func (c config) policy() sketchui.Policy {
	p := sketchui.DefaultPolicy()
	p.AttemptLimit = c.Attempts
	p.ApprovalMarker = c.Marker
	if c.ApprovalFirst {
		p.TieBreak = sketchui.TieBreakApprovalFirst
	}
	return p
}

// loadConfig parses args, merges the optional YAML file underneath them and
// validates the result. logLevelEnv is the value of SKETCHUI_LOG_LEVEL; it
// wins over the file but not over -log-level.
func loadConfig(args []string, logLevelEnv string, stderr io.Writer) (config, error) {
	fl := defaults()
	fs := flag.NewFlagSet("sketchui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&fl.Sketch, "sketch", "", "Sketch image path or glob (e.g. 'sketches/**/*.png')")
	fs.StringVar(&fl.Prompt, "prompt", fl.Prompt, "Instruction for the generator")
	fs.StringVar(&fl.Provider, "provider", "", "Provider: groq, anthropic, gemini (auto-detected from env vars if omitted)")
	fs.StringVar(&fl.Model, "model", "", "Model ID (default: provider default)")
	fs.StringVar(&fl.APIKey, "api-key", "", "API key (overrides provider's env var)")
	fs.IntVar(&fl.Attempts, "attempts", fl.Attempts, "Rejected verdicts tolerated before giving up")
	fs.StringVar(&fl.Marker, "marker", fl.Marker, "Approval marker the evaluator must emit")
	fs.BoolVar(&fl.ApprovalFirst, "approval-first", false, "Honour an approval that arrives at the attempt limit")
	fs.StringVar(&fl.Out, "out", fl.Out, "Output directory for index.html, style.css and script.js")
	fs.StringVar(&fl.Report, "report", "", "Directory for JSON session reports")
	fs.StringVar(&fl.DB, "db", "", "SQLite database recording session history")
	fs.StringVar(&fl.Serve, "serve", "", "Serve the output directory at this address after generating (e.g. "+preview.DefaultAddr+")")
	fs.BoolVar(&fl.TUI, "tui", false, "Run the interactive terminal UI")
	fs.StringVar(&fl.ConfigPath, "config", "", "YAML configuration file")
	fs.DurationVar(&fl.Timeout, "timeout", 0, "Maximum duration of one session (0 = no limit)")
	fs.StringVar(&fl.LogLevel, "log-level", fl.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&fl.LogJSON, "log-json", false, "Log as JSON")
	fs.IntVar(&fl.History, "history", 0, "List the N most recent sessions from -db and exit")
	fs.StringVar(&fl.Show, "show", "", "Print the session with this ID from -db and exit")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 && fl.Sketch == "" {
		fl.Sketch = fs.Arg(0)
	}

	cfg := fl
	if fl.ConfigPath != "" {
		fileCfg, err := loadFile(fl.ConfigPath)
		if err != nil {
			return config{}, err
		}
		cfg = fileCfg
		cfg.APIKey = fl.APIKey
		cfg.ConfigPath = fl.ConfigPath
		cfg.History = fl.History
		cfg.Show = fl.Show
		fs.Visit(func(f *flag.Flag) {
			overrideFromFlag(&cfg, fl, f.Name)
		})
		if cfg.Sketch == "" {
			cfg.Sketch = fl.Sketch
		}
	}

	if logLevelEnv != "" && !isSet(fs, "log-level") {
		cfg.LogLevel = logLevelEnv
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func overrideFromFlag(cfg *config, fl config, name string) {
	switch name {
	case "sketch":
		cfg.Sketch = fl.Sketch
	case "prompt":
		cfg.Prompt = fl.Prompt
	case "provider":
		cfg.Provider = fl.Provider
	case "model":
		cfg.Model = fl.Model
	case "attempts":
		cfg.Attempts = fl.Attempts
	case "marker":
		cfg.Marker = fl.Marker
	case "approval-first":
		cfg.ApprovalFirst = fl.ApprovalFirst
	case "out":
		cfg.Out = fl.Out
	case "report":
		cfg.Report = fl.Report
	case "db":
		cfg.DB = fl.DB
	case "serve":
		cfg.Serve = fl.Serve
	case "tui":
		cfg.TUI = fl.TUI
	case "timeout":
		cfg.Timeout = fl.Timeout
	case "log-level":
		cfg.LogLevel = fl.LogLevel
	case "log-json":
		cfg.LogJSON = fl.LogJSON
	}
}

// loadFile reads a YAML configuration file.
func loadFile(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c config) validate() error {
	if c.History < 0 {
		return fmt.Errorf("history count must not be negative: %w", sketchui.ErrValidation)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.browsing() {
		if c.DB == "" {
			return fmt.Errorf("-history and -show need -db: %w", sketchui.ErrValidation)
		}
		return nil
	}
	if strings.TrimSpace(c.Sketch) == "" {
		return fmt.Errorf("no sketch given (use -sketch): %w", sketchui.ErrValidation)
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("instruction must not be empty: %w", sketchui.ErrValidation)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %w", sketchui.ErrValidation)
	}
	return c.policy().Validate()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, sketchui.ErrValidation)
	}
	return level, nil
}

// newLogger builds the process logger writing to w.
func newLogger(w io.Writer, cfg config) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
