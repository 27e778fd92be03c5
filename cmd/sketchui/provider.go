package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/anthropic"
	"github.com/fwojciec/sketchui/gemini"
	"github.com/fwojciec/sketchui/groq"
)

// envKeys holds the provider API keys read from the environment in main().
type envKeys struct {
	Groq      string
	Anthropic string
	Gemini    string
}

// resolveProvider selects and constructs the provider. All env var values are
// passed in as parameters; env is only read in main().
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag string, env envKeys) (sketchui.Provider, error) {
	provider := providerFlag

	// Auto-detect from env vars if no flag.
	if provider == "" {
		var found []string
		if env.Groq != "" {
			found = append(found, "groq")
		}
		if env.Anthropic != "" {
			found = append(found, "anthropic")
		}
		if env.Gemini != "" {
			found = append(found, "gemini")
		}
		switch len(found) {
		case 0:
			return nil, fmt.Errorf("no API key found: set GROQ_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY (or use -provider and -api-key flags): %w", sketchui.ErrConfiguration)
		case 1:
			provider = found[0]
		default:
			return nil, fmt.Errorf("multiple API keys found (%s): use -provider flag to select: %w", strings.Join(found, ", "), sketchui.ErrConfiguration)
		}
	}

	// Resolve API key: explicit flag overrides env var.
	key := apiKeyFlag
	switch provider {
	case "groq":
		if key == "" {
			key = env.Groq
		}
		if key == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set (use -api-key flag or environment variable): %w", sketchui.ErrConfiguration)
		}
		return groq.New(key), nil
	case "anthropic":
		if key == "" {
			key = env.Anthropic
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use -api-key flag or environment variable): %w", sketchui.ErrConfiguration)
		}
		return anthropic.New(key), nil
	case "gemini":
		if key == "" {
			key = env.Gemini
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable): %w", sketchui.ErrConfiguration)
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"groq\", \"anthropic\" or \"gemini\": %w", provider, sketchui.ErrConfiguration)
	}
}
