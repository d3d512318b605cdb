// Package translate provides the external translator used by the catalog
// pipeline. The pipeline depends only on the Translator interface; the
// HTTP provider plumbing (Google AI, Groq, Ollama, custom OpenAI-compatible
// endpoints) lives behind it.
package translate

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
)

// Translator converts text from one language to another. Implementations
// must leave markup tags and no-translate spans in the text untouched.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// ---------------------------------------------------------------------------
// Debug translator
// ---------------------------------------------------------------------------

// DebugFunc is an offline translation hook used for deterministic testing.
// It receives one leaf value and returns its "translation".
type DebugFunc func(string) string

// DebugTranslator wraps a DebugFunc as a Translator. The pipeline also
// applies the hook leaf-by-leaf directly, skipping the markup round trip,
// when one is configured.
type DebugTranslator struct {
	Fn DebugFunc
}

// Translate applies the debug function to the whole document.
func (d DebugTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	return d.Fn(text), nil
}

// ---------------------------------------------------------------------------
// Environment configuration
// ---------------------------------------------------------------------------

// EnvConfig holds provider settings read from the environment. Flags take
// precedence over these; these take precedence over the credential store.
type EnvConfig struct {
	APIKey     string        `env:"TRANSCAT_API_KEY"`
	Proxy      string        `env:"TRANSCAT_PROXY"`
	Timeout    time.Duration `env:"TRANSCAT_TIMEOUT"`
	MaxRetries int           `env:"TRANSCAT_MAX_RETRIES"`
}

// EnvDefaults parses provider settings from the environment.
func EnvDefaults() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}
