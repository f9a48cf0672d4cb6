/*
Package provider wraps the LLM chat-completion backends the extraction
pipeline can talk to. All of them expose the same single-shot JSON-mode
completion; the engine never streams and never calls tools.
*/
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// requestTimeout bounds every completion call. Extraction treats a
// timeout like any other per-document failure.
const requestTimeout = 25 * time.Second

// ErrNoAPIKey signals that a provider requiring credentials has none.
// The graph builder degrades to template output when it sees this.
var ErrNoAPIKey = errors.New("no API key configured for provider")

type Interface interface {
	// CompleteJSON issues one chat completion with temperature 0 and a
	// JSON response format, returning the raw assistant text.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Config selects and parameterizes a provider.
type Config struct {
	Name   string
	Model  string
	APIKey string
}

/*
New constructs the provider named in cfg. OpenAI and Anthropic require
an API key; Ollama talks to a local daemon and does not.
*/
func New(cfg Config) (Interface, error) {
	switch cfg.Name {
	case "", "openai":
		if cfg.APIKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "ollama":
		return NewOllamaProvider(cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// KeyVar returns the environment variable a provider's credential is
// resolved from.
func KeyVar(name string) string {
	switch name {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
