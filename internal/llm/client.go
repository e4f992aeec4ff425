// Package llm provides the text-completion client abstraction. The rest of
// the system treats the model endpoint as an opaque text-completion oracle:
// prompt in, text out.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies a completion backend.
type Provider string

// Supported providers.
const (
	// ProviderLocal targets any Ollama-compatible completion endpoint.
	ProviderLocal Provider = "local"
	// ProviderGemini targets the Google Gemini API.
	ProviderGemini Provider = "gemini"
)

// Config holds the connection settings for a completion backend.
type Config struct {
	Provider    Provider
	EndpointURL string
	ModelID     string
	APIKey      string
	Timeout     time.Duration
}

// DefaultConfig returns the default local-endpoint configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderLocal,
		EndpointURL: "http://localhost:11434",
		ModelID:     "llama3:8b",
		Timeout:     60 * time.Second,
	}
}

// Client is an abstraction over completion providers.
type Client interface {
	// Complete generates free-text output for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// CompleteJSON generates output constrained to JSON where the provider
	// supports it; the result is stripped of markdown code fences either way.
	CompleteJSON(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a completion client based on configuration.
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderLocal:
		return NewLocalClient(config), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
}
