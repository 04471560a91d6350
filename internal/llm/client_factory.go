package llm

import (
	"context"
	"fmt"
	"time"
)

// FactoryConfig selects and configures a provider.
type FactoryConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient builds a Client from config. Unknown providers are an error at
// startup rather than a runtime surprise.
func NewClient(cfg FactoryConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		c := DefaultOpenAIConfig(cfg.APIKey)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			c.Timeout = cfg.Timeout
		}
		return NewOpenAIClientWithConfig(c), nil
	case "anthropic":
		c := DefaultAnthropicConfig(cfg.APIKey)
		if cfg.Model != "" {
			c.Model = cfg.Model
		}
		if cfg.BaseURL != "" {
			c.BaseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			c.Timeout = cfg.Timeout
		}
		return NewAnthropicClientWithConfig(c), nil
	case "mock":
		return &StaticClient{Reply: "This is a development build; no model is configured."}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// StaticClient returns a fixed reply. Used by the mock provider and tests.
type StaticClient struct {
	Reply string
	Err   error
}

// Complete returns the static reply.
func (s *StaticClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem returns the static reply.
func (s *StaticClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}
