// Package engine holds the LLM backends that turn a prompt into a raw
// completion. Each backend is a thin transport; prompt construction and
// response validation live in the testcase package.
package engine

import (
	"context"
	"fmt"

	"autotestcase/internal/config"
)

// Engine is an LLM backend.
type Engine interface {
	// Name is the backend's display name, e.g. "OpenAI".
	Name() string
	Model() string
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewFromConfig creates the engine selected by cfg.AIEngine.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Engine, error) {
	switch cfg.Engine() {
	case "openai":
		client, err := NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Timeout:     cfg.GetOpenAITimeout(),
			Temperature: cfg.OpenAI.Temperature,
			MaxRetries:  cfg.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			BaseURL:     cfg.Gemini.BaseURL,
			Model:       cfg.Gemini.Model,
			Timeout:     cfg.GetGeminiTimeout(),
			Temperature: cfg.Gemini.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI engine: %s", cfg.AIEngine)
	}
}
