package llm

import (
	"context"
	"fmt"
)

// Generator produces text for a prompt using the named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	Name() string
}

// ModelLister is implemented by providers that can enumerate the models
// available to the configured key.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewGenerator builds the client for a configured provider name.
func NewGenerator(ctx context.Context, provider, apiKey string) (Generator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey), nil
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
