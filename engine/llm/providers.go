package llm

import (
	"context"
	"fmt"

	"github.com/amlstack/advisor/engine/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// CreateLLMFactory creates an LLM instance based on the provider configuration
func CreateLLMFactory(provider *core.ProviderConfig) (llms.Model, error) {
	switch provider.Provider {
	case core.ProviderOpenAI:
		return createOpenAILLM(provider)
	case core.ProviderAnthropic:
		return createAnthropicLLM(provider)
	case core.ProviderGoogle:
		return createGoogleLLM(provider)
	case core.ProviderOllama:
		return createOllamaLLM(provider)
	case core.ProviderMock:
		return NewMockLLM(provider.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider.Provider)
	}
}

// createOpenAILLM creates an OpenAI LLM instance
func createOpenAILLM(p *core.ProviderConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(p.Model),
	}
	if p.APIKey != "" {
		opts = append(opts, openai.WithToken(p.APIKey))
	}
	if p.APIURL != "" {
		opts = append(opts, openai.WithBaseURL(p.APIURL))
	}
	return openai.New(opts...)
}

// createAnthropicLLM creates an Anthropic LLM instance
func createAnthropicLLM(p *core.ProviderConfig) (llms.Model, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(p.Model),
	}
	if p.APIKey != "" {
		opts = append(opts, anthropic.WithToken(p.APIKey))
	}
	if p.APIURL != "" {
		opts = append(opts, anthropic.WithBaseURL(p.APIURL))
	}
	return anthropic.New(opts...)
}

// createGoogleLLM creates a Google AI LLM instance
func createGoogleLLM(p *core.ProviderConfig) (llms.Model, error) {
	opts := []googleai.Option{
		googleai.WithDefaultModel(p.Model),
	}
	if p.APIKey != "" {
		opts = append(opts, googleai.WithAPIKey(p.APIKey))
	}
	if p.APIURL != "" {
		return nil, fmt.Errorf("googleai does not support custom API URL")
	}
	return googleai.New(context.Background(), opts...)
}

// createOllamaLLM creates an Ollama LLM instance
func createOllamaLLM(p *core.ProviderConfig) (llms.Model, error) {
	opts := []ollama.Option{
		ollama.WithModel(p.Model),
	}
	if p.APIURL != "" {
		opts = append(opts, ollama.WithServerURL(p.APIURL))
	}
	return ollama.New(opts...)
}
