package core

import (
	"encoding/json"

	"dario.cat/mergo"
)

// ProviderName represents the name of an LLM provider
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGoogle    ProviderName = "google"
	ProviderOllama    ProviderName = "ollama"
	ProviderMock      ProviderName = "mock" // Mock provider for testing
)

// ReasoningEffort controls how much deliberate reasoning the provider is
// asked to spend on a call, for models that support it.
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

type PromptParams struct {
	MaxTokens       int32           `json:"max_tokens,omitempty"       yaml:"max_tokens,omitempty"       mapstructure:"max_tokens,omitempty"`
	Temperature     float64         `json:"temperature,omitempty"      yaml:"temperature,omitempty"      mapstructure:"temperature,omitempty"`
	ReasoningEffort ReasoningEffort `json:"reasoning_effort,omitempty" yaml:"reasoning_effort,omitempty" mapstructure:"reasoning_effort,omitempty"`
}

// ProviderConfig represents provider-specific configuration options
type ProviderConfig struct {
	Provider ProviderName `json:"provider" yaml:"provider" mapstructure:"provider"`
	Model    string       `json:"model"    yaml:"model"    mapstructure:"model"`
	APIKey   string       `json:"api_key"  yaml:"api_key"  mapstructure:"api_key"`
	APIURL   string       `json:"api_url"  yaml:"api_url"  mapstructure:"api_url"`
	Params   PromptParams `json:"params"   yaml:"params"   mapstructure:"params"`
}

// NewProviderConfig creates a new ProviderConfig for the given provider
func NewProviderConfig(provider ProviderName, model string, apiKey string) *ProviderConfig {
	return &ProviderConfig{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
	}
}

// AsJSON converts the provider configuration to a JSON value
func (p *ProviderConfig) AsJSON() (json.RawMessage, error) {
	return json.Marshal(p)
}

// Merge overlays non-zero fields from other onto the configuration.
func (p *ProviderConfig) Merge(other *ProviderConfig) error {
	if other == nil {
		return nil
	}
	return mergo.Merge(p, other, mergo.WithOverride)
}
