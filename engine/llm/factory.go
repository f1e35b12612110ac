package llm

import "github.com/amlstack/advisor/engine/core"

// Factory creates Client instances based on provider configuration
type Factory interface {
	// CreateClient creates a new Client for the given provider
	CreateClient(config *core.ProviderConfig) (Client, error)
}

type defaultFactory struct{}

// NewDefaultFactory returns a factory backed by the langchaingo adapter.
func NewDefaultFactory() Factory {
	return &defaultFactory{}
}

func (f *defaultFactory) CreateClient(config *core.ProviderConfig) (Client, error) {
	return NewLangChainAdapter(config)
}
