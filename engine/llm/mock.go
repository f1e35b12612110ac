package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// MockLLM is a mock implementation of the langchaingo model interface for
// testing and the "mock" provider.
type MockLLM struct {
	model string
	// Response, when set, is returned verbatim for every call.
	Response string
}

// NewMockLLM creates a new mock LLM
func NewMockLLM(model string) *MockLLM {
	return &MockLLM{model: model}
}

// GenerateContent implements the llms.Model interface with predictable responses
func (m *MockLLM) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	responseText := m.Response
	if responseText == "" {
		var prompt string
		for _, message := range messages {
			for _, part := range message.Parts {
				if textPart, ok := part.(llms.TextContent); ok {
					prompt += textPart.Text + " "
				}
			}
		}
		responseText = fmt.Sprintf("Mock response for: %s", prompt)
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: responseText}},
	}, nil
}

// Call implements the legacy Call interface
func (m *MockLLM) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	if m.Response != "" {
		return m.Response, nil
	}
	return fmt.Sprintf("Mock response for: %s", prompt), nil
}
