package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amlstack/advisor/engine/core"
)

// Role constants for message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Request represents a request to the LLM, independent of provider
type Request struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	Options      CallOptions
}

// Message represents a conversation message
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string
	// ToolCalls carries function/tool calls emitted by the assistant.
	// Constraint: only messages with Role == "assistant" may contain ToolCalls.
	ToolCalls []ToolCall
	// ToolResults carries tool responses provided by the runtime.
	// Constraint: only messages with Role == "tool" may contain ToolResults.
	ToolResults []ToolResult
}

// ToolDefinition represents a tool available to the LLM
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// ToolResult represents a tool's response payload for the LLM
type ToolResult struct {
	ID      string
	Name    string
	Content string
}

// CallOptions represents options for the LLM call
type CallOptions struct {
	Temperature     float64
	MaxTokens       int32
	ReasoningEffort core.ReasoningEffort
	UseJSONMode     bool
	ToolChoice      string // "auto", "none", or specific tool name
}

// Response represents the response from the LLM
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *Usage
}

// ToolCall represents a tool invocation request from the LLM
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage // JSON bytes
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the main interface for LLM interactions
type Client interface {
	// GenerateContent sends a request to the LLM and returns a response
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	// Close cleans up any resources held by the client
	Close() error
}

// ValidateConversation asserts role-specific constraints for messages:
// - Only assistant messages may contain ToolCalls
// - Only tool messages may contain ToolResults
// This helps catch wiring mistakes early.
func ValidateConversation(messages []Message) error {
	for i, m := range messages {
		if len(m.ToolCalls) > 0 && m.Role != RoleAssistant {
			return fmt.Errorf("message[%d] role %q cannot contain ToolCalls", i, m.Role)
		}
		if len(m.ToolResults) > 0 && m.Role != RoleTool {
			return fmt.Errorf("message[%d] role %q cannot contain ToolResults", i, m.Role)
		}
	}
	return nil
}
