package llm

import (
	"context"
	"encoding/json"
)

// Tool is a callable capability exposed to the model during an invocation.
// Implementations must be safe for concurrent use: the same tool value may
// be bound to several in-flight invocations.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema describing the tool arguments.
	Parameters() map[string]any
	// Call executes the tool with raw JSON arguments and returns the
	// textual payload handed back to the model.
	Call(ctx context.Context, arguments json.RawMessage) (string, error)
}

func toolDefinitions(tools []Tool) []ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func findTool(tools []Tool, name string) Tool {
	for _, t := range tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
