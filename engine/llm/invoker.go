package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/schema"
	"github.com/amlstack/advisor/pkg/logger"
)

// maxToolIterations bounds the tool loop so a misbehaving model cannot
// spin invoking tools forever.
const maxToolIterations = 8

// AgentSpec is a declarative invocation descriptor: a system prompt, an
// output schema, optional callable tools, and generation parameters
// bundled into one value consumed by Invoker.Invoke.
type AgentSpec struct {
	Name         string
	Instructions string
	OutputSchema *schema.Schema
	Tools        []Tool
	Provider     *core.ProviderConfig
}

// Invoker performs schema-validated structured calls against a provider.
type Invoker struct {
	factory Factory
}

func NewInvoker(factory Factory) *Invoker {
	if factory == nil {
		factory = NewDefaultFactory()
	}
	return &Invoker{factory: factory}
}

// Invoke runs one structured call: it sends the input to the model under
// the spec's instructions, executes bound tools while the model requests
// them, then decodes the final content as JSON and validates it against
// the spec's output schema. Schema mismatches surface as a typed error
// with code SCHEMA_VALIDATION_ERROR.
func (i *Invoker) Invoke(ctx context.Context, spec *AgentSpec, input string) (core.Output, error) {
	if spec == nil {
		return nil, core.NewError(
			fmt.Errorf("agent spec is required"),
			core.ErrCodeInvalidConfig,
			nil,
		)
	}
	client, err := i.factory.CreateClient(spec.Provider)
	if err != nil {
		return nil, core.NewError(err, core.ErrCodeInvalidConfig, map[string]any{"agent": spec.Name})
	}
	defer client.Close()

	req := i.buildRequest(spec, input)
	log := logger.FromContext(ctx).With("agent", spec.Name)
	for iteration := 0; iteration < maxToolIterations; iteration++ {
		resp, err := client.GenerateContent(ctx, req)
		if err != nil {
			return nil, core.NewError(err, core.ErrCodeLLMGeneration, map[string]any{"agent": spec.Name})
		}
		if len(resp.ToolCalls) == 0 {
			return i.handleFinal(ctx, spec, resp)
		}
		log.Debug("Executing tool calls", "count", len(resp.ToolCalls), "iteration", iteration)
		if err := i.executeToolCalls(ctx, spec, req, resp); err != nil {
			return nil, err
		}
	}
	return nil, core.NewError(
		fmt.Errorf("tool loop exceeded %d iterations", maxToolIterations),
		core.ErrCodeToolExecution,
		map[string]any{"agent": spec.Name},
	)
}

func (i *Invoker) buildRequest(spec *AgentSpec, input string) *Request {
	req := &Request{
		SystemPrompt: i.systemPrompt(spec),
		Messages:     []Message{{Role: RoleUser, Content: input}},
		Tools:        toolDefinitions(spec.Tools),
	}
	if spec.Provider != nil {
		req.Options.MaxTokens = spec.Provider.Params.MaxTokens
		req.Options.Temperature = spec.Provider.Params.Temperature
		req.Options.ReasoningEffort = spec.Provider.Params.ReasoningEffort
	}
	if len(req.Tools) > 0 {
		req.Options.ToolChoice = "auto"
	} else if spec.OutputSchema != nil {
		req.Options.UseJSONMode = true
	}
	return req
}

// systemPrompt appends the JSON enforcement block when a schema is set.
func (i *Invoker) systemPrompt(spec *AgentSpec) string {
	prompt := spec.Instructions
	if spec.OutputSchema == nil {
		return prompt
	}
	return prompt + "\n\nIMPORTANT: You MUST respond with a valid JSON object only. " +
		"Do not include any HTML, markdown, or other formatting. " +
		"Return only valid JSON matching the following schema: " + spec.OutputSchema.String()
}

// executeToolCalls runs every requested tool and appends the exchange to
// the conversation so the next model call sees the results.
func (i *Invoker) executeToolCalls(ctx context.Context, spec *AgentSpec, req *Request, resp *Response) error {
	assistant := Message{Role: RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls}
	results := make([]ToolResult, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		tool := findTool(spec.Tools, call.Name)
		if tool == nil {
			return core.NewError(
				fmt.Errorf("tool not found: %s", call.Name),
				core.ErrCodeToolNotFound,
				map[string]any{"agent": spec.Name, "tool": call.Name},
			)
		}
		content, err := tool.Call(ctx, call.Arguments)
		if err != nil {
			return core.NewError(err, core.ErrCodeToolExecution, map[string]any{
				"agent": spec.Name,
				"tool":  call.Name,
			})
		}
		results = append(results, ToolResult{ID: call.ID, Name: call.Name, Content: content})
	}
	req.Messages = append(req.Messages, assistant, Message{Role: RoleTool, ToolResults: results})
	return nil
}

func (i *Invoker) handleFinal(ctx context.Context, spec *AgentSpec, resp *Response) (core.Output, error) {
	output, err := parseContent(resp.Content)
	if err != nil {
		return nil, core.NewError(err, core.ErrCodeInvalidResponse, map[string]any{"agent": spec.Name})
	}
	if spec.OutputSchema != nil {
		if _, err := spec.OutputSchema.Validate(ctx, map[string]any(output)); err != nil {
			return nil, core.NewError(err, core.ErrCodeSchemaValidation, map[string]any{"agent": spec.Name})
		}
	}
	return output, nil
}

// parseContent decodes the model content as a JSON object, tolerating a
// fenced code block wrapper.
func parseContent(content string) (core.Output, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(trimmed), &output); err != nil {
		return nil, fmt.Errorf("expected structured output but received invalid JSON: %w", err)
	}
	return core.Output(output), nil
}
