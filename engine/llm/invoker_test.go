package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/engine/schema"
)

// scriptedClient replays canned responses and records every request.
type scriptedClient struct {
	responses []*llm.Response
	requests  []*llm.Request
	err       error
	closed    bool
}

func (c *scriptedClient) GenerateContent(_ context.Context, req *llm.Request) (*llm.Response, error) {
	c.requests = append(c.requests, cloneRequest(req))
	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func (c *scriptedClient) Close() error {
	c.closed = true
	return nil
}

func cloneRequest(req *llm.Request) *llm.Request {
	copied := *req
	copied.Messages = append([]llm.Message(nil), req.Messages...)
	return &copied
}

type stubFactory struct {
	client llm.Client
	err    error
}

func (f *stubFactory) CreateClient(*core.ProviderConfig) (llm.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type echoTool struct {
	calls int
}

func (t *echoTool) Name() string        { return "echo" }
func (t *echoTool) Description() string { return "echoes its input" }
func (t *echoTool) Parameters() map[string]any {
	return map[string]any{"type": "object"}
}

func (t *echoTool) Call(_ context.Context, arguments json.RawMessage) (string, error) {
	t.calls++
	return string(arguments), nil
}

func resultSchema() *schema.Schema {
	return &schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{"type": "string"},
		},
		"required":             []string{"verdict"},
		"additionalProperties": false,
	}
}

func TestInvoker_ShouldReturnValidatedOutput(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: `{"verdict":"ok"}`}}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{Name: "agent", Instructions: "decide", OutputSchema: resultSchema()}

	output, err := invoker.Invoke(context.Background(), spec, "input")
	require.NoError(t, err)
	assert.Equal(t, "ok", output["verdict"])
	assert.True(t, client.closed)
	require.Len(t, client.requests, 1)
	assert.True(t, client.requests[0].Options.UseJSONMode)
	assert.Contains(t, client.requests[0].SystemPrompt, "valid JSON")
}

func TestInvoker_ShouldCarryGenerationParamsIntoTheRequest(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: `{"verdict":"ok"}`}}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{
		Name:         "agent",
		OutputSchema: resultSchema(),
		Provider: &core.ProviderConfig{
			Provider: core.ProviderMock,
			Model:    "m",
			Params: core.PromptParams{
				MaxTokens:       32768,
				ReasoningEffort: core.ReasoningEffortHigh,
			},
		},
	}

	_, err := invoker.Invoke(context.Background(), spec, "input")
	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, int32(32768), client.requests[0].Options.MaxTokens)
	assert.Equal(t, core.ReasoningEffortHigh, client.requests[0].Options.ReasoningEffort)
}

func TestInvoker_ShouldTolerateFencedJSON(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: "```json\n{\"verdict\":\"ok\"}\n```"},
	}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	output, err := invoker.Invoke(context.Background(), &llm.AgentSpec{Name: "agent"}, "input")
	require.NoError(t, err)
	assert.Equal(t, "ok", output["verdict"])
}

func TestInvoker_ShouldRunToolLoopThenFinish(t *testing.T) {
	tool := &echoTool{}
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "1", Name: "echo", Arguments: json.RawMessage(`{"query":"q"}`)}}},
		{Content: `{"verdict":"done"}`},
	}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{Name: "agent", Tools: []llm.Tool{tool}, OutputSchema: resultSchema()}

	output, err := invoker.Invoke(context.Background(), spec, "input")
	require.NoError(t, err)
	assert.Equal(t, "done", output["verdict"])
	assert.Equal(t, 1, tool.calls)

	// The second request must carry the assistant tool call and its result.
	require.Len(t, client.requests, 2)
	second := client.requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, second.Messages[1].Role)
	assert.Equal(t, llm.RoleTool, second.Messages[2].Role)
	require.Len(t, second.Messages[2].ToolResults, 1)
	assert.Equal(t, `{"query":"q"}`, second.Messages[2].ToolResults[0].Content)
	assert.NoError(t, llm.ValidateConversation(second.Messages))
	assert.Equal(t, "auto", second.Options.ToolChoice)
}

func TestInvoker_ShouldFailOnUnknownTool(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "1", Name: "missing", Arguments: json.RawMessage(`{}`)}}},
	}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{Name: "agent", Tools: []llm.Tool{&echoTool{}}}

	_, err := invoker.Invoke(context.Background(), spec, "input")
	require.Error(t, err)
	var coreErr *core.Error
	require.True(t, errors.As(err, &coreErr))
	assert.Equal(t, core.ErrCodeToolNotFound, coreErr.Code)
}

func TestInvoker_ShouldBoundToolIterations(t *testing.T) {
	responses := make([]*llm.Response, 0, 10)
	for i := 0; i < 10; i++ {
		responses = append(responses, &llm.Response{
			ToolCalls: []llm.ToolCall{{ID: fmt.Sprint(i), Name: "echo", Arguments: json.RawMessage(`{}`)}},
		})
	}
	client := &scriptedClient{responses: responses}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{Name: "agent", Tools: []llm.Tool{&echoTool{}}}

	_, err := invoker.Invoke(context.Background(), spec, "input")
	require.Error(t, err)
	var coreErr *core.Error
	require.True(t, errors.As(err, &coreErr))
	assert.Equal(t, core.ErrCodeToolExecution, coreErr.Code)
}

func TestInvoker_ShouldReportSchemaViolations(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: `{"other":"value"}`}}}
	invoker := llm.NewInvoker(&stubFactory{client: client})
	spec := &llm.AgentSpec{Name: "agent", OutputSchema: resultSchema()}

	_, err := invoker.Invoke(context.Background(), spec, "input")
	require.Error(t, err)
	var coreErr *core.Error
	require.True(t, errors.As(err, &coreErr))
	assert.Equal(t, core.ErrCodeSchemaValidation, coreErr.Code)
}

func TestInvoker_ShouldReportInvalidJSONContent(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{{Content: "not json"}}}
	invoker := llm.NewInvoker(&stubFactory{client: client})

	_, err := invoker.Invoke(context.Background(), &llm.AgentSpec{Name: "agent"}, "input")
	require.Error(t, err)
	var coreErr *core.Error
	require.True(t, errors.As(err, &coreErr))
	assert.Equal(t, core.ErrCodeInvalidResponse, coreErr.Code)
}

func TestInvoker_ShouldWrapGenerationFailures(t *testing.T) {
	client := &scriptedClient{err: errors.New("rate limited")}
	invoker := llm.NewInvoker(&stubFactory{client: client})

	_, err := invoker.Invoke(context.Background(), &llm.AgentSpec{Name: "agent"}, "input")
	require.Error(t, err)
	var coreErr *core.Error
	require.True(t, errors.As(err, &coreErr))
	assert.Equal(t, core.ErrCodeLLMGeneration, coreErr.Code)
}

func TestInvoker_ShouldRejectNilSpec(t *testing.T) {
	invoker := llm.NewInvoker(&stubFactory{client: &scriptedClient{}})
	_, err := invoker.Invoke(context.Background(), nil, "input")
	require.Error(t, err)
}
