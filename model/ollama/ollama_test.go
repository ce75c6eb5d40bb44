package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbrief/core"
	"finbrief/model"
)

func TestBuildMessages(t *testing.T) {
	req := &model.Request{
		Instructions: "You are a financial assistant.",
		Contents: []core.Content{
			core.NewUserContent("How is AAPL doing?"),
			{
				Role: "assistant",
				Parts: []core.Part{
					core.FunctionCallPart{FunctionCall: core.FunctionCall{
						ID:        "call_1",
						Name:      "get_stock_price",
						Arguments: `{"symbol":"AAPL"}`,
					}},
				},
			},
			{
				Role: "tool",
				Parts: []core.Part{
					core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
						ID:       "call_1",
						Name:     "get_stock_price",
						Response: map[string]any{"price": 232.10},
					}},
				},
			},
		},
	}

	messages := buildMessages(req)

	require.Len(t, messages, 4)

	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "You are a financial assistant.", messages[0].Content)

	assert.Equal(t, "user", messages[1].Role)

	assert.Equal(t, "assistant", messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "get_stock_price", messages[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "AAPL", messages[2].ToolCalls[0].Function.Arguments["symbol"])

	assert.Equal(t, "tool", messages[3].Role)
	assert.Equal(t, "call_1", messages[3].ToolCallID)
	assert.JSONEq(t, `{"price":232.10}`, messages[3].Content)
}

func TestBuildMessagesToolError(t *testing.T) {
	req := &model.Request{
		Contents: []core.Content{
			{
				Role: "tool",
				Parts: []core.Part{
					core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
						ID:    "call_1",
						Name:  "get_stock_price",
						Error: "upstream returned 502",
					}},
				},
			},
		},
	}

	messages := buildMessages(req)

	require.Len(t, messages, 1)
	assert.JSONEq(t, `{"error":"upstream returned 502"}`, messages[0].Content)
}

func TestBuildTools(t *testing.T) {
	defs := []model.ToolDefinition{
		{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        "duckduckgo_search",
				Description: "Search the web",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The search query",
						},
					},
					"required": []string{"query"},
				},
			},
		},
	}

	tools := buildTools(defs)

	require.Len(t, tools, 1)
	assert.Equal(t, "function", tools[0].Type)
	assert.Equal(t, "duckduckgo_search", tools[0].Function.Name)
	assert.Equal(t, "object", tools[0].Function.Parameters.Type)
	assert.Equal(t, []string{"query"}, tools[0].Function.Parameters.Required)

	prop, ok := tools[0].Function.Parameters.Properties["query"]
	require.True(t, ok)
	assert.Equal(t, "The search query", prop.Description)
}

func TestDefaultOptions(t *testing.T) {
	opts := defaultOptions()

	assert.Equal(t, "llama3.2", opts.Model)
	assert.InDelta(t, 0.7, opts.Temperature, 0.001)
	assert.Equal(t, 4096, opts.MaxTokens)
}

func TestNewModelInvalidHost(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Host = "http://bad host\x7f"
	})

	require.Error(t, m.initErr)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "qwen2.5"
	})

	info := m.Info()
	assert.Equal(t, "qwen2.5", info.Name)
	assert.Equal(t, "ollama", info.Provider)
	assert.True(t, info.SupportsTools)
}
