package groq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbrief/core"
	"finbrief/model"
)

func TestDefaultOptions(t *testing.T) {
	opts := defaultOptions()

	assert.Equal(t, "llama-3.3-70b-versatile", opts.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", opts.BaseURL)
	assert.InDelta(t, 0.7, opts.Temperature, 0.001)
	assert.EqualValues(t, 4096, opts.MaxCompletionTokens)
}

func TestSerializeToolResponse(t *testing.T) {
	tests := []struct {
		name string
		fr   core.FunctionResponse
		want string
	}{
		{
			name: "string response passes through",
			fr:   core.FunctionResponse{Response: "plain text"},
			want: "plain text",
		},
		{
			name: "structured response is marshaled",
			fr:   core.FunctionResponse{Response: map[string]any{"symbol": "AAPL"}},
			want: `{"symbol":"AAPL"}`,
		},
		{
			name: "error takes precedence",
			fr:   core.FunctionResponse{Response: "ignored", Error: "upstream returned 502"},
			want: `{"error":"upstream returned 502"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serializeToolResponse(tt.fr))
		})
	}
}

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
						Response: "AAPL: 232.10",
					}},
				},
			},
			core.NewAssistantContent("AAPL closed at 232.10."),
		},
	}

	toolResponses, order := collectToolResponses(req)
	messages := buildMessages(req, toolResponses, order)

	// system + user + assistant(tool call) + tool + assistant
	require.Len(t, messages, 5)

	assert.NotNil(t, messages[0].OfSystem)
	assert.NotNil(t, messages[1].OfUser)

	require.NotNil(t, messages[2].OfAssistant)
	require.Len(t, messages[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", messages[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "get_stock_price", messages[2].OfAssistant.ToolCalls[0].Function.Name)

	require.NotNil(t, messages[3].OfTool)
	assert.NotNil(t, messages[4].OfAssistant)
}

func TestBuildMessagesNoInstructions(t *testing.T) {
	req := &model.Request{
		Contents: []core.Content{core.NewUserContent("hello")},
	}

	toolResponses, order := collectToolResponses(req)
	messages := buildMessages(req, toolResponses, order)

	require.Len(t, messages, 1)
	assert.NotNil(t, messages[0].OfUser)
}

func TestBuildParamsWithTools(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test-key"
	})

	req := &model.Request{
		Tools: []model.ToolDefinition{
			{
				Type: "function",
				Function: model.FunctionDefinition{
					Name:        "duckduckgo_search",
					Description: "Search the web",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"query": map[string]any{"type": "string"},
						},
						"required": []string{"query"},
					},
				},
			},
		},
	}

	params := m.buildParams(req, nil)

	require.Len(t, params.Tools, 1)
	assert.Equal(t, "duckduckgo_search", params.Tools[0].Function.Name)
	assert.Equal(t, "llama-3.3-70b-versatile", params.Model)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test-key"
		o.Model = "llama-3.1-8b-instant"
	})

	info := m.Info()
	assert.Equal(t, "llama-3.1-8b-instant", info.Name)
	assert.Equal(t, "groq", info.Provider)
	assert.True(t, info.SupportsTools)
}
