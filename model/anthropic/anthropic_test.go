package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbrief/core"
	"finbrief/model"
)

func TestDefaultOptions(t *testing.T) {
	opts := defaultOptions()

	assert.Equal(t, anthropic.ModelClaude3_5Sonnet20241022, opts.Model)
	assert.InDelta(t, 0.7, opts.Temperature, 0.001)
	assert.EqualValues(t, 4096, opts.MaxTokens)
}

func TestSerializeToolResponse(t *testing.T) {
	tests := []struct {
		name        string
		fr          core.FunctionResponse
		wantText    string
		wantIsError bool
	}{
		{
			name:     "string response passes through",
			fr:       core.FunctionResponse{Response: "plain text"},
			wantText: "plain text",
		},
		{
			name:     "structured response is marshaled",
			fr:       core.FunctionResponse{Response: map[string]any{"symbol": "AAPL"}},
			wantText: `{"symbol":"AAPL"}`,
		},
		{
			name:        "error sets the failure flag",
			fr:          core.FunctionResponse{Response: "ignored", Error: "upstream returned 502"},
			wantText:    "upstream returned 502",
			wantIsError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializeToolResponse(tt.fr)
			assert.Equal(t, tt.wantText, got.text)
			assert.Equal(t, tt.wantIsError, got.isError)
		})
	}
}

func TestBuildSystemBlocks(t *testing.T) {
	m := NewModel()

	req := &model.Request{
		Instructions: "You are a financial assistant.",
		Contents: []core.Content{
			{Role: "system", Parts: []core.Part{core.TextPart{Text: "Cite sources."}}},
			core.NewUserContent("hello"),
		},
	}

	blocks := m.buildSystemBlocks(req)

	require.Len(t, blocks, 2)
	assert.Equal(t, "You are a financial assistant.", blocks[0].Text)
	assert.Equal(t, "Cite sources.", blocks[1].Text)
}

func TestBuildMessagesEmbedsToolResults(t *testing.T) {
	m := NewModel()

	contents := []core.Content{
		core.NewUserContent("How is AAPL doing?"),
		{
			Role: "assistant",
			Parts: []core.Part{
				core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        "toolu_1",
					Name:      "get_stock_price",
					Arguments: `{"symbol":"AAPL"}`,
				}},
			},
		},
		{
			Role: "tool",
			Parts: []core.Part{
				core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
					ID:       "toolu_1",
					Name:     "get_stock_price",
					Response: "AAPL: 232.10",
				}},
			},
		},
		core.NewAssistantContent("AAPL closed at 232.10."),
	}

	messages := m.buildMessages(contents)

	// user + assistant(tool_use) + user(tool_result) + assistant
	require.Len(t, messages, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[2].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[3].Role)
}

func TestBuildAssistantContentCollectsCallIDs(t *testing.T) {
	m := NewModel()

	content, callIDs := m.buildAssistantContent([]core.Part{
		core.TextPart{Text: "Looking that up."},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        "toolu_1",
			Name:      "get_stock_price",
			Arguments: `{"symbol":"AAPL"}`,
		}},
		core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:   "toolu_2",
			Name: "get_company_news",
		}},
	})

	assert.Len(t, content, 3)
	assert.Equal(t, []string{"toolu_1", "toolu_2"}, callIDs)
}

func TestBuildToolResultsConsumesMatches(t *testing.T) {
	m := NewModel()

	responses := map[string]toolResult{
		"toolu_1": {text: "AAPL: 232.10"},
		"toolu_2": {text: "timeout", isError: true},
	}

	results := m.buildToolResults([]string{"toolu_1", "missing"}, responses)

	require.Len(t, results, 1)
	assert.NotContains(t, responses, "toolu_1")
	assert.Contains(t, responses, "toolu_2")
}

func TestBuildTools(t *testing.T) {
	m := NewModel()

	tools := m.buildTools([]model.ToolDefinition{
		{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        "get_stock_price",
				Description: "Fetch the current price",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"symbol": map[string]any{"type": "string"},
					},
					"required": []string{"symbol"},
				},
			},
		},
	})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "get_stock_price", tools[0].OfTool.Name)
	assert.Equal(t, []string{"symbol"}, tools[0].OfTool.InputSchema.Required)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = anthropic.Model("claude-3-5-haiku-latest")
	})

	info := m.Info()
	assert.Equal(t, "claude-3-5-haiku-latest", info.Name)
	assert.Equal(t, "anthropic", info.Provider)
	assert.True(t, info.SupportsTools)
}
