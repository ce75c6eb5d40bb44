package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ev := NewEvent("inv-1", "Financial Agent")

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "inv-1", ev.InvocationID)
	assert.Equal(t, "Financial Agent", ev.Author)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Nil(t, ev.Content)
}

func TestNewMessageEvent(t *testing.T) {
	ev := NewMessageEvent("inv-1", "Web Search Agent", "Here is what I found.")

	require.NotNil(t, ev.Content)
	assert.Equal(t, "assistant", ev.Content.Role)
	assert.Equal(t, "Here is what I found.", ev.Text())
}

func TestNewUserMessageEvent(t *testing.T) {
	ev := NewUserMessageEvent("inv-1", "Summarize AAPL performance.")

	require.NotNil(t, ev.Content)
	assert.Equal(t, "user", ev.Author)
	assert.Equal(t, "user", ev.Content.Role)
	assert.Equal(t, "Summarize AAPL performance.", ev.Text())
}

func TestNewFunctionResponseEvent(t *testing.T) {
	ev := NewFunctionResponseEvent("inv-1", "Financial Agent", "call_1", "get_stock_price", map[string]any{"symbol": "AAPL"}, nil)

	responses := ev.GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "call_1", responses[0].ID)
	assert.Equal(t, "get_stock_price", responses[0].Name)
	assert.Empty(t, responses[0].Error)
}

func TestNewFunctionResponseEventWithError(t *testing.T) {
	ev := NewFunctionResponseEvent("inv-1", "Financial Agent", "call_1", "get_stock_price", nil, errors.New("upstream returned 502"))

	responses := ev.GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "upstream returned 502", responses[0].Error)
}

func TestNewErrorEvent(t *testing.T) {
	ev := NewErrorEvent("inv-1", "Multi AI Agent", "model unavailable")

	require.NotNil(t, ev.ErrorMessage)
	assert.Equal(t, "model unavailable", *ev.ErrorMessage)
	assert.False(t, ev.IsFinalResponse())
}

func TestEventIsPartial(t *testing.T) {
	partial := true
	ev := NewMessageEvent("inv-1", "Financial Agent", "chunk")
	ev.Partial = &partial

	assert.True(t, ev.IsPartial())
	assert.False(t, ev.IsFinalResponse())
}

func TestEventIsFinalResponse(t *testing.T) {
	tests := []struct {
		name  string
		event func() Event
		want  bool
	}{
		{
			name: "plain text message",
			event: func() Event {
				return NewMessageEvent("inv-1", "Financial Agent", "AAPL gained 12% over the past year.")
			},
			want: true,
		},
		{
			name: "message with pending function calls",
			event: func() Event {
				ev := NewEvent("inv-1", "Financial Agent")
				ev.Content = &Content{Role: "assistant", Parts: []Part{
					FunctionCallPart{FunctionCall: FunctionCall{ID: "call_1", Name: "get_stock_price"}},
				}}
				return ev
			},
			want: false,
		},
		{
			name: "function response",
			event: func() Event {
				return NewFunctionResponseEvent("inv-1", "Financial Agent", "call_1", "get_stock_price", "ok", nil)
			},
			want: false,
		},
		{
			name: "partial chunk",
			event: func() Event {
				partial := true
				ev := NewMessageEvent("inv-1", "Financial Agent", "AAPL")
				ev.Partial = &partial
				return ev
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event().IsFinalResponse())
		})
	}
}

func TestEventGetFunctionCalls(t *testing.T) {
	ev := NewEvent("inv-1", "Financial Agent")
	ev.Content = &Content{Role: "assistant", Parts: []Part{
		FunctionCallPart{FunctionCall: FunctionCall{ID: "call_1", Name: "get_stock_price", Arguments: `{"symbol":"AAPL"}`}},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "call_2", Name: "get_company_news", Arguments: `{"symbol":"AAPL"}`}},
	}}

	calls := ev.GetFunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "get_stock_price", calls[0].Name)
	assert.Equal(t, "get_company_news", calls[1].Name)
}

func TestEventGetFunctionCallsNilContent(t *testing.T) {
	ev := NewEvent("inv-1", "Financial Agent")

	assert.Empty(t, ev.GetFunctionCalls())
	assert.Empty(t, ev.GetFunctionResponses())
	assert.Empty(t, ev.Text())
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
