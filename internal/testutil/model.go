package testutil

import (
	"context"
	"fmt"
	"sync"

	"finbrief/core"
	"finbrief/model"
)

// ScriptedModel is a deterministic model.Model for tests. Each Generate call
// consumes the next scripted turn and emits its responses in order, so a
// multi-step agent run (tool calls, then a final answer) can be replayed
// exactly. Every request the model receives is recorded for assertions.
//
// Example:
//
//	m := testutil.NewScriptedModel().
//		AddTurn(testutil.ToolCallResponse("call_1", "duckduckgo_search", `{"query":"apple"}`)).
//		AddTurn(testutil.TextResponse("Apple is a company."))
type ScriptedModel struct {
	mu       sync.Mutex
	turns    [][]model.Response
	failWith error
	requests []*model.Request
	calls    int
}

// NewScriptedModel creates an empty scripted model. Without turns every
// Generate call fails, which makes unscripted model usage visible in tests.
func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{}
}

// AddTurn appends one scripted model turn consisting of the given responses,
// emitted in order by the corresponding Generate call.
func (m *ScriptedModel) AddTurn(responses ...model.Response) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, responses)

	return m
}

// FailWith sets the error delivered once the scripted turns are exhausted.
// With no turns scripted, the first Generate call fails immediately.
func (m *ScriptedModel) FailWith(err error) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = err

	return m
}

// Generate implements model.Model by replaying the next scripted turn.
func (m *ScriptedModel) Generate(ctx context.Context, req *model.Request) (<-chan model.Response, <-chan error) {
	m.mu.Lock()

	m.requests = append(m.requests, req)

	idx := m.calls
	m.calls++

	var turn []model.Response

	var err error

	switch {
	case idx < len(m.turns):
		turn = m.turns[idx]
	case m.failWith != nil:
		err = m.failWith
	default:
		err = fmt.Errorf("scripted model exhausted after %d turns", len(m.turns))
	}

	m.mu.Unlock()

	respCh := make(chan model.Response, len(turn))
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err != nil {
			errCh <- err

			return
		}

		for _, resp := range turn {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()

				return
			case respCh <- resp:
			}
		}
	}()

	return respCh, errCh
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

// Calls returns how many times Generate was invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Requests returns the recorded model requests in call order.
func (m *ScriptedModel) Requests() []*model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*model.Request(nil), m.requests...)
}

// TextResponse builds a final assistant text response.
func TextResponse(text string) model.Response {
	return model.Response{
		Content:      core.NewAssistantContent(text),
		FinishReason: "stop",
	}
}

// PartialTextResponse builds a streaming text fragment.
func PartialTextResponse(text string) model.Response {
	return model.Response{
		Partial: true,
		Content: core.NewAssistantContent(text),
	}
}

// ToolCallResponse builds a final response containing a single function call.
func ToolCallResponse(id, name, args string) model.Response {
	return ToolCallsResponse(core.FunctionCall{ID: id, Name: name, Arguments: args})
}

// ToolCallsResponse builds a final response containing the given function
// calls in order.
func ToolCallsResponse(calls ...core.FunctionCall) model.Response {
	parts := make([]core.Part, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: call})
	}

	return model.Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: "tool_calls",
	}
}
