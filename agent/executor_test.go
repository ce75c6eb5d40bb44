package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbrief/core"
	"finbrief/logging"
	"finbrief/tool"
)

func newTestRunContext(t *testing.T) *core.RunContext {
	t.Helper()

	events := make(chan core.Event, 64)

	return core.NewRunContext(
		context.Background(),
		core.NewID(),
		core.AgentInfo{Name: "Test Agent", Type: TypeSpecialist},
		*core.NewRequest("query"),
		events,
		logging.NoopLogger{},
	)
}

func TestExecuteEmptyBatch(t *testing.T) {
	e := newFunctionExecutor(map[string]tool.Tool{}, 4, 0)

	assert.Nil(t, e.execute(newTestRunContext(t), nil))
}

func TestExecuteSingleCall(t *testing.T) {
	echo := newEchoTool("echo")
	e := newFunctionExecutor(map[string]tool.Tool{"echo": echo}, 4, 0)

	events := e.execute(newTestRunContext(t), []core.FunctionCall{
		{ID: "call_1", Name: "echo", Arguments: `{"query":"hi"}`},
	})

	require.Len(t, events, 1)
	assert.Equal(t, "Test Agent", events[0].Author)

	responses := events[0].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "call_1", responses[0].ID)
	assert.Equal(t, "echo", responses[0].Name)
	assert.Equal(t, "hi", responses[0].Response)
	assert.Empty(t, responses[0].Error)
}

func TestExecuteOrderPreserved(t *testing.T) {
	// Earlier calls sleep longer, so completion order is the reverse of
	// call order.
	sleepy := tool.NewFunctionTool(
		"sleepy", "Sleeps as instructed",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ms": map[string]any{"type": "number"},
			},
			"required": []string{"ms"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			ms := args["ms"].(float64)
			time.Sleep(time.Duration(ms) * time.Millisecond)

			return ms, nil
		},
	)

	e := newFunctionExecutor(map[string]tool.Tool{"sleepy": sleepy}, 4, 0)

	calls := make([]core.FunctionCall, 4)
	for i := range calls {
		calls[i] = core.FunctionCall{
			ID:        fmt.Sprintf("call_%d", i),
			Name:      "sleepy",
			Arguments: fmt.Sprintf(`{"ms":%d}`, (len(calls)-i)*15),
		}
	}

	events := e.execute(newTestRunContext(t), calls)

	require.Len(t, events, 4)
	for i, ev := range events {
		responses := ev.GetFunctionResponses()
		require.Len(t, responses, 1)
		assert.Equal(t, fmt.Sprintf("call_%d", i), responses[0].ID)
	}
}

func TestExecuteConcurrencyBound(t *testing.T) {
	var mu sync.Mutex

	var current, peak int

	tracked := tool.NewFunctionTool(
		"tracked", "Tracks concurrency",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()

			return "ok", nil
		},
	)

	e := newFunctionExecutor(map[string]tool.Tool{"tracked": tracked}, 2, 0)

	calls := make([]core.FunctionCall, 6)
	for i := range calls {
		calls[i] = core.FunctionCall{ID: fmt.Sprintf("call_%d", i), Name: "tracked", Arguments: `{}`}
	}

	events := e.execute(newTestRunContext(t), calls)

	require.Len(t, events, 6)
	for _, ev := range events {
		assert.Empty(t, ev.GetFunctionResponses()[0].Error)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
	assert.Greater(t, peak, 0)
}

func TestExecuteUnknownTool(t *testing.T) {
	e := newFunctionExecutor(map[string]tool.Tool{}, 4, 0)

	events := e.execute(newTestRunContext(t), []core.FunctionCall{
		{ID: "call_1", Name: "nope", Arguments: `{}`},
	})

	require.Len(t, events, 1)

	responses := events[0].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, `tool "nope" not found`)
	assert.Nil(t, responses[0].Response)
}

func TestExecuteInvalidArguments(t *testing.T) {
	echo := newEchoTool("echo")
	e := newFunctionExecutor(map[string]tool.Tool{"echo": echo}, 4, 0)

	events := e.execute(newTestRunContext(t), []core.FunctionCall{
		{ID: "call_1", Name: "echo", Arguments: `{not json`},
	})

	responses := events[0].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "invalid arguments")
}

func TestExecuteTimeout(t *testing.T) {
	stuck := tool.NewFunctionTool(
		"hang", "Waits for cancellation",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			<-tc.Context().Done()

			return nil, tc.Context().Err()
		},
	)

	e := newFunctionExecutor(map[string]tool.Tool{"hang": stuck}, 4, 15*time.Millisecond)

	start := time.Now()
	events := e.execute(newTestRunContext(t), []core.FunctionCall{
		{ID: "call_1", Name: "hang", Arguments: `{}`},
	})

	assert.Less(t, time.Since(start), 2*time.Second)

	responses := events[0].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Contains(t, responses[0].Error, "context deadline exceeded")
}

func TestExecutePanicRecovered(t *testing.T) {
	panicky := tool.NewFunctionTool(
		"explode", "Always panics",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			panic("kaboom")
		},
	)

	e := newFunctionExecutor(map[string]tool.Tool{"explode": panicky}, 4, 0)

	events := e.execute(newTestRunContext(t), []core.FunctionCall{
		{ID: "call_1", Name: "explode", Arguments: `{}`},
		{ID: "call_2", Name: "explode", Arguments: `{}`},
	})

	require.Len(t, events, 2)
	for _, ev := range events {
		responses := ev.GetFunctionResponses()
		require.Len(t, responses, 1)
		assert.Contains(t, responses[0].Error, "panicked")
		assert.Contains(t, responses[0].Error, "kaboom")
	}
}
