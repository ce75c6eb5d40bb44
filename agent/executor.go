package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"finbrief/core"
	"finbrief/tool"
)

// functionExecutor runs the function calls from one model turn with bounded
// parallelism and a per-call timeout, producing one function response event
// per call in the original call order.
type functionExecutor struct {
	registry    map[string]tool.Tool
	maxParallel int
	timeout     time.Duration
}

// newFunctionExecutor creates an executor over the agent's tool registry.
func newFunctionExecutor(registry map[string]tool.Tool, maxParallel int, timeout time.Duration) *functionExecutor {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	return &functionExecutor{
		registry:    registry,
		maxParallel: maxParallel,
		timeout:     timeout,
	}
}

// execute runs all calls and returns their response events in call order.
// A failed call yields an event whose function response carries the error
// message; sibling calls are unaffected and the batch never aborts.
func (e *functionExecutor) execute(rc *core.RunContext, calls []core.FunctionCall) []core.Event {
	if len(calls) == 0 {
		return nil
	}

	// Single call: run inline without goroutine overhead.
	if len(calls) == 1 {
		return []core.Event{e.invoke(rc, calls[0])}
	}

	events := make([]core.Event, len(calls))
	sem := make(chan struct{}, e.maxParallel)

	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)

		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			events[idx] = e.invoke(rc, fc)
		}(i, call)
	}

	wg.Wait()

	return events
}

// invoke runs a single function call and converts its outcome, success,
// failure or panic, into a function response event.
func (e *functionExecutor) invoke(rc *core.RunContext, call core.FunctionCall) core.Event {
	started := time.Now()

	rc.LogDebug(
		"agent.function.start",
		"agent", rc.AgentName(),
		"function", call.Name,
		"call_id", call.ID,
	)

	result, err := e.invokeTool(rc, call)
	if err != nil {
		rc.LogWarn(
			"agent.function.failed",
			"agent", rc.AgentName(),
			"function", call.Name,
			"call_id", call.ID,
			"duration", time.Since(started).String(),
			"error", err.Error(),
		)
	} else {
		rc.LogDebug(
			"agent.function.executed",
			"agent", rc.AgentName(),
			"function", call.Name,
			"call_id", call.ID,
			"duration", time.Since(started).String(),
		)
	}

	return core.NewFunctionResponseEvent(rc.InvocationID, rc.AgentName(), call.ID, call.Name, result, err)
}

// invokeTool resolves the named tool, decodes the call arguments and invokes
// the tool under the per-call timeout.
func (e *functionExecutor) invokeTool(rc *core.RunContext, call core.FunctionCall) (result interface{}, err error) {
	t, ok := e.registry[call.Name]
	if !ok {
		return nil, fmt.Errorf("tool %q not found", call.Name)
	}

	args := make(map[string]interface{})
	if call.Arguments != "" {
		if uerr := json.Unmarshal([]byte(call.Arguments), &args); uerr != nil {
			return nil, fmt.Errorf("invalid arguments for tool %q: %w", call.Name, uerr)
		}
	}

	toolCtx := core.NewToolContext(rc, call.ID)

	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(rc.Context, e.timeout)
		defer cancel()

		toolCtx = toolCtx.WithContext(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			rc.LogError(
				"agent.function.panic",
				"agent", rc.AgentName(),
				"function", call.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			result = nil
			err = fmt.Errorf("tool %q panicked: %v", call.Name, r)
		}
	}()

	return t.Invoke(toolCtx, args)
}
