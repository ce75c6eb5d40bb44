package agent

import (
	"fmt"

	"finbrief/core"
	"finbrief/model"
)

// fallbackAnswer is emitted when the iteration cap is reached and the
// conversation holds no assistant text to fall back on.
const fallbackAnswer = "I was unable to retrieve the requested data. Please try again later."

// boolPtr returns a pointer to b for optional event fields.
func boolPtr(b bool) *bool { return &b }

// run drives the model / tool loop for a single invocation. It returns a
// terminal error only when the model fails or the context is cancelled;
// everything else, exhausted iterations included, degrades to a final
// best-effort answer event.
func (a *Agent) run(rc *core.RunContext) error {
	rc.LogDebug(
		"agent.run.start",
		"agent", a.name,
		"type", rc.AgentType(),
		"invocation", rc.InvocationID,
		"tools", len(a.tools),
	)

	rc.Conversation.Append(core.NewUserContent(rc.Request.Query))

	if err := rc.EmitEvent(core.NewUserMessageEvent(rc.InvocationID, rc.Request.Query)); err != nil {
		return err
	}

	for iteration := 0; iteration < a.opts.MaxIterations; iteration++ {
		last, err := a.runOnce(rc)
		if err != nil {
			rc.LogError(
				"agent.run.error",
				"agent", a.name,
				"iteration", iteration,
				"error", err.Error(),
			)

			return err
		}

		if last == nil {
			return fmt.Errorf("agent %q: model returned no response", a.name)
		}

		// Tool results were appended this iteration; the model gets
		// another turn to consume them.
		if len(last.GetFunctionResponses()) > 0 {
			continue
		}

		if last.IsFinalResponse() {
			rc.LogDebug("agent.run.complete", "agent", a.name, "iterations", iteration+1)

			return nil
		}
	}

	rc.LogWarn("agent.run.max_iterations", "agent", a.name, "max", a.opts.MaxIterations)

	answer := rc.Conversation.LastAssistantText()
	if answer == "" {
		answer = fallbackAnswer
	}

	ev := core.NewMessageEvent(rc.InvocationID, a.name, answer)
	ev.Partial = boolPtr(false)
	ev.TurnComplete = boolPtr(true)

	return rc.EmitEvent(ev)
}

// runOnce performs one model turn: it sends the conversation to the model,
// streams the response as events, executes any function calls and appends
// both the assistant turn and the tool results to the conversation. It
// returns the last event it emitted.
func (a *Agent) runOnce(rc *core.RunContext) (*core.Event, error) {
	req := &model.Request{
		Instructions: a.prompt,
		Contents:     rc.Conversation.Contents(),
		Tools:        a.toolDefs,
		Stream:       a.opts.Streaming,
	}

	rc.LogDebug(
		"agent.model.request",
		"agent", a.name,
		"contents", len(req.Contents),
		"stream", req.Stream,
	)

	respCh, errCh := a.model.Generate(rc.Context, req)

	var last *core.Event

	for resp := range respCh {
		ev := a.responseEvent(rc, resp)

		if err := rc.EmitEvent(ev); err != nil {
			return nil, err
		}

		last = &ev

		if resp.Partial {
			continue
		}

		rc.Conversation.Append(resp.Content)

		if calls := ev.GetFunctionCalls(); len(calls) > 0 {
			rc.LogDebug("agent.function.calls", "agent", a.name, "count", len(calls))

			results := a.executor.execute(rc, calls)

			for i := range results {
				if results[i].Content != nil {
					rc.Conversation.Append(*results[i].Content)
				}

				if err := rc.EmitEvent(results[i]); err != nil {
					return nil, err
				}

				last = &results[i]
			}
		}
	}

	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("agent %q: model generation failed: %w", a.name, err)
	}

	return last, nil
}

// responseEvent converts a model response chunk into an event authored by
// this agent.
func (a *Agent) responseEvent(rc *core.RunContext, resp model.Response) core.Event {
	ev := core.NewEvent(rc.InvocationID, a.name)

	content := resp.Content
	ev.Content = &content
	ev.Partial = boolPtr(resp.Partial)

	if !resp.Partial && len(content.FunctionCalls()) == 0 {
		ev.TurnComplete = boolPtr(true)
	}

	return ev
}
