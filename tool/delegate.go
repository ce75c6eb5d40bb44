package tool

import (
	"fmt"
	"strings"

	"finbrief/core"
)

// Delegate exposes a team member agent as a callable tool. Invoking it runs
// the member's complete respond cycle (model turns plus its own tool calls)
// and returns the final answer, letting a coordinator merge member answers
// into one response.
//
// The tool name is derived from the member name: "Web Search Agent" becomes
// "ask_web_search_agent". A failed or empty member run surfaces as an error
// so the coordinator can degrade gracefully instead of fabricating content.
type Delegate struct {
	agent core.Agent
	name  string
}

// NewDelegate wraps a member agent as a delegation tool.
func NewDelegate(agent core.Agent) *Delegate {
	return &Delegate{
		agent: agent,
		name:  "ask_" + sanitizeToolName(agent.Name()),
	}
}

// Agent returns the wrapped member agent.
func (d *Delegate) Agent() core.Agent { return d.agent }

// Name returns the delegation tool name, e.g. "ask_financial_agent".
func (d *Delegate) Name() string { return d.name }

// Description tells the model what the member can do and what it gets back.
func (d *Delegate) Description() string {
	desc := fmt.Sprintf("Delegate a task to %s and get its complete answer back.", d.agent.Name())
	if role := d.agent.Role(); role != "" {
		desc += " Role: " + role
	}
	return desc
}

// Parameters declares the single request argument.
func (d *Delegate) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"request": map[string]any{
				"type":        "string",
				"description": "The task or question to hand to the agent, phrased as a complete request",
			},
		},
		"required": []string{"request"},
	}
}

// Invoke runs the member agent to completion and returns its final answer.
func (d *Delegate) Invoke(tc *core.ToolContext, args map[string]any) (any, error) {
	raw, ok := args["request"]
	if !ok {
		return nil, NewToolError(d.name, "missing required field 'request'", "VALIDATION_ERROR")
	}
	request, ok := raw.(string)
	if !ok || request == "" {
		return nil, NewToolError(d.name, "field 'request' must be a non-empty string", "VALIDATION_ERROR")
	}

	tc.LogDebug("delegate.start", "tool", d.name, "agent", d.agent.Name())

	events, errs := d.agent.Respond(tc.Context(), core.NewRequest(request))

	var answer string
	for ev := range events {
		// The member echoes the request as a user-authored event; only
		// assistant turns count as answers.
		if ev.Author == "user" || !ev.IsFinalResponse() {
			continue
		}
		if text := ev.Text(); text != "" {
			answer = text
		}
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("agent %q failed: %w", d.agent.Name(), err)
	}
	if answer == "" {
		return nil, fmt.Errorf("agent %q returned no answer", d.agent.Name())
	}

	tc.LogDebug("delegate.done", "tool", d.name, "agent", d.agent.Name())

	return map[string]any{
		"agent":  d.agent.Name(),
		"answer": answer,
	}, nil
}

// sanitizeToolName lowercases a display name and maps every non-alphanumeric
// run to a single underscore, producing a valid function name.
func sanitizeToolName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
