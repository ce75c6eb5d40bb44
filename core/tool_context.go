package core

import (
	"context"

	"finbrief/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked by an agent. Tools see the invocation identifiers,
// the agent on whose behalf they run, a logger and a context that may carry a
// per-call timeout, but never the conversation or the emission channel.
type ToolContext struct {
	ctx            context.Context
	runCtx         *RunContext
	functionCallID string
	agentInfo      AgentInfo

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext and
// unique functionCallID.
func NewToolContext(runCtx *RunContext, functionCallID string) *ToolContext {
	return &ToolContext{
		ctx:            runCtx.Context,
		runCtx:         runCtx,
		functionCallID: functionCallID,
		agentInfo:      runCtx.Agent,
		loggerAdapter:  newLoggerAdapter(runCtx.Logger()),
	}
}

// WithContext returns a copy of the tool context bound to ctx, typically a
// timeout-derived child of the run context.
func (tc *ToolContext) WithContext(ctx context.Context) *ToolContext {
	clone := *tc
	clone.ctx = ctx

	return &clone
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// InvocationID returns the invocation ID associated with the tool invocation.
func (tc *ToolContext) InvocationID() string { return tc.runCtx.InvocationID }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the agent name associated with the tool invocation.
func (tc *ToolContext) AgentName() string { return tc.agentInfo.Name }

// AgentType returns the agent type associated with the tool invocation.
func (tc *ToolContext) AgentType() string { return tc.agentInfo.Type }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }
