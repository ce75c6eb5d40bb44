package core

import (
	"context"

	"finbrief/logging"
)

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes the configuration
// ("specialist" when the agent binds data tools, "coordinator" when it holds a
// team).
type AgentInfo struct{ Name, Type string }

// RunContext carries execution state & helpers for a single agent invocation.
// It encapsulates the mutable, per-invocation scope threaded through the
// request -> model -> tool loop:
//
//   - The ambient cancellation Context
//   - Identifiers (InvocationID, Agent info)
//   - The submitted Request
//   - The per-invocation Conversation log
//   - The event emission channel
//
// A RunContext lives exactly as long as one Respond call; nothing survives it.
type RunContext struct {
	Context      context.Context
	InvocationID string
	Agent        AgentInfo
	Request      Request
	Conversation *Conversation
	Emit         chan<- Event

	*loggerAdapter
}

// NewRunContext constructs a RunContext with a fresh conversation log.
func NewRunContext(
	ctx context.Context,
	invocationID string,
	agent AgentInfo,
	req Request,
	emit chan<- Event,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		InvocationID:  invocationID,
		Agent:         agent,
		Request:       req,
		Conversation:  NewConversation(),
		Emit:          emit,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// AgentName returns the logical agent name for this invocation.
func (rc *RunContext) AgentName() string { return rc.Agent.Name }

// AgentType returns a categorization label for the agent.
func (rc *RunContext) AgentType() string { return rc.Agent.Type }

// EmitEvent sends an event to the consumer, honoring context cancellation.
func (rc *RunContext) EmitEvent(ev Event) error {
	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
		return nil
	}
}
