package core

import "context"

// Agent is the single polymorphic abstraction every configured role
// implements: a web-search specialist, a financial-data specialist and a
// coordinating agent are all Agents differing only in configuration.
//
// Respond answers one free-text request, streaming incremental events over
// the returned channel. The event channel is closed when the run finishes;
// the error channel (capacity 1) delivers at most one terminal error. A
// coordinator reaches its team members exclusively through this interface,
// so the delegation decision stays a black-box capability of the member's
// model backend.
//
// Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Close the event channel exactly once, after the final event
//   - Never panic across the channel boundary
type Agent interface {
	// Name returns the external identifier of the agent.
	Name() string

	// Role returns the purpose description of the agent. May be empty for
	// coordinators.
	Role() string

	// Respond answers a single request, streaming incremental events.
	Respond(ctx context.Context, req *Request) (<-chan Event, <-chan error)
}
