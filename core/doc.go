// Package core provides the foundational domain types and execution contexts
// used by finbrief. It defines the core abstractions for:
//
//   - Agents (configured roles that can answer a natural-language request)
//   - Requests (a single free-text query submitted once)
//   - Events (immutable streamed units of agent output)
//   - Conversations (the append-only message log of one query's lifetime)
//   - RunContext / ToolContext (scoped execution & tool sandboxing)
//
// The package intentionally keeps implementation concerns (model backends,
// concrete tools, the delegation loop) out of scope, exposing small types so
// the agent, tool and runner packages can interoperate without import cycles.
package core
