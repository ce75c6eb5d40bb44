// Package agent provides the model-driven agent at the heart of finbrief.
// An Agent combines a language model, a set of tools and an optional team of
// member agents into a single conversational unit that answers one request
// at a time. The package focuses on three concerns:
//
//  1. Construction and validation (New, Options)
//  2. The model / tool loop that produces an answer (Respond)
//  3. Bounded parallel tool execution with per-call timeouts
//
// Design principles:
//   - No hidden global state. Everything an agent needs is passed to New.
//   - Uniform delegation. Team members are exposed to the model as ordinary
//     tools, so a coordinator consults specialists the same way it calls a
//     data source.
//   - Graceful degradation. Tool failures are reported back to the model as
//     structured errors instead of aborting the run, letting the model
//     produce a best-effort answer.
//
// Execution model:
//   - Respond seeds a fresh conversation with the request query
//   - Each iteration sends the conversation to the model and streams the
//     response as events
//   - Function calls in the response are executed (in parallel, bounded) and
//     their results are appended for the next iteration
//   - The loop ends on a plain text response or the iteration cap
//
// Model adapters, tool implementations and transport concerns live in their
// respective packages to avoid cyclic deps.
package agent
