// Package runner drives agents from the outside: it submits a query,
// consumes the resulting event stream and either aggregates the outcome
// (Collect) or renders it incrementally to a writer (Print), including
// optional tool call progress lines. The runner holds no conversation state
// of its own; every call is an independent run.
package runner
