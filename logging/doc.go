// Package logging provides a minimal logging interface and adapters for finbrief.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that agents, tools and model backends use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoopLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(logging.LevelInfo, "text", false)
//	team, err := finbrief.NewResearchTeam(m, func(o *finbrief.TeamOptions) {
//		o.Logger = logger
//	})
//
// Log output goes to standard error so it never interleaves with the Markdown
// answer a runner writes to standard output.
package logging
