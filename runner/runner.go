package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"finbrief/core"
	"finbrief/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Output receives the rendered answer and progress lines. Defaults to
	// os.Stdout.
	Output io.Writer

	// ShowToolCalls overrides the agent's own display preference for tool
	// call progress lines. Leave nil to follow the agent.
	ShowToolCalls *bool

	// Logger receives structured diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
}

// Result is the aggregate outcome of a completed run.
type Result struct {
	// Answer is the text of the last completed assistant turn.
	Answer string

	// Events holds every event the run emitted, in order.
	Events []core.Event
}

// Runner drives an agent for one query at a time and renders the outcome.
// It owns no conversation state; each call hands the query to the agent and
// consumes the resulting event stream. Public methods are safe for
// concurrent use.
type Runner struct {
	agent         core.Agent
	output        io.Writer
	showToolCalls *bool
	logger        logging.Logger
}

// toolCallReporter is implemented by agents that carry a display preference
// for their tool calls.
type toolCallReporter interface{ ShowToolCalls() bool }

// New constructs a Runner for the given agent with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Output: os.Stdout,
		Logger: logging.NoopLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:         agent,
		output:        opts.Output,
		showToolCalls: opts.ShowToolCalls,
		logger:        opts.Logger,
	}
}

// Run submits the query to the agent and returns the raw event and error
// channels for callers that want to process the stream themselves.
func (r *Runner) Run(ctx context.Context, query string) (<-chan core.Event, <-chan error) {
	r.logger.Debug("runner.run.start", "agent", r.agent.Name(), "query", query)

	return r.agent.Respond(ctx, core.NewRequest(query))
}

// Collect runs the query to completion and returns the aggregated outcome.
func (r *Runner) Collect(ctx context.Context, query string) (*Result, error) {
	events, errs := r.Run(ctx, query)

	result := &Result{}
	for ev := range events {
		result.Events = append(result.Events, ev)
	}

	if err := <-errs; err != nil {
		return nil, err
	}

	for i := len(result.Events) - 1; i >= 0; i-- {
		ev := result.Events[i]
		if ev.Author == "user" {
			continue
		}

		if ev.IsFinalResponse() && ev.Text() != "" {
			result.Answer = ev.Text()

			break
		}
	}

	r.logger.Debug(
		"runner.run.complete",
		"agent", r.agent.Name(),
		"events", len(result.Events),
	)

	return result, nil
}

// Print runs the query and renders the stream to Output as it arrives:
// streamed text is written incrementally, tool calls appear as progress
// lines when enabled, and a non-streamed final answer is written whole.
func (r *Runner) Print(ctx context.Context, query string) error {
	events, errs := r.Run(ctx, query)

	show := r.resolveShowToolCalls()

	// Tracks whether the current assistant turn already went out as
	// streamed fragments, so the final event only terminates the line.
	streamed := false

	for ev := range events {
		switch {
		case ev.Author == "user":
			continue

		case ev.ErrorMessage != nil:
			r.logger.Warn("runner.event.error", "error", *ev.ErrorMessage)

		case ev.IsPartial():
			if text := ev.Text(); text != "" {
				streamed = true

				fmt.Fprint(r.output, text)
			}

		case len(ev.GetFunctionCalls()) > 0:
			if streamed {
				fmt.Fprintln(r.output)

				streamed = false
			} else if text := ev.Text(); text != "" {
				fmt.Fprintln(r.output, text)
			}

			if show {
				for _, call := range ev.GetFunctionCalls() {
					fmt.Fprintf(r.output, "- Running: %s\n", formatCall(call))
				}
			}

		case len(ev.GetFunctionResponses()) > 0:
			continue

		case ev.IsFinalResponse():
			if streamed {
				fmt.Fprintln(r.output)
			} else if text := ev.Text(); text != "" {
				fmt.Fprintln(r.output, text)
			}

			streamed = false
		}
	}

	return <-errs
}

func (r *Runner) resolveShowToolCalls() bool {
	if r.showToolCalls != nil {
		return *r.showToolCalls
	}

	if reporter, ok := r.agent.(toolCallReporter); ok {
		return reporter.ShowToolCalls()
	}

	return false
}

// formatCall renders a function call as name(key=value, ...) with stable key
// order for display.
func formatCall(call core.FunctionCall) string {
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fmt.Sprintf("%s(%s)", call.Name, call.Arguments)
		}
	}

	if len(args) == 0 {
		return call.Name + "()"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, args[k]))
	}

	return fmt.Sprintf("%s(%s)", call.Name, strings.Join(pairs, ", "))
}
