package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finbrief/core"
	"finbrief/logging"
	"finbrief/model"
	"finbrief/tool"
)

// Agent type labels reported in events, logs and tool contexts.
const (
	TypeSpecialist  = "specialist"
	TypeCoordinator = "coordinator"
)

// Defaults applied by New when the corresponding option is left unset.
const (
	// DefaultMaxIterations caps model turns per Respond call.
	DefaultMaxIterations = 10

	// DefaultToolTimeout bounds a single tool invocation.
	DefaultToolTimeout = 30 * time.Second

	// DefaultMaxParallelTools caps concurrent tool executions per model turn.
	DefaultMaxParallelTools = 4
)

// eventBufferSize is the capacity of the event channel returned by Respond.
// It keeps the run loop from stalling on slow consumers during streaming.
const eventBufferSize = 64

// Compile-time check that Agent satisfies the core contract.
var _ core.Agent = (*Agent)(nil)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// Role is a one-line description of what the agent is for. It is woven
	// into the system prompt and shown to coordinators that delegate to
	// this agent.
	Role string

	// Instructions are behavioral directives included in the system prompt,
	// one bullet each.
	Instructions []string

	// Tools the model may invoke while answering.
	Tools []tool.Tool

	// Team members this agent delegates to. Each member is exposed to the
	// model as an ask_<name> tool and listed in the system prompt in the
	// order given here.
	Team []core.Agent

	// Markdown asks the model to format its final answer as Markdown.
	Markdown bool

	// ShowToolCalls marks the agent so renderers display its tool calls.
	ShowToolCalls bool

	// Streaming requests incremental chunks from the model. Enabled by
	// default.
	Streaming bool

	// MaxIterations caps the number of model turns in one Respond call.
	MaxIterations int

	// ToolTimeout bounds each individual tool invocation.
	ToolTimeout time.Duration

	// MaxParallelTools caps how many tool calls from a single model turn
	// run concurrently.
	MaxParallelTools int

	// Logger receives structured diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
}

// Agent answers requests by looping between a language model and its tools
// until the model produces a final text answer.
//
// An agent with a team acts as a coordinator: each member is wrapped in a
// delegation tool, so the model consults specialists with the same calling
// convention it uses for data tools. An agent without a team is a
// specialist.
//
// All configuration is fixed at construction time and every Respond call
// runs an isolated conversation, so a single Agent is safe for concurrent
// use.
type Agent struct {
	name      string
	model     model.Model
	opts      Options
	team      []core.Agent
	delegates []*tool.Delegate
	tools     []tool.Tool
	registry  map[string]tool.Tool
	toolDefs  []model.ToolDefinition
	executor  *functionExecutor
	prompt    string
}

// New creates an agent named name that generates answers with model m.
//
// The configuration is validated eagerly: an empty name, a nil model, nil
// tools or team members, duplicate team member names and tool name
// collisions (including the delegation tools derived from the team) are all
// construction errors rather than runtime surprises.
//
// Example:
//
//	searcher, err := agent.New("Web Search Agent", m,
//		func(o *agent.Options) {
//			o.Role = "search the web for relevant information to answer user queries accurately."
//			o.Instructions = []string{"Always include sources in your answers."}
//			o.Tools = []tool.Tool{duckduckgo.New()}
//			o.Markdown = true
//		},
//	)
func New(name string, m model.Model, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Streaming:        true,
		MaxIterations:    DefaultMaxIterations,
		ToolTimeout:      DefaultToolTimeout,
		MaxParallelTools: DefaultMaxParallelTools,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}

	if m == nil {
		return nil, fmt.Errorf("agent %q: model must not be nil", name)
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}

	if opts.MaxParallelTools <= 0 {
		opts.MaxParallelTools = DefaultMaxParallelTools
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoopLogger{}
	}

	for i, t := range opts.Tools {
		if t == nil {
			return nil, fmt.Errorf("agent %q: tool %d is nil", name, i)
		}
	}

	a := &Agent{
		name:  name,
		model: m,
		opts:  opts,
		team:  append([]core.Agent(nil), opts.Team...),
		tools: append([]tool.Tool(nil), opts.Tools...),
	}

	seenMembers := make(map[string]struct{}, len(opts.Team))
	for i, member := range a.team {
		if member == nil {
			return nil, fmt.Errorf("agent %q: team member %d is nil", name, i)
		}

		key := strings.ToLower(member.Name())
		if _, dup := seenMembers[key]; dup {
			return nil, fmt.Errorf("agent %q: duplicate team member %q", name, member.Name())
		}

		seenMembers[key] = struct{}{}

		d := tool.NewDelegate(member)
		a.delegates = append(a.delegates, d)
		a.tools = append(a.tools, d)
	}

	a.registry = make(map[string]tool.Tool, len(a.tools))
	for _, t := range a.tools {
		if _, dup := a.registry[t.Name()]; dup {
			return nil, fmt.Errorf("agent %q: duplicate tool name %q", name, t.Name())
		}

		a.registry[t.Name()] = t
	}

	a.toolDefs = buildToolDefinitions(a.tools)
	a.executor = newFunctionExecutor(a.registry, opts.MaxParallelTools, opts.ToolTimeout)
	a.prompt = a.buildSystemPrompt()

	return a, nil
}

// Name returns the agent's identifier.
func (a *Agent) Name() string { return a.name }

// Role returns the agent's one-line purpose description.
func (a *Agent) Role() string { return a.opts.Role }

// Instructions returns a copy of the behavioral directives woven into the
// system prompt.
func (a *Agent) Instructions() []string {
	return append([]string(nil), a.opts.Instructions...)
}

// Tools returns the agent's tools in a stable order: declared tools first,
// then one delegation tool per team member in team order.
func (a *Agent) Tools() []tool.Tool {
	return append([]tool.Tool(nil), a.tools...)
}

// Team returns the member agents in the order they were configured.
func (a *Agent) Team() []core.Agent {
	return append([]core.Agent(nil), a.team...)
}

// Markdown reports whether the agent formats final answers as Markdown.
func (a *Agent) Markdown() bool { return a.opts.Markdown }

// ShowToolCalls reports whether renderers should display this agent's tool
// calls.
func (a *Agent) ShowToolCalls() bool { return a.opts.ShowToolCalls }

// SystemPrompt returns the complete system prompt sent with every model
// request.
func (a *Agent) SystemPrompt() string { return a.prompt }

// Type categorizes the agent: TypeCoordinator when it has a team, otherwise
// TypeSpecialist.
func (a *Agent) Type() string {
	if len(a.team) > 0 {
		return TypeCoordinator
	}

	return TypeSpecialist
}

// Respond answers a single request.
//
// It returns immediately with two channels: events streams the progress of
// the run (the user message, partial and final assistant turns, tool
// responses) and errs delivers at most one terminal failure. Both channels
// are closed when the run finishes.
//
// A terminal failure means no final answer was produced, for example a model
// transport error or context cancellation. Tool failures are never terminal;
// they are fed back to the model as structured errors so it can answer with
// whatever data it has.
func (a *Agent) Respond(ctx context.Context, req *core.Request) (<-chan core.Event, <-chan error) {
	events := make(chan core.Event, eventBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		if req == nil || strings.TrimSpace(req.Query) == "" {
			errs <- fmt.Errorf("agent %q: request query must not be empty", a.name)

			return
		}

		rc := core.NewRunContext(
			ctx,
			core.NewID(),
			core.AgentInfo{Name: a.name, Type: a.Type()},
			*req,
			events,
			a.opts.Logger,
		)

		if err := a.run(rc); err != nil {
			errs <- err
		}
	}()

	return events, errs
}

// buildToolDefinitions converts tools into the wire-level definitions model
// adapters expect.
func buildToolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}
