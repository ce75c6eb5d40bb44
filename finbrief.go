// Package finbrief assembles market research agents into a ready-to-use
// team: a web search specialist, a financial data specialist and a
// coordinator that delegates to both and merges their answers into a single
// source-annotated Markdown brief.
//
// Most applications interact with this package by:
//  1. Building a model backend (model/groq, model/anthropic or model/ollama)
//  2. Creating the team via NewResearchTeam
//  3. Driving it with runner.Runner for one query at a time
//
// The individual specialists are also available through NewWebSearchAgent
// and NewFinancialAgent for applications that only need one of them.
package finbrief

import (
	"net/http"
	"time"

	"finbrief/agent"
	"finbrief/core"
	"finbrief/logging"
	"finbrief/model"
	"finbrief/tool"
	"finbrief/tool/duckduckgo"
	"finbrief/tool/webpage"
	"finbrief/tool/yfinance"
)

// Agent names of the standard research team.
const (
	WebSearchAgentName = "Web Search Agent"
	FinancialAgentName = "Financial Agent"
	CoordinatorName    = "Multi AI Agent"
)

// DefaultQuery is the demo query used when the caller provides none.
const DefaultQuery = "Provide a summary of Apple's stock performance over the past year, including recent news that may impact its future performance."

// coordinatorToolTimeout bounds a single delegation, which wraps a member's
// entire sub-run including its own tool calls.
const coordinatorToolTimeout = 2 * time.Minute

// TeamOptions configures the standard research team.
type TeamOptions struct {
	// Logger receives structured diagnostics from every agent in the team.
	// Defaults to a no-op logger.
	Logger logging.Logger

	// HTTPClient overrides the client used by the web search, webpage and
	// market data tools. Defaults to each tool's own client.
	HTTPClient *http.Client

	// ShowToolCalls prints tool invocations as they happen. On by default.
	ShowToolCalls bool

	// Streaming requests incremental model output. On by default.
	Streaming bool
}

func defaultTeamOptions() TeamOptions {
	return TeamOptions{
		ShowToolCalls: true,
		Streaming:     true,
	}
}

// NewResearchTeam builds the standard three-agent research team answering
// with model m and returns its coordinator. The coordinator consults the web
// search specialist and the financial data specialist, in that order, and
// combines their answers into one Markdown response.
func NewResearchTeam(m model.Model, optFns ...func(o *TeamOptions)) (*agent.Agent, error) {
	opts := defaultTeamOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	searcher, err := newWebSearchAgent(m, opts)
	if err != nil {
		return nil, err
	}

	analyst, err := newFinancialAgent(m, opts)
	if err != nil {
		return nil, err
	}

	return agent.New(CoordinatorName, m, func(o *agent.Options) {
		o.Team = []core.Agent{searcher, analyst}
		o.Instructions = []string{
			"Always include sources in your answers.",
			"use tables to display the data",
		}
		o.Markdown = true
		o.ShowToolCalls = opts.ShowToolCalls
		o.Streaming = opts.Streaming
		o.ToolTimeout = coordinatorToolTimeout
		o.Logger = opts.Logger
	})
}

// NewWebSearchAgent builds the web research specialist: DuckDuckGo search
// plus a webpage reader so it can follow up on promising hits.
func NewWebSearchAgent(m model.Model, optFns ...func(o *TeamOptions)) (*agent.Agent, error) {
	opts := defaultTeamOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return newWebSearchAgent(m, opts)
}

// NewFinancialAgent builds the market data specialist with every Yahoo
// Finance capability enabled: prices, company news, analyst recommendations
// and fundamentals.
func NewFinancialAgent(m model.Model, optFns ...func(o *TeamOptions)) (*agent.Agent, error) {
	opts := defaultTeamOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return newFinancialAgent(m, opts)
}

func newWebSearchAgent(m model.Model, opts TeamOptions) (*agent.Agent, error) {
	search := duckduckgo.New(func(o *duckduckgo.Options) {
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})

	reader := webpage.New(func(o *webpage.Options) {
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})

	return agent.New(WebSearchAgentName, m, func(o *agent.Options) {
		o.Role = "search the web for relevant information to answer user queries accurately."
		o.Instructions = []string{"Always include sources in your answers."}
		o.Tools = []tool.Tool{search, reader}
		o.Markdown = true
		o.ShowToolCalls = opts.ShowToolCalls
		o.Streaming = opts.Streaming
		o.Logger = opts.Logger
	})
}

func newFinancialAgent(m model.Model, opts TeamOptions) (*agent.Agent, error) {
	toolkit := yfinance.New(func(o *yfinance.Options) {
		o.StockPrice = true
		o.CompanyNews = true
		o.AnalystRecommendations = true
		o.StockFundamentals = true

		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})

	return agent.New(FinancialAgentName, m, func(o *agent.Options) {
		o.Role = "assist users with financial data analysis and stock market information."
		o.Instructions = []string{"use tables to display the data"}
		o.Tools = toolkit.Tools()
		o.Markdown = true
		o.ShowToolCalls = opts.ShowToolCalls
		o.Streaming = opts.Streaming
		o.Logger = opts.Logger
	})
}
