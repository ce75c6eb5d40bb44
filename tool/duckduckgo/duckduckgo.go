// Package duckduckgo provides a web search tool backed by the DuckDuckGo
// HTML endpoint. It needs no API key: results are scraped from the plain
// HTML results page and returned as structured entries (title, URL,
// snippet) so agents can cite their sources.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"finbrief/core"
	"finbrief/tool"
)

const (
	// DefaultBaseURL is the HTML (non-JS) DuckDuckGo results endpoint.
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	// DefaultUserAgent identifies requests as a regular browser; the HTML
	// endpoint rejects the Go default agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultAccept = "text/html,application/xhtml+xml,application/xml;"

	// maxResultsCeiling bounds the per-call max_results argument.
	maxResultsCeiling = 10
)

// SearchResult is a single organic search result.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Options configure the search tool.
type Options struct {
	// BaseURL overrides the results endpoint (useful for tests).
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// MaxResults caps the number of returned results.
	MaxResults int

	// Timeout bounds the HTTP round trip when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the default client entirely.
	HTTPClient *http.Client
}

// Tool implements tool.Tool against the DuckDuckGo HTML endpoint.
type Tool struct {
	opts   Options
	client *http.Client
}

// New constructs a search tool with default options.
func New(optFns ...func(o *Options)) *Tool {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		UserAgent:  DefaultUserAgent,
		MaxResults: 5,
		Timeout:    10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Tool{opts: opts, client: client}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "duckduckgo_search" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Search the web with DuckDuckGo. Returns the titles, URLs and snippets of the top organic results."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query",
			},
			"max_results": map[string]any{
				"type":        "integer",
				"description": fmt.Sprintf("Maximum number of results to return (1-%d)", maxResultsCeiling),
			},
		},
		"required": []string{"query"},
	}
}

// Invoke implements tool.Tool.
func (t *Tool) Invoke(tc *core.ToolContext, args map[string]any) (any, error) {
	raw, ok := args["query"]
	if !ok {
		return nil, tool.NewToolError(t.Name(), "missing required field 'query'", "VALIDATION_ERROR")
	}
	query, ok := raw.(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, tool.NewToolError(t.Name(), "field 'query' must be a non-empty string", "VALIDATION_ERROR")
	}

	limit := t.opts.MaxResults
	if n, ok := args["max_results"].(float64); ok && n >= 1 {
		limit = int(n)
		if limit > maxResultsCeiling {
			limit = maxResultsCeiling
		}
	}

	results, err := t.search(tc.Context(), query, limit)
	if err != nil {
		return nil, err
	}

	tc.LogDebug("duckduckgo.search", "query", query, "results", len(results))

	return results, nil
}

// Search performs the HTTP round trip and parses the organic results,
// returning at most the configured MaxResults entries.
func (t *Tool) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return t.search(ctx, query, t.opts.MaxResults)
}

func (t *Tool) search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	endpoint, err := url.Parse(t.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.opts.UserAgent)
	req.Header.Set("Accept", defaultAccept)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return len(results) < limit
	})

	if len(results) == 0 {
		return nil, fmt.Errorf("no results for query %q", query)
	}

	return results, nil
}

// resolveRedirect unwraps the uddg redirect parameter DuckDuckGo wraps
// around organic result links, falling back to the raw href.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
