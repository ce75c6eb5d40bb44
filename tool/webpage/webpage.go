// Package webpage provides a tool that fetches a web page and converts its
// main content to Markdown, letting agents read the pages they discover
// through search instead of guessing from snippets.
package webpage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"finbrief/core"
	"finbrief/tool"
)

const (
	// DefaultUserAgent identifies requests as a regular browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxContentLength caps the returned Markdown so a single page
	// cannot flood the model context.
	DefaultMaxContentLength = 8000

	defaultAccept = "text/html,application/xhtml+xml,application/xml;"

	truncationMarker = "\n\n[content truncated]"
)

// strippedTags are removed before content extraction; they carry navigation
// and plumbing rather than readable content.
var strippedTags = []string{"script", "style", "noscript", "nav", "header", "footer", "iframe", "form"}

// contentCandidates are tried in order; the first match wins.
var contentCandidates = []string{"main", "article", "#content, #main", ".content, .main", "body"}

var blankLines = regexp.MustCompile(`\r?\n{2,}`)

// Page is the readable content of a fetched web page.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"` // Markdown
}

// Options configure the webpage tool.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string

	// MaxContentLength caps the returned Markdown length in runes.
	MaxContentLength int

	// Timeout bounds the HTTP round trip when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the default client entirely.
	HTTPClient *http.Client
}

// Tool implements tool.Tool for reading web pages.
type Tool struct {
	opts   Options
	client *http.Client
}

// New constructs a webpage tool with default options.
func New(optFns ...func(o *Options)) *Tool {
	opts := Options{
		UserAgent:        DefaultUserAgent,
		MaxContentLength: DefaultMaxContentLength,
		Timeout:          30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = DefaultMaxContentLength
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Tool{opts: opts, client: client}
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "read_webpage" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Fetch a web page and return its main content converted to Markdown. Use after a search to read a promising result."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Absolute http(s) URL of the page to read",
			},
		},
		"required": []string{"url"},
	}
}

// Invoke implements tool.Tool.
func (t *Tool) Invoke(tc *core.ToolContext, args map[string]any) (any, error) {
	raw, ok := args["url"]
	if !ok {
		return nil, tool.NewToolError(t.Name(), "missing required field 'url'", "VALIDATION_ERROR")
	}
	pageURL, ok := raw.(string)
	if !ok || pageURL == "" {
		return nil, tool.NewToolError(t.Name(), "field 'url' must be a non-empty string", "VALIDATION_ERROR")
	}

	page, err := t.Read(tc.Context(), pageURL)
	if err != nil {
		return nil, err
	}

	tc.LogDebug("webpage.read", "url", pageURL, "content_len", len(page.Content))

	return page, nil
}

// Read fetches the page and extracts its main content as Markdown.
func (t *Tool) Read(ctx context.Context, pageURL string) (*Page, error) {
	parsedURL, err := url.ParseRequestURI(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsedURL.Scheme)
	}

	doc, err := t.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("head title").Text())

	markdown, err := htmltomarkdown.ConvertString(
		extractMainContent(doc),
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return nil, fmt.Errorf("convert page to markdown: %w", err)
	}

	return &Page{
		URL:     pageURL,
		Title:   title,
		Content: t.truncate(cleanMarkdown(markdown)),
	}, nil
}

func (t *Tool) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.opts.UserAgent)
	req.Header.Set("Accept", defaultAccept)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// extractMainContent strips non-content tags, then returns the HTML of the
// first matching content candidate.
func extractMainContent(doc *goquery.Document) string {
	for _, tag := range strippedTags {
		doc.Find(tag).Remove()
	}
	for _, selector := range contentCandidates {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if html, err := sel.First().Html(); err == nil {
			return html
		}
	}
	html, _ := doc.Html()
	return html
}

// cleanMarkdown collapses blank line runs and trims trailing whitespace.
func cleanMarkdown(content string) string {
	content = blankLines.ReplaceAllString(content, "\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (t *Tool) truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= t.opts.MaxContentLength {
		return content
	}
	return string(runes[:t.opts.MaxContentLength]) + truncationMarker
}
