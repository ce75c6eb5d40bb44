package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbrief/core"
	"finbrief/tool"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="result result--ad">
  <a class="result__a" href="https://ads.example.com/promo">Sponsored result</a>
  <a class="result__snippet">Buy now!</a>
</div>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.apple.com%2Fnewsroom%2F&rut=abc">Apple Newsroom</a>
  <a class="result__snippet">Official Apple news and press releases.</a>
</div>
<div class="result">
  <a class="result__a" href="https://finance.yahoo.com/quote/AAPL">AAPL stock quote</a>
  <a class="result__snippet">Latest Apple Inc. stock price.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/third">Third result</a>
</div>
</body></html>`

func newTestToolContext() *core.ToolContext {
	emit := make(chan core.Event, 10)
	rc := core.NewRunContext(
		context.Background(),
		"inv-1",
		core.AgentInfo{Name: "Web Search Agent", Type: "specialist"},
		core.Request{},
		emit,
		nil,
	)
	return core.NewToolContext(rc, "fc1")
}

func TestSearch(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := New(func(o *Options) {
		o.BaseURL = srv.URL
	})

	results, err := ddg.Search(context.Background(), "apple news")
	require.NoError(t, err)

	assert.Equal(t, "apple news", gotQuery)
	assert.Equal(t, DefaultUserAgent, gotUA)

	// The ad is skipped, the redirect is unwrapped.
	require.Len(t, results, 3)
	assert.Equal(t, "Apple Newsroom", results[0].Title)
	assert.Equal(t, "https://www.apple.com/newsroom/", results[0].URL)
	assert.Equal(t, "Official Apple news and press releases.", results[0].Snippet)
	assert.Equal(t, "https://finance.yahoo.com/quote/AAPL", results[1].URL)
	assert.Empty(t, results[2].Snippet)
}

func TestSearchMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := New(func(o *Options) {
		o.BaseURL = srv.URL
		o.MaxResults = 1
	})

	results, err := ddg.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Apple Newsroom", results[0].Title)
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><div class="no-results">No results.</div></body></html>`))
	}))
	defer srv.Close()

	ddg := New(func(o *Options) { o.BaseURL = srv.URL })

	_, err := ddg.Search(context.Background(), "gibberishquery")
	assert.Error(t, err)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ddg := New(func(o *Options) { o.BaseURL = srv.URL })

	_, err := ddg.Search(context.Background(), "apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := New(func(o *Options) { o.BaseURL = srv.URL })

	result, err := ddg.Invoke(newTestToolContext(), map[string]any{"query": "apple news"})
	require.NoError(t, err)

	results, ok := result.([]SearchResult)
	require.True(t, ok)
	assert.NotEmpty(t, results)
}

func TestInvokeMaxResultsOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := New(func(o *Options) { o.BaseURL = srv.URL })

	// Function-call arguments arrive JSON-decoded, so numbers are float64.
	result, err := ddg.Invoke(newTestToolContext(), map[string]any{
		"query":       "apple news",
		"max_results": float64(1),
	})
	require.NoError(t, err)

	results, ok := result.([]SearchResult)
	require.True(t, ok)
	assert.Len(t, results, 1)
}

func TestInvokeValidation(t *testing.T) {
	ddg := New()

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing query", args: map[string]any{}},
		{name: "empty query", args: map[string]any{"query": "   "}},
		{name: "wrong type", args: map[string]any{"query": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ddg.Invoke(newTestToolContext(), tt.args)
			require.Error(t, err)
			toolErr, ok := err.(*tool.ToolError)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
		})
	}
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{
			href: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=x",
			want: "https://example.com/page",
		},
		{
			href: "https://example.com/direct",
			want: "https://example.com/direct",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveRedirect(tt.href))
	}
}

func TestToolMetadata(t *testing.T) {
	ddg := New()

	assert.Equal(t, "duckduckgo_search", ddg.Name())
	assert.NotEmpty(t, ddg.Description())

	props, ok := ddg.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "max_results")
}
