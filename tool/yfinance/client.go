package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultBaseURL is the public Yahoo Finance JSON API host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// defaultUserAgent identifies requests as a regular browser; the API
	// rate limits the Go default agent aggressively.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ClientOptions configure the Yahoo Finance HTTP client.
type ClientOptions struct {
	// BaseURL overrides the API host (useful for tests).
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds the HTTP round trip when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the default client entirely.
	HTTPClient *http.Client
}

// Client fetches quote data from the public Yahoo Finance JSON API. It
// covers the four endpoints the toolkit builds on: daily price history,
// symbol news, the analyst recommendation trend and fundamental metrics.
type Client struct {
	opts   ClientOptions
	client *http.Client
}

// NewClient constructs a Client with default options.
func NewClient(optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		BaseURL:   DefaultBaseURL,
		UserAgent: defaultUserAgent,
		Timeout:   10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{opts: opts, client: client}
}

// apiError is the error payload Yahoo embeds in response envelopes.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("yahoo finance: %s (%s)", e.Description, e.Code)
	}
	return fmt.Sprintf("yahoo finance: %s", e.Code)
}

// formattedValue is Yahoo's wrapped numeric: the raw number plus the
// human-readable rendering ("3.46T").
type formattedValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

// Display prefers Yahoo's own formatting and falls back to a comma
// grouped rendering of the raw value.
func (v formattedValue) Display() string {
	if v.Fmt != "" {
		return v.Fmt
	}
	if v.Raw != 0 {
		return humanize.CommafWithDigits(v.Raw, 2)
	}
	return ""
}

// PricePoint is one cleaned daily observation.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Chart is a cleaned price history for one symbol. Points are ordered
// oldest first; days Yahoo reports as null are dropped.
type Chart struct {
	Symbol        string       `json:"symbol"`
	Currency      string       `json:"currency"`
	CurrentPrice  float64      `json:"current_price"`
	PreviousClose float64      `json:"previous_close"`
	AsOf          time.Time    `json:"as_of"`
	Points        []PricePoint `json:"points"`
}

// NewsItem is one news headline attached to a symbol.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// RecommendationPeriod is the analyst recommendation breakdown for one
// period ("0m" is the current month, "-1m" the month before, ...).
type RecommendationPeriod struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
}

// Fundamentals bundles valuation and profitability metrics for one symbol.
type Fundamentals struct {
	Symbol            string
	MarketCap         formattedValue
	TrailingPE        formattedValue
	ForwardPE         formattedValue
	TrailingEPS       formattedValue
	Beta              formattedValue
	DividendYield     formattedValue
	FiftyTwoWeekHigh  formattedValue
	FiftyTwoWeekLow   formattedValue
	ProfitMargins     formattedValue
	RevenueGrowth     formattedValue
	TargetMeanPrice   formattedValue
	RecommendationKey string
}

// Chart fetches the daily price history for the given range ("1mo", "1y", ...).
func (c *Client) Chart(ctx context.Context, symbol, rng string) (*Chart, error) {
	query := url.Values{}
	query.Set("range", rng)
	query.Set("interval", "1d")
	query.Set("includePrePost", "false")

	var envelope struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Currency           string  `json:"currency"`
					Symbol             string  `json:"symbol"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					ChartPreviousClose float64 `json:"chartPreviousClose"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close  []*float64 `json:"close"`
						Volume []*int64   `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *apiError `json:"error"`
		} `json:"chart"`
	}

	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), query, &envelope); err != nil {
		return nil, err
	}
	if envelope.Chart.Error != nil {
		return nil, envelope.Chart.Error
	}
	if len(envelope.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for symbol %q", symbol)
	}

	result := envelope.Chart.Result[0]
	chart := &Chart{
		Symbol:        result.Meta.Symbol,
		Currency:      result.Meta.Currency,
		CurrentPrice:  result.Meta.RegularMarketPrice,
		PreviousClose: result.Meta.ChartPreviousClose,
		AsOf:          time.Unix(result.Meta.RegularMarketTime, 0).UTC(),
	}

	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		for i, ts := range result.Timestamp {
			if i >= len(quote.Close) || quote.Close[i] == nil {
				continue // market holiday or missing observation
			}
			point := PricePoint{
				Time:  time.Unix(ts, 0).UTC(),
				Close: *quote.Close[i],
			}
			if i < len(quote.Volume) && quote.Volume[i] != nil {
				point.Volume = *quote.Volume[i]
			}
			chart.Points = append(chart.Points, point)
		}
	}

	if len(chart.Points) == 0 {
		return nil, fmt.Errorf("no usable price points for symbol %q", symbol)
	}

	return chart, nil
}

// News fetches up to count recent news items for the symbol.
func (c *Client) News(ctx context.Context, symbol string, count int) ([]NewsItem, error) {
	query := url.Values{}
	query.Set("q", symbol)
	query.Set("newsCount", fmt.Sprintf("%d", count))
	query.Set("quotesCount", "0")

	var envelope struct {
		News []struct {
			Title               string `json:"title"`
			Publisher           string `json:"publisher"`
			Link                string `json:"link"`
			ProviderPublishTime int64  `json:"providerPublishTime"`
		} `json:"news"`
	}

	if err := c.get(ctx, "/v1/finance/search", query, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.News) == 0 {
		return nil, fmt.Errorf("no news found for symbol %q", symbol)
	}

	items := make([]NewsItem, 0, len(envelope.News))
	for _, n := range envelope.News {
		items = append(items, NewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			URL:         n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
		})
	}
	return items, nil
}

// RecommendationTrend fetches the analyst recommendation breakdown per period.
func (c *Client) RecommendationTrend(ctx context.Context, symbol string) ([]RecommendationPeriod, error) {
	var envelope struct {
		QuoteSummary struct {
			Result []struct {
				RecommendationTrend struct {
					Trend []struct {
						Period     string `json:"period"`
						StrongBuy  int    `json:"strongBuy"`
						Buy        int    `json:"buy"`
						Hold       int    `json:"hold"`
						Sell       int    `json:"sell"`
						StrongSell int    `json:"strongSell"`
					} `json:"trend"`
				} `json:"recommendationTrend"`
			} `json:"result"`
			Error *apiError `json:"error"`
		} `json:"quoteSummary"`
	}

	if err := c.quoteSummary(ctx, symbol, "recommendationTrend", &envelope); err != nil {
		return nil, err
	}
	if envelope.QuoteSummary.Error != nil {
		return nil, envelope.QuoteSummary.Error
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no recommendation data for symbol %q", symbol)
	}

	trend := envelope.QuoteSummary.Result[0].RecommendationTrend.Trend
	periods := make([]RecommendationPeriod, 0, len(trend))
	for _, t := range trend {
		periods = append(periods, RecommendationPeriod{
			Period:     t.Period,
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		})
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no recommendation data for symbol %q", symbol)
	}
	return periods, nil
}

// Fundamentals fetches valuation and profitability metrics.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	var envelope struct {
		QuoteSummary struct {
			Result []struct {
				SummaryDetail struct {
					MarketCap        formattedValue `json:"marketCap"`
					TrailingPE       formattedValue `json:"trailingPE"`
					ForwardPE        formattedValue `json:"forwardPE"`
					Beta             formattedValue `json:"beta"`
					DividendYield    formattedValue `json:"dividendYield"`
					FiftyTwoWeekHigh formattedValue `json:"fiftyTwoWeekHigh"`
					FiftyTwoWeekLow  formattedValue `json:"fiftyTwoWeekLow"`
				} `json:"summaryDetail"`
				DefaultKeyStatistics struct {
					TrailingEPS formattedValue `json:"trailingEps"`
				} `json:"defaultKeyStatistics"`
				FinancialData struct {
					ProfitMargins     formattedValue `json:"profitMargins"`
					RevenueGrowth     formattedValue `json:"revenueGrowth"`
					TargetMeanPrice   formattedValue `json:"targetMeanPrice"`
					RecommendationKey string         `json:"recommendationKey"`
				} `json:"financialData"`
			} `json:"result"`
			Error *apiError `json:"error"`
		} `json:"quoteSummary"`
	}

	if err := c.quoteSummary(ctx, symbol, "summaryDetail,defaultKeyStatistics,financialData", &envelope); err != nil {
		return nil, err
	}
	if envelope.QuoteSummary.Error != nil {
		return nil, envelope.QuoteSummary.Error
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals data for symbol %q", symbol)
	}

	result := envelope.QuoteSummary.Result[0]
	return &Fundamentals{
		Symbol:            symbol,
		MarketCap:         result.SummaryDetail.MarketCap,
		TrailingPE:        result.SummaryDetail.TrailingPE,
		ForwardPE:         result.SummaryDetail.ForwardPE,
		TrailingEPS:       result.DefaultKeyStatistics.TrailingEPS,
		Beta:              result.SummaryDetail.Beta,
		DividendYield:     result.SummaryDetail.DividendYield,
		FiftyTwoWeekHigh:  result.SummaryDetail.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:   result.SummaryDetail.FiftyTwoWeekLow,
		ProfitMargins:     result.FinancialData.ProfitMargins,
		RevenueGrowth:     result.FinancialData.RevenueGrowth,
		TargetMeanPrice:   result.FinancialData.TargetMeanPrice,
		RecommendationKey: result.FinancialData.RecommendationKey,
	}, nil
}

func (c *Client) quoteSummary(ctx context.Context, symbol, modules string, v any) error {
	query := url.Values{}
	query.Set("modules", modules)
	return c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), query, v)
}

// get performs one GET round trip and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	endpoint := c.opts.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo finance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo finance returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode yahoo finance response: %w", err)
	}
	return nil
}
