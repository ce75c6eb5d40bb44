// Package yfinance provides financial data tools backed by the public
// Yahoo Finance API. The Toolkit bundles four independently toggleable
// capabilities: current price with a history summary, company news, the
// analyst recommendation trend and stock fundamentals. When nothing is
// enabled explicitly, the price tool alone is exposed.
package yfinance

import (
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"finbrief/core"
	"finbrief/tool"
)

// Options configure the toolkit: which capabilities are exposed and how
// the underlying client talks to the API.
type Options struct {
	// StockPrice exposes get_stock_price.
	StockPrice bool

	// CompanyNews exposes get_company_news.
	CompanyNews bool

	// AnalystRecommendations exposes get_analyst_recommendations.
	AnalystRecommendations bool

	// StockFundamentals exposes get_stock_fundamentals.
	StockFundamentals bool

	// NewsCount caps the number of returned news items.
	NewsCount int

	// Range is the price history window ("1mo", "6mo", "1y", ...).
	Range string

	// BaseURL overrides the API host (useful for tests).
	BaseURL string

	// Timeout bounds HTTP round trips when no HTTPClient is supplied.
	Timeout time.Duration

	// HTTPClient overrides the default client entirely.
	HTTPClient *http.Client
}

// Toolkit builds tool.Tool instances for the enabled capabilities.
type Toolkit struct {
	client *Client
	opts   Options
}

// New constructs a Toolkit with default options.
func New(optFns ...func(o *Options)) *Toolkit {
	opts := Options{
		NewsCount: 5,
		Range:     "1y",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := NewClient(func(o *ClientOptions) {
		if opts.BaseURL != "" {
			o.BaseURL = opts.BaseURL
		}
		if opts.Timeout > 0 {
			o.Timeout = opts.Timeout
		}
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})
	return newToolkit(client, opts)
}

// NewFromClient constructs a Toolkit from an existing client. The BaseURL,
// Timeout and HTTPClient options are ignored; the client is used as provided.
func NewFromClient(client *Client, optFns ...func(o *Options)) *Toolkit {
	opts := Options{
		NewsCount: 5,
		Range:     "1y",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return newToolkit(client, opts)
}

func newToolkit(client *Client, opts Options) *Toolkit {
	if !opts.StockPrice && !opts.CompanyNews && !opts.AnalystRecommendations && !opts.StockFundamentals {
		opts.StockPrice = true
	}
	if opts.NewsCount <= 0 {
		opts.NewsCount = 5
	}
	if opts.Range == "" {
		opts.Range = "1y"
	}
	return &Toolkit{client: client, opts: opts}
}

// symbolArgs is the shared argument schema of all toolkit tools.
type symbolArgs struct {
	Symbol string `json:"symbol" description:"Ticker symbol, e.g. AAPL"`
}

// Tools returns the enabled tools in a stable order: price, news,
// recommendations, fundamentals.
func (tk *Toolkit) Tools() []tool.Tool {
	var tools []tool.Tool
	if tk.opts.StockPrice {
		tools = append(tools, tool.NewFunctionToolFromStruct(
			"get_stock_price",
			"Get the current price of a stock symbol plus a summary of its price history (change, high, low, average volume, month-end closes).",
			symbolArgs{},
			tk.stockPrice,
		))
	}
	if tk.opts.CompanyNews {
		tools = append(tools, tool.NewFunctionToolFromStruct(
			"get_company_news",
			"Get recent news headlines for a stock symbol, with publisher and source URL for citation.",
			symbolArgs{},
			tk.companyNews,
		))
	}
	if tk.opts.AnalystRecommendations {
		tools = append(tools, tool.NewFunctionToolFromStruct(
			"get_analyst_recommendations",
			"Get the analyst recommendation trend (strong buy / buy / hold / sell counts per month) for a stock symbol.",
			symbolArgs{},
			tk.analystRecommendations,
		))
	}
	if tk.opts.StockFundamentals {
		tools = append(tools, tool.NewFunctionToolFromStruct(
			"get_stock_fundamentals",
			"Get valuation and fundamental metrics (market cap, P/E, EPS, margins, 52 week range) for a stock symbol.",
			symbolArgs{},
			tk.stockFundamentals,
		))
	}
	return tools
}

// PriceSummary is the model-facing answer of get_stock_price. All numbers
// are pre-formatted strings so the model can quote them verbatim.
type PriceSummary struct {
	Symbol        string `json:"symbol"`
	Currency      string `json:"currency,omitempty"`
	CurrentPrice  string `json:"current_price"`
	StartPrice    string `json:"start_price"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	PeriodHigh    string `json:"period_high"`
	PeriodLow     string `json:"period_low"`
	AverageVolume string `json:"average_volume,omitempty"`
	Range         string `json:"range"`
	AsOf          string `json:"as_of"`

	// MonthlyCloses is the closing price at the end of each calendar
	// month in the range, oldest first.
	MonthlyCloses []MonthlyClose `json:"monthly_closes,omitempty"`
}

// MonthlyClose is one month-end closing price in a PriceSummary.
type MonthlyClose struct {
	Month string `json:"month"`
	Close string `json:"close"`
}

// NewsSummary is one model-facing news entry of get_company_news.
type NewsSummary struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Age       string `json:"age"`
}

// RecommendationSummary is the model-facing answer of get_analyst_recommendations.
type RecommendationSummary struct {
	Symbol string                 `json:"symbol"`
	Trend  []RecommendationPeriod `json:"trend"`
}

// FundamentalsSummary is the model-facing answer of get_stock_fundamentals.
// Metrics Yahoo did not report are omitted.
type FundamentalsSummary struct {
	Symbol             string `json:"symbol"`
	MarketCap          string `json:"market_cap,omitempty"`
	TrailingPE         string `json:"trailing_pe,omitempty"`
	ForwardPE          string `json:"forward_pe,omitempty"`
	EPS                string `json:"eps,omitempty"`
	Beta               string `json:"beta,omitempty"`
	DividendYield      string `json:"dividend_yield,omitempty"`
	FiftyTwoWeekHigh   string `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow    string `json:"fifty_two_week_low,omitempty"`
	ProfitMargins      string `json:"profit_margins,omitempty"`
	RevenueGrowth      string `json:"revenue_growth,omitempty"`
	AnalystTargetPrice string `json:"analyst_target_price,omitempty"`
	Recommendation     string `json:"recommendation,omitempty"`
}

func (tk *Toolkit) stockPrice(tc *core.ToolContext, args map[string]any) (any, error) {
	symbol := normalizeSymbol(args)
	chart, err := tk.client.Chart(tc.Context(), symbol, tk.opts.Range)
	if err != nil {
		return nil, err
	}
	return summarizeChart(chart, tk.opts.Range), nil
}

func (tk *Toolkit) companyNews(tc *core.ToolContext, args map[string]any) (any, error) {
	symbol := normalizeSymbol(args)
	items, err := tk.client.News(tc.Context(), symbol, tk.opts.NewsCount)
	if err != nil {
		return nil, err
	}
	summaries := make([]NewsSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, NewsSummary{
			Title:     item.Title,
			Publisher: item.Publisher,
			URL:       item.URL,
			Published: item.PublishedAt.Format("2006-01-02"),
			Age:       humanize.Time(item.PublishedAt),
		})
	}
	return summaries, nil
}

func (tk *Toolkit) analystRecommendations(tc *core.ToolContext, args map[string]any) (any, error) {
	symbol := normalizeSymbol(args)
	trend, err := tk.client.RecommendationTrend(tc.Context(), symbol)
	if err != nil {
		return nil, err
	}
	return RecommendationSummary{Symbol: symbol, Trend: trend}, nil
}

func (tk *Toolkit) stockFundamentals(tc *core.ToolContext, args map[string]any) (any, error) {
	symbol := normalizeSymbol(args)
	f, err := tk.client.Fundamentals(tc.Context(), symbol)
	if err != nil {
		return nil, err
	}
	return FundamentalsSummary{
		Symbol:             f.Symbol,
		MarketCap:          f.MarketCap.Display(),
		TrailingPE:         f.TrailingPE.Display(),
		ForwardPE:          f.ForwardPE.Display(),
		EPS:                f.TrailingEPS.Display(),
		Beta:               f.Beta.Display(),
		DividendYield:      f.DividendYield.Display(),
		FiftyTwoWeekHigh:   f.FiftyTwoWeekHigh.Display(),
		FiftyTwoWeekLow:    f.FiftyTwoWeekLow.Display(),
		ProfitMargins:      f.ProfitMargins.Display(),
		RevenueGrowth:      f.RevenueGrowth.Display(),
		AnalystTargetPrice: f.TargetMeanPrice.Display(),
		Recommendation:     f.RecommendationKey,
	}, nil
}

// normalizeSymbol reads the schema-validated symbol argument. Tickers are
// upper-cased to match Yahoo's canonical form.
func normalizeSymbol(args map[string]any) string {
	return strings.ToUpper(strings.TrimSpace(args["symbol"].(string)))
}

// summarizeChart condenses a price history into the flat summary handed to
// the model. Change arithmetic runs on decimals to avoid float drift in the
// reported figures.
func summarizeChart(chart *Chart, rng string) PriceSummary {
	current := decimal.NewFromFloat(chart.CurrentPrice)
	start := decimal.NewFromFloat(chart.Points[0].Close)

	change := current.Sub(start)
	pct := decimal.Zero
	if !start.IsZero() {
		pct = change.Div(start).Mul(decimal.NewFromInt(100))
	}

	high, low := chart.Points[0].Close, chart.Points[0].Close
	var volumeSum, volumeDays int64
	for _, p := range chart.Points {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
		if p.Volume > 0 {
			volumeSum += p.Volume
			volumeDays++
		}
	}

	summary := PriceSummary{
		Symbol:        chart.Symbol,
		Currency:      chart.Currency,
		CurrentPrice:  current.StringFixed(2),
		StartPrice:    start.StringFixed(2),
		Change:        change.StringFixed(2),
		ChangePercent: pct.StringFixed(2) + "%",
		PeriodHigh:    decimal.NewFromFloat(high).StringFixed(2),
		PeriodLow:     decimal.NewFromFloat(low).StringFixed(2),
		Range:         rng,
		AsOf:          chart.AsOf.Format("2006-01-02"),
		MonthlyCloses: monthEndCloses(chart.Points),
	}
	if volumeDays > 0 {
		summary.AverageVolume = humanize.Comma(volumeSum / volumeDays)
	}
	return summary
}

// monthEndCloses keeps the last close of each calendar month, oldest
// first. Points are already time-ordered, so the last point seen before
// the month changes is the month end.
func monthEndCloses(points []PricePoint) []MonthlyClose {
	var series []MonthlyClose
	for i, p := range points {
		if i < len(points)-1 {
			next := points[i+1].Time
			if next.Year() == p.Time.Year() && next.Month() == p.Time.Month() {
				continue
			}
		}
		series = append(series, MonthlyClose{
			Month: p.Time.Format("2006-01"),
			Close: decimal.NewFromFloat(p.Close).StringFixed(2),
		})
	}
	return series
}
