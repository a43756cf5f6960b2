package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"SwingSentinel/internal/model"
)

const (
	// DefaultYahooBaseURL is the public chart API host.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// DefaultYahooRate is the request budget per second shared by all symbols.
	DefaultYahooRate = 2
)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter
}

// YahooOption configures a YahooFetcher.
type YahooOption func(*YahooFetcher)

// WithBaseURL points the fetcher at another chart API host.
func WithBaseURL(baseURL string) YahooOption {
	return func(f *YahooFetcher) { f.BaseURL = baseURL }
}

// WithRateLimit sets the request budget per second. Non-positive disables limiting.
func WithRateLimit(perSecond float64) YahooOption {
	return func(f *YahooFetcher) {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithProxy routes requests through proxyURL.
func WithProxy(proxyURL string) YahooOption {
	return func(f *YahooFetcher) {
		if proxyURL == "" {
			return
		}
		if u, err := url.Parse(proxyURL); err == nil {
			f.Client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
		}
	}
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts ...YahooOption) *YahooFetcher {
	f := &YahooFetcher{
		BaseURL: DefaultYahooBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultYahooRate), DefaultYahooRate),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays carry null for bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

// FetchBars returns bars for symbol. Yahoo has no 4h interval, so 4h bars are
// built from hourly bars.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error) {
	if interval == IntervalFourHour {
		hourly, err := f.fetchChart(ctx, symbol, IntervalHour, period)
		if err != nil {
			return nil, err
		}
		return aggregateIntraday(hourly, 4), nil
	}
	return f.fetchChart(ctx, symbol, interval, period)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.OHLCV, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("interval", interval)
	q.Set("range", rng)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quotes returned for %s", symbol)
	}
	quote := result.Indicators.Quote[0]
	loc := time.FixedZone("exchange", int(result.Meta.GMTOffset))
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // skip null bars (holidays, halted sessions)
		}
		o, _ := at(quote.Open, i)
		h, _ := at(quote.High, i)
		l, _ := at(quote.Low, i)
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
