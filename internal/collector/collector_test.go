package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

const yahooFixture = `{"chart":{"result":[{"meta":{"gmtoffset":-14400},
"timestamp":[1719840600,1719667800,1719927000],
"indicators":{"quote":[{
 "open":[101,100,null],"high":[103,102,null],"low":[99,98,null],
 "close":[102,101,null],"volume":[1000,900,null]}]}}],"error":null}}`

func TestYahooFetcher_ParsesSkipsNullsAndSorts(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(0))
	bars, err := f.FetchBars(context.Background(), "SPX500", IntervalDay, "3mo")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "range=3mo")

	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
	_, offset := bars[0].Time.Zone()
	assert.Equal(t, -14400, offset)
}

func TestYahooFetcher_FourHourAggregatesHourly(t *testing.T) {
	start := time.Date(2025, 3, 3, 13, 30, 0, 0, time.UTC).Unix()
	var ts []string
	var closes []string
	for i := 0; i < 7; i++ {
		ts = append(ts, fmt.Sprint(start+int64(i)*3600))
		closes = append(closes, fmt.Sprint(100+i))
	}
	body := fmt.Sprintf(`{"chart":{"result":[{"meta":{"gmtoffset":-18000},"timestamp":[%s],
"indicators":{"quote":[{"open":[%[2]s],"high":[%[2]s],"low":[%[2]s],"close":[%[2]s],"volume":[%[2]s]}]}}]}}`,
		strings.Join(ts, ","), strings.Join(closes, ","))

	var interval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		interval = r.URL.Query().Get("interval")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(0))
	bars, err := f.FetchBars(context.Background(), "AAPL", IntervalFourHour, "2mo")
	require.NoError(t, err)

	assert.Equal(t, IntervalHour, interval)
	require.Len(t, bars, 2)
	assert.Equal(t, 103.0, bars[0].Close)
	assert.Equal(t, 103.0, bars[0].High)
	assert.Equal(t, 100.0, bars[0].Low)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 106.0, bars[1].Close)
	assert.Equal(t, 104.0, bars[1].Open)
}

func TestYahooFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("range") == "bad" {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid range"}}}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := f.FetchBars(context.Background(), "AAPL", IntervalDay, "bad")
	assert.ErrorContains(t, err, "Invalid range")

	_, err = f.FetchBars(context.Background(), "AAPL", IntervalDay, "1y")
	assert.ErrorContains(t, err, "status 429")
}

func TestYahooFetcher_RateLimitHonoursContext(t *testing.T) {
	f := NewYahooFetcher(WithBaseURL("http://127.0.0.1:0"), WithRateLimit(0.001))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchBars(ctx, "AAPL", IntervalDay, "1y")
	assert.Error(t, err)
}

func TestRESTFetcher_FallsBackToHourly(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("interval") == IntervalFourHour {
			http.Error(w, "unsupported", http.StatusBadRequest)
			return
		}
		start := time.Date(2025, 3, 3, 14, 0, 0, 0, time.Local).Unix()
		var out []restBar
		for i := 4; i >= 0; i-- {
			c := 50 + float64(i)
			out = append(out, restBar{Timestamp: start + int64(i)*3600, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	bars, err := f.FetchBars(context.Background(), "MSFT", IntervalFourHour, "2mo")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&requests))

	require.Len(t, bars, 2)
	assert.Equal(t, 53.0, bars[0].Close)
	assert.Equal(t, 54.0, bars[0].High)
	assert.Equal(t, 49.0, bars[0].Low)
	assert.Equal(t, 40.0, bars[0].Volume)
	assert.Equal(t, 54.0, bars[1].Close)
}

func TestAggregateIntraday_SplitsAtDayBoundary(t *testing.T) {
	day1 := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	in := []model.OHLCV{
		{Time: day1, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1},
		{Time: day1.Add(time.Hour), Open: 1.5, High: 3, Low: 1, Close: 2, Volume: 1},
		{Time: day2, Open: 2, High: 2.5, Low: 1.5, Close: 2.2, Volume: 1},
	}
	out := aggregateIntraday(in, 4)
	require.Len(t, out, 2)
	assert.Equal(t, model.OHLCV{Time: day1, Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 2}, out[0])
	assert.Equal(t, in[2], out[1])
	assert.Empty(t, aggregateIntraday(nil, 4))
}

func TestMockFetcher_GeneratesBars(t *testing.T) {
	m := &MockFetcher{Price: 100}
	bars, err := m.FetchBars(context.Background(), "AAPL", IntervalDay, "3mo")
	require.NoError(t, err)
	assert.Len(t, bars, 63)
	assert.True(t, bars[0].Time.Before(bars[62].Time))

	_, err = m.FetchBars(context.Background(), "AAPL", "5m", "1mo")
	assert.Error(t, err)
	_, err = m.FetchBars(context.Background(), "AAPL", IntervalDay, "forever")
	assert.Error(t, err)
}

func TestCollector_Collect(t *testing.T) {
	m := &MockFetcher{Price: 100}
	c := NewCollector(m, DefaultTimeframes(), zerolog.Nop())

	set, err := c.Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", set.Symbol)
	assert.Len(t, set.Coarse, 84)
	assert.Len(t, set.Daily, 63)
	assert.Len(t, set.Fine, 147)
	assert.Len(t, set.Year, 252)
	assert.Len(t, set.History, 2520)
	assert.False(t, set.FetchedAt.IsZero())
	assert.Equal(t, []string{
		"AAPL/4h/2mo", "AAPL/1d/3mo", "AAPL/1h/1mo", "AAPL/1d/1y", "AAPL/1d/max",
	}, m.Calls())
}

func TestCollector_RequiredSeriesFailure(t *testing.T) {
	m := &MockFetcher{Price: 100, Err: map[string]error{IntervalHour: errors.New("boom")}}
	c := NewCollector(m, DefaultTimeframes(), zerolog.Nop())

	_, err := c.Collect(context.Background(), "AAPL")
	assert.ErrorContains(t, err, "fetch fine bars")
	assert.ErrorContains(t, err, "boom")
}

func TestCollector_OptionalSeriesFailureLeavesNil(t *testing.T) {
	frames := DefaultTimeframes()
	frames.Year = Timeframe{Interval: "1wk", Period: "1y"}
	frames.History = Timeframe{}
	m := &MockFetcher{Price: 100}
	c := NewCollector(m, frames, zerolog.Nop())

	set, err := c.Collect(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, set.Year)
	assert.Nil(t, set.History)
	assert.NotEmpty(t, set.Daily)
	assert.Equal(t, "mock", c.Source())
}
