package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"SwingSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars keyed by interval take precedence; otherwise a gentle uptrend around
// Price is generated.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.OHLCV
	Err   map[string]error // keyed by interval

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, symbol+"/"+interval+"/"+period)
	m.mu.Unlock()

	if err, ok := m.Err[interval]; ok && err != nil {
		return nil, err
	}
	if bars, ok := m.Bars[interval]; ok {
		return bars, nil
	}
	n, err := approxBarCount(interval, period)
	if err != nil {
		return nil, err
	}
	step, err := intervalDuration(interval)
	if err != nil {
		return nil, err
	}
	return generateMockBars(m.Price, n, step), nil
}

// Calls returns the symbol/interval/period requests seen so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Date(2025, 6, 30, 16, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

func intervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case IntervalHour:
		return time.Hour, nil
	case IntervalFourHour:
		return 4 * time.Hour, nil
	case IntervalDay:
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported interval %q", interval)
}

// approxBarCount estimates how many bars a US equity session yields for the
// interval over the period: 252 sessions a year, 7 hourly bars per session.
func approxBarCount(interval, period string) (int, error) {
	var days int
	switch {
	case period == "max":
		days = 252 * 10
	case strings.HasSuffix(period, "mo"):
		n, err := strconv.Atoi(strings.TrimSuffix(period, "mo"))
		if err != nil {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		days = n * 21
	case strings.HasSuffix(period, "y"):
		n, err := strconv.Atoi(strings.TrimSuffix(period, "y"))
		if err != nil {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		days = n * 252
	case strings.HasSuffix(period, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(period, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		days = n
	default:
		return 0, fmt.Errorf("invalid period %q", period)
	}
	switch interval {
	case IntervalHour:
		return days * 7, nil
	case IntervalFourHour:
		return days * 2, nil
	case IntervalDay:
		return days, nil
	}
	return 0, fmt.Errorf("unsupported interval %q", interval)
}
