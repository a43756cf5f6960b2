package collector

import (
	"context"

	"SwingSentinel/internal/model"
)

// Bar intervals understood by every Fetcher.
const (
	IntervalHour     = "1h"
	IntervalFourHour = "4h"
	IntervalDay      = "1d"
)

// Fetcher defines the interface for fetching market data.
// Period uses Yahoo range notation ("1mo", "3mo", "1y", "max").
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, interval, period string) ([]model.OHLCV, error)
	Name() string
}

// Timeframe is one interval/period request.
type Timeframe struct {
	Interval string `yaml:"interval"`
	Period   string `yaml:"period"`
}

// Enabled reports whether the timeframe should be fetched at all.
func (t Timeframe) Enabled() bool { return t.Interval != "" && t.Period != "" }

// Timeframes names the request behind each series of a SeriesSet.
type Timeframes struct {
	Coarse  Timeframe `yaml:"coarse"`
	Daily   Timeframe `yaml:"daily"`
	Fine    Timeframe `yaml:"fine"`
	Year    Timeframe `yaml:"year"`
	History Timeframe `yaml:"history"`
}

// DefaultTimeframes returns 4h over two months, daily over three months, hourly
// over one month, plus a one-year and a full-history daily series.
func DefaultTimeframes() Timeframes {
	return Timeframes{
		Coarse:  Timeframe{Interval: IntervalFourHour, Period: "2mo"},
		Daily:   Timeframe{Interval: IntervalDay, Period: "3mo"},
		Fine:    Timeframe{Interval: IntervalHour, Period: "1mo"},
		Year:    Timeframe{Interval: IntervalDay, Period: "1y"},
		History: Timeframe{Interval: IntervalDay, Period: "max"},
	}
}
