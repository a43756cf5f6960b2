package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SeriesSet holds the bars of one symbol at every timeframe the evaluator reads.
// Coarse, Daily and Fine are required; Year and History are optional long-horizon
// daily series used only by the extremal checks.
type SeriesSet struct {
	Symbol    string
	Coarse    []OHLCV
	Daily     []OHLCV
	Fine      []OHLCV
	Year      []OHLCV
	History   []OHLCV
	FetchedAt time.Time
}

// LastClose returns the close of the final bar, or 0 for an empty series.
func LastClose(bars []OHLCV) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}
