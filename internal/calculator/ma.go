package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"

	"SwingSentinel/internal/model"
)

// SMASeries returns the rolling simple moving average aligned with values.
// Positions before the first full window are NaN.
func SMASeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sma := talib.Sma(values, period)
	copy(out[period-1:], sma[period-1:])
	return out
}

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sma := SMASeries(prices, period)
	return sma[len(sma)-1], nil
}

// EMASeries returns the exponential moving average for the given span using
// adjusted weights: each output is the (1-alpha)^i weighted mean of every value
// seen so far, alpha = 2/(span+1).
func EMASeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if span <= 0 {
		return nanSeries(len(values))
	}
	decay := 1 - 2/(float64(span)+1)
	var num, den float64
	for i, v := range values {
		num = v + decay*num
		den = 1 + decay*den
		out[i] = num / den
	}
	return out
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractHighs(bars []model.OHLCV) []float64 {
	highs := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
	}
	return highs
}

func extractLows(bars []model.OHLCV) []float64 {
	lows := make([]float64, len(bars))
	for i, b := range bars {
		lows[i] = b.Low
	}
	return lows
}

// Closes returns the close column of bars.
func Closes(bars []model.OHLCV) []float64 { return extractCloses(bars) }

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
