package calculator

import (
	"errors"
	"math"

	"SwingSentinel/internal/model"
)

// TradingDaysPerYear is the bar count of a one-year daily window.
const TradingDaysPerYear = 252

// CalculateRange scans the most recent window bars and returns the high and low.
// A non-positive window scans every bar.
func CalculateRange(bars []model.OHLCV, window int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := 0
	if window > 0 && n > window {
		start = n - window
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// Calculate52WeekRange scans the most recent 252 trading days and returns the high and low.
func Calculate52WeekRange(dailyBars []model.OHLCV) (high, low float64, err error) {
	return CalculateRange(dailyBars, TradingDaysPerYear)
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// NearPeriodLow reports whether the latest close is within tolerance above the
// lowest low of the trailing window. Fewer than window bars never triggers.
func NearPeriodLow(bars []model.OHLCV, window int, tolerance float64) (bool, float64) {
	if window <= 0 || len(bars) < window {
		return false, math.NaN()
	}
	_, low, err := CalculateRange(bars, window)
	if err != nil {
		return false, math.NaN()
	}
	return model.LastClose(bars) <= low*(1+tolerance), low
}

// NearAllTimeHigh reports whether the latest close is within tolerance below the
// highest high of the whole series. Fewer than minBars bars never triggers.
func NearAllTimeHigh(bars []model.OHLCV, minBars int, tolerance float64) (bool, float64) {
	if len(bars) == 0 || len(bars) < minBars {
		return false, math.NaN()
	}
	high, _, err := CalculateRange(bars, 0)
	if err != nil {
		return false, math.NaN()
	}
	return model.LastClose(bars) >= high*(1-tolerance), high
}
