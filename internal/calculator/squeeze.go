package calculator

import (
	"github.com/markcheno/go-talib"

	"SwingSentinel/internal/model"
)

// TrueRangeSeries returns max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar has no previous close and uses high-low.
func TrueRangeSeries(bars []model.OHLCV) []float64 {
	if len(bars) == 0 {
		return nil
	}
	highs, lows := extractHighs(bars), extractLows(bars)
	tr := talib.TRange(highs, lows, extractCloses(bars))
	tr[0] = highs[0] - lows[0]
	return tr
}

// ATRSeries is the simple rolling mean of the true range.
func ATRSeries(bars []model.OHLCV, period int) []float64 {
	return SMASeries(TrueRangeSeries(bars), period)
}

// KeltnerChannel computes SMA(close, period) ± mult × ATR(period).
func KeltnerChannel(bars []model.OHLCV, period int, mult float64) Bands {
	mid := SMASeries(extractCloses(bars), period)
	atr := ATRSeries(bars, period)
	upper := make([]float64, len(bars))
	lower := make([]float64, len(bars))
	for i := range bars {
		upper[i] = mid[i] + mult*atr[i]
		lower[i] = mid[i] - mult*atr[i]
	}
	return Bands{Upper: upper, Middle: mid, Lower: lower}
}

// SqueezeParams configures the TTM squeeze comparison.
type SqueezeParams struct {
	BBPeriod  int
	BBStdDev  float64
	KCPeriod  int
	KCATRMult float64
}

// DefaultSqueezeParams returns BB(20, 2σ) against KC(20, 1.5 ATR).
func DefaultSqueezeParams() SqueezeParams {
	return SqueezeParams{BBPeriod: 20, BBStdDev: 2, KCPeriod: 20, KCATRMult: 1.5}
}

// CalculateSqueeze classifies the latest bar: compressed when both Bollinger
// bands sit strictly inside the Keltner channel, otherwise expanded.
func CalculateSqueeze(bars []model.OHLCV, p SqueezeParams) model.SqueezeState {
	n := len(bars)
	if n == 0 {
		return model.SqueezeExpanded
	}
	bb := BollingerBands(extractCloses(bars), p.BBPeriod, p.BBStdDev)
	kc := KeltnerChannel(bars, p.KCPeriod, p.KCATRMult)

	bbUpper, bbLower := bb.Upper[n-1], bb.Lower[n-1]
	kcUpper, kcLower := kc.Upper[n-1], kc.Lower[n-1]
	if bbUpper < kcUpper && bbLower > kcLower {
		return model.SqueezeCompressed
	}
	return model.SqueezeExpanded
}
