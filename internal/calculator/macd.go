package calculator

import "SwingSentinel/internal/model"

// CalculateMACD returns the latest MACD line, signal line and histogram.
// line = EMA(fast) - EMA(slow); signal = EMA(line, signal).
func CalculateMACD(closes []float64, fast, slow, signal int) model.MACD {
	line, sig := macdSeries(closes, fast, slow, signal)
	l, s := last(line), last(sig)
	return model.MACD{Line: l, Signal: s, Histogram: l - s}
}

// MACDHistogramSeries returns the histogram at every bar.
func MACDHistogramSeries(closes []float64, fast, slow, signal int) []float64 {
	line, sig := macdSeries(closes, fast, slow, signal)
	hist := make([]float64, len(closes))
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return hist
}

func macdSeries(closes []float64, fast, slow, signal int) (line, sig []float64) {
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	return line, EMASeries(line, signal)
}
