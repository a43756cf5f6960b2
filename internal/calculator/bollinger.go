package calculator

import "math"

// Bands holds band series aligned with the input prices; warm-up positions are NaN.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands computes SMA(period) ± k standard deviations. The deviation is
// the sample (n-1) standard deviation of each window.
func BollingerBands(closes []float64, period int, k float64) Bands {
	mid := SMASeries(closes, period)
	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	for i := period - 1; i >= 0 && i < len(closes); i++ {
		sd := sampleStdDev(closes[i-period+1:i+1], mid[i])
		upper[i] = mid[i] + k*sd
		lower[i] = mid[i] - k*sd
	}
	return Bands{Upper: upper, Middle: mid, Lower: lower}
}

// IsBollingerBreakdown reports a fresh downward crossing of the lower band: the
// latest close is below the latest lower band while the previous close was at or
// above the previous lower band. A sustained breach does not fire again.
func IsBollingerBreakdown(closes []float64, period int, k float64) bool {
	n := len(closes)
	if period <= 0 || n < period+1 {
		return false
	}
	bands := BollingerBands(closes, period, k)
	return closes[n-1] < bands.Lower[n-1] && closes[n-2] >= bands.Lower[n-2]
}

func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return math.NaN()
	}
	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(window)-1))
}
