package calculator

import "math"

// CalculateRSI computes the RSI of the latest close using a simple rolling mean
// of gains and losses over period deltas (no Wilder smoothing).
//
// Returns NaN when fewer than period+1 closes are available or when the window
// has neither gains nor losses. A window with gains and no losses returns 100.
func CalculateRSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		} else if math.IsNaN(change) {
			gains[i], losses[i] = math.NaN(), math.NaN()
		}
	}

	avgGain := last(SMASeries(gains, period))
	avgLoss := last(SMASeries(losses, period))

	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN()
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
