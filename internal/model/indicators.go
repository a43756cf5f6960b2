package model

// SqueezeState is the TTM squeeze classification at the latest bar.
type SqueezeState string

const (
	SqueezeCompressed SqueezeState = "compressed"
	SqueezeExpanded   SqueezeState = "expanded"
)

// MACD is the latest MACD triple.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// IndicatorSnapshot holds every value the evaluator derives from a SeriesSet.
// It is recomputed on each evaluation and never persisted by the evaluator.
type IndicatorSnapshot struct {
	Price     float64 // latest daily close
	RSICoarse float64
	RSIDaily  float64
	SMA       float64 // daily SMA over Params.SMAPeriod
	MACD      MACD
	Squeeze   SqueezeState
	Breakdown bool // fine-interval Bollinger breakdown

	YearPosition float64 // 0 at the 52-week low, 1 at the high; NaN without year bars

	YearLow         float64
	NearYearLow     bool
	AllTimeHigh     float64
	NearAllTimeHigh bool
}
