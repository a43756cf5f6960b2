package strategy

import (
	"fmt"
	"math"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
)

// ReasonInsufficientData is the HOLD reason when a primary series is too short.
const ReasonInsufficientData = "Insufficient data"

// Evaluator classifies a SeriesSet into BUY, SELL or HOLD. It holds only its
// parameters, so one Evaluator may be shared across goroutines.
type Evaluator struct {
	params Params
}

// NewEvaluator validates p and returns an Evaluator using it.
func NewEvaluator(p Params) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("strategy params: %w", err)
	}
	return &Evaluator{params: p}, nil
}

var defaultEvaluator = &Evaluator{params: DefaultParams()}

// Evaluate classifies set with the default swing parameters.
func Evaluate(set *model.SeriesSet) model.Decision {
	return defaultEvaluator.Evaluate(set)
}

// Params returns the evaluator's parameters.
func (e *Evaluator) Params() Params { return e.params }

// Evaluate applies the rule set in priority order: insufficient data, 52-week
// low, all-time high, then the BUY and SELL condition sets (BUY first).
func (e *Evaluator) Evaluate(set *model.SeriesSet) model.Decision {
	p := e.params
	d := model.Decision{
		Symbol: set.Symbol,
		Signal: model.SignalHold,
		Price:  model.LastClose(set.Daily),
	}

	// Step a: every primary series must carry enough bars
	if len(set.Coarse) < p.MinBars || len(set.Daily) < p.MinBars || len(set.Fine) < p.MinBars {
		d.Reason = ReasonInsufficientData
		d.Trigger = model.TriggerInsufficientData
		return d
	}

	// Step b: indicators
	snap := e.Snapshot(set)
	d.Snapshot = snap
	d.Price = snap.Price

	// Step c: extremal alerts take priority over the rule sets
	if snap.NearYearLow {
		d.Signal = model.SignalBuy
		d.Trigger = model.TriggerYearLow
		d.Reason = fmt.Sprintf("52-week low alert: Price=$%.2f within %.1f%% of 52-week low $%.2f",
			snap.Price, p.YearLowTolerance*100, snap.YearLow)
		return d
	}
	if snap.NearAllTimeHigh {
		d.Signal = model.SignalSell
		d.Trigger = model.TriggerAllTimeHigh
		d.Reason = fmt.Sprintf("All-time high alert: Price=$%.2f within %.1f%% of all-time high $%.2f",
			snap.Price, p.AllTimeHighTolerance*100, snap.AllTimeHigh)
		return d
	}

	// Step d: rule sets
	d.Trigger = model.TriggerRules
	switch {
	case all(buyConditions(snap, p)):
		d.Signal = model.SignalBuy
		d.Reason = "All BUY conditions met: " + e.describe(snap)
	case all(sellConditions(snap, p)):
		d.Signal = model.SignalSell
		d.Reason = "All SELL conditions met: " + e.describe(snap)
	default:
		d.Reason = "Conditions not met: " + e.describe(snap)
	}
	return d
}

// Snapshot computes every indicator the rule set reads, as of the last bar.
func (e *Evaluator) Snapshot(set *model.SeriesSet) model.IndicatorSnapshot {
	p := e.params
	daily := calculator.Closes(set.Daily)

	snap := model.IndicatorSnapshot{
		Price:        model.LastClose(set.Daily),
		RSICoarse:    calculator.CalculateRSI(calculator.Closes(set.Coarse), p.RSIPeriod),
		RSIDaily:     calculator.CalculateRSI(daily, p.RSIPeriod),
		SMA:          lastSMA(daily, p.SMAPeriod),
		MACD:         calculator.CalculateMACD(daily, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Squeeze:      calculator.CalculateSqueeze(set.Daily, p.squeeze()),
		Breakdown:    calculator.IsBollingerBreakdown(calculator.Closes(set.Fine), p.BreakdownPeriod, p.BBStdDev),
		YearPosition: yearPosition(set.Year),
	}

	if p.Extremes {
		snap.NearYearLow, snap.YearLow = calculator.NearPeriodLow(set.Year, p.YearLowWindow, p.YearLowTolerance)
		snap.NearAllTimeHigh, snap.AllTimeHigh = calculator.NearAllTimeHigh(set.History, p.AllTimeHighMinBars, p.AllTimeHighTolerance)
	}
	return snap
}

func (e *Evaluator) describe(s model.IndicatorSnapshot) string {
	p := e.params
	return fmt.Sprintf("RSI_%s=%.1f, RSI_%s=%.1f, Price=$%.2f, SMA%d=$%.2f, MACD=%.2f/%.2f (hist %.2f), Squeeze=%s, BB breakdown=%t",
		p.CoarseLabel, s.RSICoarse, p.DailyLabel, s.RSIDaily, s.Price, p.SMAPeriod, s.SMA,
		s.MACD.Line, s.MACD.Signal, s.MACD.Histogram, s.Squeeze, s.Breakdown)
}

func lastSMA(values []float64, period int) float64 {
	v, err := calculator.CalculateSMA(values, period)
	if err != nil {
		return math.NaN()
	}
	return v
}

// yearPosition places the latest close within the trailing 52-week range, NaN
// without year bars.
func yearPosition(year []model.OHLCV) float64 {
	high, low, err := calculator.Calculate52WeekRange(year)
	if err != nil {
		return math.NaN()
	}
	pos, err := calculator.Calculate52WeekPosition(model.LastClose(year), high, low)
	if err != nil {
		return math.NaN()
	}
	return pos
}
