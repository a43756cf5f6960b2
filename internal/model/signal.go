package model

import "time"

// Signal is the evaluator's classification.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Actionable reports whether the signal should produce an alert.
func (s Signal) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// TriggerType indicates which branch of the rule set decided.
type TriggerType string

const (
	TriggerInsufficientData TriggerType = "INSUFFICIENT_DATA"
	TriggerYearLow          TriggerType = "YEAR_LOW"
	TriggerAllTimeHigh      TriggerType = "ALL_TIME_HIGH"
	TriggerRules            TriggerType = "RULES"
)

// Decision is the final output of the strategy engine.
type Decision struct {
	Symbol   string
	Signal   Signal
	Reason   string
	Price    float64
	Trigger  TriggerType
	Snapshot IndicatorSnapshot
}

// Alert is an actionable decision that passed de-duplication.
type Alert struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Signal     Signal    `json:"signal"`
	Price      float64   `json:"price"`
	Reason     string    `json:"reason"`
	Commentary string    `json:"commentary,omitempty"`
}
