package strategy

import (
	"fmt"
	"sort"
	"strings"

	"SwingSentinel/internal/calculator"
)

// Params holds every threshold and look-back of the rule set. The daemon
// variants differ only in these values.
type Params struct {
	MinBars int `yaml:"min_bars"`

	RSIPeriod    int     `yaml:"rsi_period"`
	CoarseRSIBuy float64 `yaml:"coarse_rsi_buy"`
	DailyRSIBuy  float64 `yaml:"daily_rsi_buy"`
	DailyRSISell float64 `yaml:"daily_rsi_sell"`

	SMAPeriod int `yaml:"sma_period"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	BBPeriod  int     `yaml:"bb_period"`
	BBStdDev  float64 `yaml:"bb_std_dev"`
	KCPeriod  int     `yaml:"kc_period"`
	KCATRMult float64 `yaml:"kc_atr_mult"`

	BreakdownPeriod int `yaml:"breakdown_period"`

	// Extremes enables the 52-week-low and all-time-high checks.
	Extremes             bool    `yaml:"extremes"`
	YearLowWindow        int     `yaml:"year_low_window"`
	YearLowTolerance     float64 `yaml:"year_low_tolerance"`
	AllTimeHighMinBars   int     `yaml:"all_time_high_min_bars"`
	AllTimeHighTolerance float64 `yaml:"all_time_high_tolerance"`

	CoarseLabel string `yaml:"coarse_label"`
	DailyLabel  string `yaml:"daily_label"`
}

// DefaultParams returns the swing rule set: RSI(14) 55/50, SMA21, MACD(12,26,9),
// BB(20, 2σ) vs KC(20, 1.5 ATR), 1% extremal tolerances.
func DefaultParams() Params {
	return Params{
		MinBars:              50,
		RSIPeriod:            14,
		CoarseRSIBuy:         55,
		DailyRSIBuy:          50,
		DailyRSISell:         50,
		SMAPeriod:            21,
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		BBPeriod:             20,
		BBStdDev:             2,
		KCPeriod:             20,
		KCATRMult:            1.5,
		BreakdownPeriod:      20,
		Extremes:             true,
		YearLowWindow:        calculator.TradingDaysPerYear,
		YearLowTolerance:     0.01,
		AllTimeHighMinBars:   100,
		AllTimeHighTolerance: 0.01,
		CoarseLabel:          "4H",
		DailyLabel:           "1D",
	}
}

var presets = map[string]func() Params{
	"swing": DefaultParams,
	// classic is the three-timeframe rule set without extremal alerts.
	"classic": func() Params {
		p := DefaultParams()
		p.Extremes = false
		return p
	},
	// conservative demands stronger momentum before buying and weaker before selling.
	"conservative": func() Params {
		p := DefaultParams()
		p.CoarseRSIBuy = 60
		p.DailyRSIBuy = 55
		p.DailyRSISell = 45
		return p
	},
}

// Preset returns the named variant's parameters.
func Preset(name string) (Params, error) {
	if name == "" {
		name = "swing"
	}
	fn, ok := presets[strings.ToLower(name)]
	if !ok {
		return Params{}, fmt.Errorf("unknown strategy variant %q (known: %s)", name, strings.Join(Variants(), ", "))
	}
	return fn(), nil
}

// Variants lists the preset names in sorted order.
func Variants() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the parameters describe a computable rule set.
func (p Params) Validate() error {
	periods := map[string]int{
		"rsi_period":       p.RSIPeriod,
		"sma_period":       p.SMAPeriod,
		"macd_fast":        p.MACDFast,
		"macd_slow":        p.MACDSlow,
		"macd_signal":      p.MACDSignal,
		"bb_period":        p.BBPeriod,
		"kc_period":        p.KCPeriod,
		"breakdown_period": p.BreakdownPeriod,
	}
	longest := 0
	for name, v := range periods {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
		if v > longest {
			longest = v
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.BBStdDev <= 0 || p.KCATRMult <= 0 {
		return fmt.Errorf("bb_std_dev and kc_atr_mult must be positive")
	}
	// RSI and the breakdown check both look one bar further back than their period.
	if p.MinBars < longest+1 {
		return fmt.Errorf("min_bars (%d) must cover the longest look-back (%d)", p.MinBars, longest+1)
	}
	if p.Extremes {
		if p.YearLowWindow <= 0 || p.AllTimeHighMinBars <= 0 {
			return fmt.Errorf("year_low_window and all_time_high_min_bars must be positive")
		}
		if p.YearLowTolerance < 0 || p.AllTimeHighTolerance < 0 {
			return fmt.Errorf("extremal tolerances must not be negative")
		}
	}
	return nil
}

func (p Params) squeeze() calculator.SqueezeParams {
	return calculator.SqueezeParams{
		BBPeriod:  p.BBPeriod,
		BBStdDev:  p.BBStdDev,
		KCPeriod:  p.KCPeriod,
		KCATRMult: p.KCATRMult,
	}
}
