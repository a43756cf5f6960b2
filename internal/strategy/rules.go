package strategy

import "SwingSentinel/internal/model"

// buyConditions must all hold for a rule-based BUY. The last clause is implied
// by the second.
func buyConditions(s model.IndicatorSnapshot, p Params) []bool {
	return []bool{
		s.RSICoarse > p.CoarseRSIBuy,
		s.Price > s.SMA,
		s.RSIDaily > p.DailyRSIBuy,
		s.Squeeze == model.SqueezeCompressed,
		s.MACD.Line > s.MACD.Signal && s.MACD.Histogram > 0,
		s.Price >= s.SMA,
	}
}

// sellConditions must all hold for a rule-based SELL.
func sellConditions(s model.IndicatorSnapshot, p Params) []bool {
	return []bool{
		s.RSIDaily < p.DailyRSISell,
		s.Price < s.SMA,
		s.MACD.Line < s.MACD.Signal,
		s.Breakdown,
	}
}

func all(conds []bool) bool {
	for _, c := range conds {
		if !c {
			return false
		}
	}
	return true
}
