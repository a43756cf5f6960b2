package collector

import (
	"SwingSentinel/internal/model"
)

// aggregateIntraday merges runs of n consecutive bars within the same trading
// day into one bar, so buckets are anchored at the session open. The final
// bucket of a day may hold fewer than n bars.
func aggregateIntraday(bars []model.OHLCV, n int) []model.OHLCV {
	if len(bars) == 0 || n <= 1 {
		return bars
	}
	var out []model.OHLCV
	var cur model.OHLCV
	count := 0
	for _, b := range bars {
		if count > 0 && (count == n || !sameDay(cur, b)) {
			out = append(out, cur)
			count = 0
		}
		if count == 0 {
			cur = b
		} else {
			if b.High > cur.High {
				cur.High = b.High
			}
			if b.Low < cur.Low {
				cur.Low = b.Low
			}
			cur.Close = b.Close
			cur.Volume += b.Volume
		}
		count++
	}
	if count > 0 {
		out = append(out, cur)
	}
	return out
}

func sameDay(a, b model.OHLCV) bool {
	ay, am, ad := a.Time.Date()
	by, bm, bd := b.Time.In(a.Time.Location()).Date()
	return ay == by && am == bm && ad == bd
}
