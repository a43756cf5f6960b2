// Package dedup remembers the price of the last alert sent per symbol and
// signal, so a repeated signal at an unchanged price is not re-sent.
package dedup

import (
	"context"

	"SwingSentinel/internal/model"
)

// Store is the last-alert map owned by the poller.
type Store interface {
	// Last returns the price recorded for (symbol, signal); ok is false when none is.
	Last(ctx context.Context, symbol string, signal model.Signal) (price float64, ok bool, err error)
	// Remember records price as the last alert for (symbol, signal).
	Remember(ctx context.Context, symbol string, signal model.Signal, price float64) error
	// Forget clears every signal recorded for symbol.
	Forget(ctx context.Context, symbol string) error
}

// ShouldAlert reports whether an actionable decision at price is new: nothing
// is recorded for the pair, or the recorded price differs.
func ShouldAlert(ctx context.Context, s Store, symbol string, signal model.Signal, price float64) (bool, error) {
	last, ok, err := s.Last(ctx, symbol, signal)
	if err != nil {
		return false, err
	}
	return !ok || last != price, nil
}
