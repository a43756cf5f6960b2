package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"SwingSentinel/internal/model"
)

// Collector fetches every series the evaluator reads for one symbol.
type Collector struct {
	fetcher Fetcher
	frames  Timeframes
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, frames Timeframes, logger zerolog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		frames:  frames,
		logger:  logger.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
		now:     time.Now,
	}
}

// Source names the underlying fetcher.
func (c *Collector) Source() string { return c.fetcher.Name() }

// Collect fetches the coarse, daily and fine series, which are required, and
// the optional year and history series. A failed optional series is logged and
// left nil so the extremal checks are skipped.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.SeriesSet, error) {
	set := &model.SeriesSet{Symbol: symbol}

	required := []struct {
		name  string
		frame Timeframe
		dst   *[]model.OHLCV
	}{
		{"coarse", c.frames.Coarse, &set.Coarse},
		{"daily", c.frames.Daily, &set.Daily},
		{"fine", c.frames.Fine, &set.Fine},
	}
	for _, r := range required {
		bars, err := c.fetcher.FetchBars(ctx, symbol, r.frame.Interval, r.frame.Period)
		if err != nil {
			return nil, fmt.Errorf("fetch %s bars (%s/%s): %w", r.name, r.frame.Interval, r.frame.Period, err)
		}
		*r.dst = bars
	}

	optional := []struct {
		name  string
		frame Timeframe
		dst   *[]model.OHLCV
	}{
		{"year", c.frames.Year, &set.Year},
		{"history", c.frames.History, &set.History},
	}
	for _, o := range optional {
		if !o.frame.Enabled() {
			continue
		}
		bars, err := c.fetcher.FetchBars(ctx, symbol, o.frame.Interval, o.frame.Period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn().Err(err).Str("symbol", symbol).Str("series", o.name).Msg("optional series unavailable")
			continue
		}
		*o.dst = bars
	}

	set.FetchedAt = c.now()
	return set, nil
}
