package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"SwingSentinel/internal/advisor"
	"SwingSentinel/internal/dedup"
	"SwingSentinel/internal/metrics"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/recorder"
)

// Source yields the series set of one symbol.
type Source interface {
	Collect(ctx context.Context, symbol string) (*model.SeriesSet, error)
}

// Evaluator classifies a series set.
type Evaluator interface {
	Evaluate(set *model.SeriesSet) model.Decision
}

// Deps are the collaborators a Scheduler drives.
type Deps struct {
	Source    Source
	Evaluator Evaluator
	Store     dedup.Store
	Advisor   advisor.Advisor
	Recorder  recorder.Recorder
	Notifier  *notifier.Notifier
}

// Options tune the poll loop.
type Options struct {
	Interval      time.Duration
	Concurrency   int
	StartupNotice bool
}

// Scheduler polls every ticker on a fixed cadence and turns new actionable
// decisions into alerts.
type Scheduler struct {
	cron    *cron.Cron
	deps    Deps
	symbols []string
	opts    Options
	logger  zerolog.Logger
	ctx     context.Context
	now     func() time.Time

	mu     sync.RWMutex
	latest map[string]model.Decision

	// cycleMu serialises cycles from cron and manual triggers.
	cycleMu sync.Mutex
	bg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler. ctx bounds every cron-triggered cycle.
func NewScheduler(ctx context.Context, deps Deps, symbols []string, opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if deps.Advisor == nil {
		deps.Advisor = advisor.Noop{}
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Notifier == nil {
		deps.Notifier = notifier.NewNotifier(logger)
	}
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		deps:    deps,
		symbols: symbols,
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		now:     time.Now,
		latest:  make(map[string]model.Decision),
	}
}

// Register adds the poll cycle to the cron table.
func (s *Scheduler) Register() error {
	spec := fmt.Sprintf("@every %s", s.opts.Interval)
	if _, err := s.cron.AddFunc(spec, func() { s.RunCycle(s.ctx) }); err != nil {
		return fmt.Errorf("register poll cycle %q: %w", spec, err)
	}
	return nil
}

// Start sends the startup notice when enabled and starts the cron scheduler.
func (s *Scheduler) Start() {
	if s.opts.StartupNotice {
		body := notifier.StartupBody(s.symbols, s.opts.Interval)
		if err := s.deps.Notifier.Notify(s.ctx, notifier.StartupTitle, body); err != nil {
			s.logger.Error().Err(err).Msg("send startup notice")
		}
	}
	s.cron.Start()
	s.logger.Info().Strs("symbols", s.symbols).Dur("interval", s.opts.Interval).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running cycles to finish,
// including ones started by RunInBackground.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.bg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes one cycle immediately (for manual trigger / run-on-start).
func (s *Scheduler) RunNow() bool {
	return s.RunCycle(s.ctx)
}

// RunInBackground starts one cycle without blocking. Stop waits for it.
func (s *Scheduler) RunInBackground() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		s.RunCycle(s.ctx)
	}()
}

// RunCycle evaluates every ticker once. A failing symbol is logged and skipped.
// It returns false without doing anything when another cycle is still running.
func (s *Scheduler) RunCycle(ctx context.Context) bool {
	if !s.cycleMu.TryLock() {
		s.logger.Warn().Msg("previous cycle still running, skipping")
		return false
	}
	defer s.cycleMu.Unlock()

	start := s.now()
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for _, symbol := range s.symbols {
		symbol := symbol
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.processSymbol(ctx, symbol); err != nil {
				s.logger.Error().Err(err).Str("symbol", symbol).Msg("process symbol")
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)
	metrics.CycleDuration.Observe(elapsed.Seconds())
	s.logger.Debug().Dur("elapsed", elapsed).Int("symbols", len(s.symbols)).Msg("cycle done")
	return true
}

func (s *Scheduler) processSymbol(ctx context.Context, symbol string) error {
	set, err := s.deps.Source.Collect(ctx, symbol)
	if err != nil {
		metrics.FetchErrorsTotal.WithLabelValues(symbol).Inc()
		return fmt.Errorf("collect: %w", err)
	}
	if len(set.Daily) == 0 {
		s.logger.Warn().Str("symbol", symbol).Msg("no daily bars, skipping")
		return nil
	}

	d := s.deps.Evaluator.Evaluate(set)
	metrics.EvaluationsTotal.WithLabelValues(symbol, string(d.Signal)).Inc()
	s.mu.Lock()
	s.latest[symbol] = d
	s.mu.Unlock()

	if err := s.deps.Recorder.RecordEvaluation(ctx, &d, s.now()); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("record evaluation")
	}
	s.logger.Debug().Str("symbol", symbol).Str("signal", string(d.Signal)).Str("reason", d.Reason).Msg("evaluated")

	_, err = s.handleDecision(ctx, d)
	return err
}

// handleDecision applies de-duplication: HOLD clears the symbol's recorded
// alerts; BUY or SELL alerts only when the pair has no recorded price or the
// price changed. It returns the emitted alert, if any.
func (s *Scheduler) handleDecision(ctx context.Context, d model.Decision) (*model.Alert, error) {
	if !d.Signal.Actionable() {
		if err := s.deps.Store.Forget(ctx, d.Symbol); err != nil {
			return nil, fmt.Errorf("forget alerts: %w", err)
		}
		return nil, nil
	}

	fresh, err := dedup.ShouldAlert(ctx, s.deps.Store, d.Symbol, d.Signal, d.Price)
	if err != nil {
		return nil, fmt.Errorf("check last alert: %w", err)
	}
	if !fresh {
		return nil, nil
	}

	alert := &model.Alert{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Symbol:    d.Symbol,
		Signal:    d.Signal,
		Price:     d.Price,
		Reason:    d.Reason,
	}
	alert.Commentary = s.deps.Advisor.Commentary(ctx, &d)

	if err := s.deps.Recorder.RecordAlert(ctx, alert); err != nil {
		s.logger.Error().Err(err).Str("symbol", d.Symbol).Msg("record alert")
	}
	if err := s.deps.Notifier.Notify(ctx, notifier.AlertTitle(alert), notifier.AlertBody(alert)); err != nil {
		metrics.NotifyErrorsTotal.Inc()
		s.logger.Error().Err(err).Str("symbol", d.Symbol).Msg("deliver alert")
	}
	metrics.AlertsTotal.WithLabelValues(d.Symbol, string(d.Signal)).Inc()
	s.logger.Info().
		Str("symbol", d.Symbol).
		Str("signal", string(d.Signal)).
		Float64("price", d.Price).
		Str("reason", d.Reason).
		Msg("alert")

	if err := s.deps.Store.Remember(ctx, d.Symbol, d.Signal, d.Price); err != nil {
		return alert, fmt.Errorf("remember alert: %w", err)
	}
	return alert, nil
}

// Check evaluates symbol on demand without recording or alerting.
func (s *Scheduler) Check(ctx context.Context, symbol string) (model.Decision, error) {
	set, err := s.deps.Source.Collect(ctx, symbol)
	if err != nil {
		return model.Decision{}, err
	}
	return s.deps.Evaluator.Evaluate(set), nil
}

// Latest returns a copy of the most recent decision per symbol.
func (s *Scheduler) Latest() map[string]model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Decision, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}

const helpText = "Available commands:\n" +
	"/status - latest signal per ticker\n" +
	"/tickers - watched tickers\n" +
	"/check SYMBOL - evaluate one ticker now\n" +
	"/alerts - recent alerts"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats address commands as /status@BotName.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/status":
		return notifier.FormatStatus(s.Latest(), s.now())
	case "/tickers":
		return notifier.FormatTickers(s.symbols)
	case "/check":
		if len(fields) < 2 {
			return "Usage: /check SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		d, err := s.Check(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ check %s failed: %v", symbol, err)
		}
		return notifier.FormatDecision(d)
	case "/alerts":
		h, ok := s.deps.Recorder.(recorder.AlertHistory)
		if !ok {
			return "Alert history is not recorded."
		}
		alerts, err := h.RecentAlerts(ctx, 10)
		if err != nil {
			return fmt.Sprintf("❌ load alerts failed: %v", err)
		}
		return notifier.FormatRecentAlerts(alerts)
	default:
		return helpText
	}
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
