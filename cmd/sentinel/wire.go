package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"SwingSentinel/internal/advisor"
	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/config"
	"SwingSentinel/internal/dedup"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/recorder"
	"SwingSentinel/internal/scheduler"
	"SwingSentinel/internal/strategy"
)

func newFetcher(cfg *config.Config) collector.Fetcher {
	ds := cfg.DataSource
	switch ds.Provider {
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		opts := []collector.YahooOption{collector.WithRateLimit(ds.RequestsPerSecond), collector.WithProxy(cfg.Proxy)}
		if ds.BaseURL != "" {
			opts = append(opts, collector.WithBaseURL(ds.BaseURL))
		}
		return collector.NewYahooFetcher(opts...)
	}
}

func newStore(ctx context.Context, cfg *config.Config) (dedup.Store, func(), error) {
	d := cfg.Dedup
	if d.Backend == "redis" {
		rs, err := dedup.NewRedisStore(ctx, d.RedisAddr, "", d.RedisDB, d.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	if d.StateFile == "" {
		return dedup.NewMemoryStore(), func() {}, nil
	}
	fs, err := dedup.NewFileStore(d.StateFile)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

// newRecorder stacks the SQLite journal (when it opens) and the JSON alert log.
func newRecorder(cfg *config.Config, logger zerolog.Logger) recorder.Recorder {
	var rec recorder.Multi
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, continuing without it")
		} else {
			rec = append(rec, sr)
		}
	}
	if cfg.Files.AlertLog != "" {
		rec = append(rec, recorder.NewJSONAlertLog(cfg.Files.AlertLog))
	}
	if len(rec) == 0 {
		return recorder.NewNoopRecorder()
	}
	return rec
}

func newNotifier(cfg *config.Config, logger zerolog.Logger) (*notifier.Notifier, *notifier.TelegramSender) {
	var senders []notifier.Sender
	if cfg.EmailReady() {
		recipientsFile, fallback := cfg.Files.Recipients, cfg.Email.AlertEmail
		senders = append(senders, notifier.NewEmailSender(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.User, cfg.Email.Pass,
			func() []string { return config.LoadRecipients(recipientsFile, fallback) }))
	} else if cfg.Email.Enabled {
		logger.Warn().Msg("email enabled but SMTP credentials missing, email alerts disabled")
	}
	var tg *notifier.TelegramSender
	if cfg.TelegramReady() {
		tg = notifier.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		senders = append(senders, tg)
	}
	return notifier.NewNotifier(logger, senders...), tg
}

func newEvaluator(cfg *config.Config) (*strategy.Evaluator, error) {
	ev, err := strategy.NewEvaluator(cfg.Strategy.Params)
	if err != nil {
		return nil, fmt.Errorf("init evaluator: %w", err)
	}
	return ev, nil
}

// app bundles the wired components of one process.
type app struct {
	sched    *scheduler.Scheduler
	telegram *notifier.TelegramSender
	notifier *notifier.Notifier
	symbols  []string
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{symbols: config.LoadTickers(cfg.Files.Tickers)}

	ev, err := newEvaluator(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := newFetcher(cfg)
	logger.Info().Str("source", fetcher.Name()).Str("variant", cfg.Strategy.Variant).Msg("data source ready")
	col := collector.NewCollector(fetcher, cfg.DataSource.Timeframes, logger)

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init dedup store: %w", err)
	}
	a.closers = append(a.closers, closeStore)

	rec := newRecorder(cfg, logger)
	a.closers = append(a.closers, func() { _ = rec.Close() })

	a.notifier, a.telegram = newNotifier(cfg, logger)
	if len(a.notifier.Senders()) == 0 {
		logger.Warn().Msg("no delivery channel configured, alerts are logged only")
	}

	a.sched = scheduler.NewScheduler(ctx, scheduler.Deps{
		Source:    col,
		Evaluator: ev,
		Store:     store,
		Advisor:   advisor.New(cfg.Advisor.APIKey, cfg.Advisor.Model, cfg.Advisor.MaxTokens, logger),
		Recorder:  rec,
		Notifier:  a.notifier,
	}, a.symbols, scheduler.Options{
		Interval:      cfg.Schedule.RefreshInterval,
		Concurrency:   cfg.Schedule.Concurrency,
		StartupNotice: *cfg.Schedule.StartupNotice,
	}, logger)
	return a, nil
}
