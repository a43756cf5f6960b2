package recorder

import (
	"context"
	"errors"
	"time"

	"SwingSentinel/internal/model"
)

// Recorder persists evaluation history and sent alerts for later analysis.
type Recorder interface {
	RecordEvaluation(ctx context.Context, d *model.Decision, at time.Time) error
	RecordAlert(ctx context.Context, a *model.Alert) error
	Close() error
}

// AlertHistory is implemented by recorders that can list past alerts, newest first.
type AlertHistory interface {
	RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error)
}

// Multi fans every call out to all recorders. Errors are joined; one failing
// recorder does not stop the others.
type Multi []Recorder

func (m Multi) RecordEvaluation(ctx context.Context, d *model.Decision, at time.Time) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordEvaluation(ctx, d, at); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordAlert(ctx context.Context, a *model.Alert) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordAlert(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecentAlerts delegates to the first recorder that keeps alert history.
func (m Multi) RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	for _, r := range m {
		if h, ok := r.(AlertHistory); ok {
			return h.RecentAlerts(ctx, limit)
		}
	}
	return nil, nil
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
