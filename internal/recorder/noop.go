package recorder

import (
	"context"
	"time"

	"SwingSentinel/internal/model"
)

// NoopRecorder is a no-op implementation used when no storage is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordEvaluation(_ context.Context, _ *model.Decision, _ time.Time) error {
	return nil
}
func (n *NoopRecorder) RecordAlert(_ context.Context, _ *model.Alert) error { return nil }
func (n *NoopRecorder) Close() error                                        { return nil }
