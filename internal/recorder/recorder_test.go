package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

func sampleDecision(symbol string, signal model.Signal) *model.Decision {
	return &model.Decision{
		Symbol:  symbol,
		Signal:  signal,
		Reason:  "All BUY conditions met: RSI_4H=60.0",
		Price:   132,
		Trigger: model.TriggerRules,
		Snapshot: model.IndicatorSnapshot{
			Price:     132,
			RSICoarse: 60,
			RSIDaily:  math.NaN(),
			SMA:       125.8,
			MACD:      model.MACD{Line: 3.2, Signal: 3.1, Histogram: 0.1},
			Squeeze:   model.SqueezeCompressed,
		},
	}
}

func sampleAlert(i int) *model.Alert {
	return &model.Alert{
		ID:        fmt.Sprintf("alert-%d", i),
		Timestamp: time.Date(2025, 7, 1, 10, 0, i, 0, time.Local),
		Symbol:    "AAPL",
		Signal:    model.SignalBuy,
		Price:     100 + float64(i),
		Reason:    "reason",
	}
}

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "sentinel.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordEvaluation(ctx, sampleDecision("AAPL", model.SignalBuy), time.Now()))
	require.NoError(t, r.RecordEvaluation(ctx, sampleDecision("AAPL", model.SignalHold), time.Now()))
	require.NoError(t, r.RecordEvaluation(ctx, sampleDecision("MSFT", model.SignalHold), time.Now()))

	n, err := r.CountEvaluations(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rsi *float64
	require.NoError(t, r.db.QueryRow(`SELECT rsi_daily FROM evaluations LIMIT 1`).Scan(&rsi))
	assert.Nil(t, rsi, "NaN is stored as NULL")

	first := sampleAlert(1)
	first.Commentary = "Momentum is building."
	require.NoError(t, r.RecordAlert(ctx, first))
	require.NoError(t, r.RecordAlert(ctx, sampleAlert(2)))
	assert.Error(t, r.RecordAlert(ctx, sampleAlert(2)), "duplicate id")

	alerts, err := r.RecentAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "alert-2", alerts[0].ID)
	assert.Equal(t, "alert-1", alerts[1].ID)
	assert.Equal(t, "Momentum is building.", alerts[1].Commentary)
	assert.Equal(t, model.SignalBuy, alerts[1].Signal)
	assert.Equal(t, first.Timestamp.Unix(), alerts[1].Timestamp.Unix())
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sentinel.db")

	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.RecordAlert(ctx, sampleAlert(1)))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()
	alerts, err := r.RecentAlerts(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestJSONAlertLog_KeepsLastHundred(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "trading_alerts.json")
	l := NewJSONAlertLog(path)

	for i := 0; i < MaxLoggedAlerts+5; i++ {
		require.NoError(t, l.RecordAlert(ctx, sampleAlert(i)))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, MaxLoggedAlerts)
	assert.Equal(t, "alert-5", entries[0]["id"])
	assert.Equal(t, "2025-07-01 10:00:05", entries[0]["timestamp"])
	assert.Equal(t, "BUY", entries[0]["signal"])
	assert.Equal(t, 105.0, entries[0]["price"])
	assert.NotContains(t, entries[0], "commentary")

	recent, err := l.RecentAlerts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "alert-104", recent[0].ID)
	assert.True(t, sampleAlert(104).Timestamp.Equal(recent[0].Timestamp))
}

func TestJSONAlertLog_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trading_alerts.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))
	l := NewJSONAlertLog(path)
	assert.ErrorContains(t, l.RecordAlert(context.Background(), sampleAlert(1)), "decode alert log")
}

type failingRecorder struct {
	NoopRecorder
	alerts int
}

func (f *failingRecorder) RecordAlert(_ context.Context, _ *model.Alert) error {
	f.alerts++
	return errors.New("disk full")
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ctx := context.Background()
	failing := &failingRecorder{}
	log := NewJSONAlertLog(filepath.Join(t.TempDir(), "alerts.json"))
	m := Multi{failing, log, NewNoopRecorder()}

	err := m.RecordAlert(ctx, sampleAlert(1))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, failing.alerts)

	recent, err := m.RecentAlerts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1, "later recorders still ran")

	assert.NoError(t, m.RecordEvaluation(ctx, sampleDecision("AAPL", model.SignalHold), time.Now()))
	assert.NoError(t, m.Close())

	none, err := Multi{NewNoopRecorder()}.RecentAlerts(ctx, 10)
	assert.NoError(t, err)
	assert.Nil(t, none)
}
