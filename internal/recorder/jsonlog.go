package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"SwingSentinel/internal/model"
)

const (
	// MaxLoggedAlerts is how many alerts the JSON log keeps.
	MaxLoggedAlerts = 100
	alertTimeLayout = "2006-01-02 15:04:05"
)

// alertEntry is one element of the JSON alert log.
type alertEntry struct {
	ID         string       `json:"id,omitempty"`
	Timestamp  string       `json:"timestamp"`
	Symbol     string       `json:"symbol"`
	Signal     model.Signal `json:"signal"`
	Price      float64      `json:"price"`
	Reason     string       `json:"reason"`
	Commentary string       `json:"commentary,omitempty"`
}

// JSONAlertLog appends alerts to a JSON array file, keeping only the most
// recent MaxLoggedAlerts. Evaluations are not logged.
type JSONAlertLog struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONAlertLog returns a log writing to filePath.
func NewJSONAlertLog(filePath string) *JSONAlertLog {
	return &JSONAlertLog{filePath: filePath}
}

func (l *JSONAlertLog) RecordEvaluation(_ context.Context, _ *model.Decision, _ time.Time) error {
	return nil
}

func (l *JSONAlertLog) RecordAlert(_ context.Context, a *model.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}
	entries = append(entries, alertEntry{
		ID:         a.ID,
		Timestamp:  a.Timestamp.Format(alertTimeLayout),
		Symbol:     a.Symbol,
		Signal:     a.Signal,
		Price:      a.Price,
		Reason:     a.Reason,
		Commentary: a.Commentary,
	})
	if len(entries) > MaxLoggedAlerts {
		entries = entries[len(entries)-MaxLoggedAlerts:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(l.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create alert log dir: %w", err)
		}
	}
	if err := os.WriteFile(l.filePath, data, 0644); err != nil {
		return fmt.Errorf("write alert log: %w", err)
	}
	return nil
}

// RecentAlerts returns up to limit logged alerts, newest first.
func (l *JSONAlertLog) RecentAlerts(_ context.Context, limit int) ([]model.Alert, error) {
	l.mu.Lock()
	entries, err := l.load()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []model.Alert
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := entries[i]
		ts, _ := time.ParseInLocation(alertTimeLayout, e.Timestamp, time.Local)
		out = append(out, model.Alert{
			ID:         e.ID,
			Timestamp:  ts,
			Symbol:     e.Symbol,
			Signal:     e.Signal,
			Price:      e.Price,
			Reason:     e.Reason,
			Commentary: e.Commentary,
		})
	}
	return out, nil
}

func (l *JSONAlertLog) Close() error { return nil }

// load must be called with mu held.
func (l *JSONAlertLog) load() ([]alertEntry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read alert log: %w", err)
	}
	var entries []alertEntry
	if len(data) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode alert log: %w", err)
	}
	return entries, nil
}
