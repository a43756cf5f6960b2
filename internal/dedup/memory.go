package dedup

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

// fileState is the on-disk form of a MemoryStore.
type fileState struct {
	Alerts    map[string]map[model.Signal]float64 `json:"alerts"`
	UpdatedAt time.Time                           `json:"updated_at"`
}

// MemoryStore is a mutex-guarded map. With a file path every change is written
// through to a JSON file so a restart does not re-send alerts.
type MemoryStore struct {
	mu       sync.Mutex
	alerts   map[string]map[model.Signal]float64
	filePath string
}

// NewMemoryStore returns an in-process store without persistence.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]map[model.Signal]float64)}
}

// NewFileStore loads state from filePath, starting empty if the file doesn't exist.
func NewFileStore(filePath string) (*MemoryStore, error) {
	state, err := loadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load dedup state: %w", err)
	}
	return &MemoryStore{alerts: state.Alerts, filePath: filePath}, nil
}

func (s *MemoryStore) Last(_ context.Context, symbol string, signal model.Signal) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	price, ok := s.alerts[symbol][signal]
	return price, ok, nil
}

func (s *MemoryStore) Remember(_ context.Context, symbol string, signal model.Signal, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alerts[symbol] == nil {
		s.alerts[symbol] = make(map[model.Signal]float64)
	}
	s.alerts[symbol][signal] = price
	return s.save()
}

func (s *MemoryStore) Forget(_ context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[symbol]; !ok {
		return nil
	}
	delete(s.alerts, symbol)
	return s.save()
}

// Len returns the number of (symbol, signal) pairs recorded.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, bySignal := range s.alerts {
		n += len(bySignal)
	}
	return n
}

// save must be called with mu held.
func (s *MemoryStore) save() error {
	if s.filePath == "" {
		return nil
	}
	return saveState(s.filePath, &fileState{Alerts: s.alerts})
}

func loadState(filePath string) (*fileState, error) {
	state := &fileState{}
	data, err := os.ReadFile(filePath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, state); err != nil {
			return nil, err
		}
	}
	if state.Alerts == nil {
		state.Alerts = make(map[string]map[model.Signal]float64)
	}
	return state, nil
}

func saveState(filePath string, state *fileState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("save dedup state: %w", err)
	}
	return nil
}
