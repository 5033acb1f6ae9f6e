package memory

import (
	"context"
	"encoding/json"
	"maps"
	"sync"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	pins     map[string]string
	snapshot []byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		pins: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// PIN credential operations

func (s *Storage) GetPins(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.pins), nil
}

func (s *Storage) SavePins(ctx context.Context, pins map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = maps.Clone(pins)
	if s.pins == nil {
		s.pins = make(map[string]string)
	}
	return nil
}

// Ledger snapshot operations

// The snapshot is held encoded so callers never share maps with the store.

func (s *Storage) GetLedgerSnapshot(ctx context.Context) (*model.LedgerSnapshot, error) {
	s.mu.RLock()
	data := s.snapshot
	s.mu.RUnlock()

	if data == nil {
		return nil, model.ErrSnapshotNotFound
	}
	var snapshot model.LedgerSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Storage) SaveLedgerSnapshot(ctx context.Context, snapshot *model.LedgerSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = data
	return nil
}
