package storage

import (
	"context"

	"github.com/mcoot/tallyledger/internal/model"
)

// Storage defines the interface for durable key-value persistence
type Storage interface {
	// PIN credential operations. The map is keyed by user name and holds
	// serialised credentials.
	GetPins(ctx context.Context) (map[string]string, error)
	SavePins(ctx context.Context, pins map[string]string) error

	// Ledger snapshot operations
	GetLedgerSnapshot(ctx context.Context) (*model.LedgerSnapshot, error)
	SaveLedgerSnapshot(ctx context.Context, snapshot *model.LedgerSnapshot) error
}
