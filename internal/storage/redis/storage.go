package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// pinsKey returns the Redis key for the PIN credential hash
func (s *Storage) pinsKey() string {
	return fmt.Sprintf("%s:pins", s.cfg.KeyPrefix)
}

// ledgerKey returns the Redis key for the ledger snapshot
func (s *Storage) ledgerKey() string {
	return fmt.Sprintf("%s:ledger", s.cfg.KeyPrefix)
}

// PIN credential operations

func (s *Storage) GetPins(ctx context.Context) (map[string]string, error) {
	pins, err := s.client.HGetAll(ctx, s.pinsKey()).Result()
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// SavePins replaces the whole credential hash so removed PINs disappear too
func (s *Storage) SavePins(ctx context.Context, pins map[string]string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.pinsKey())
	if len(pins) > 0 {
		values := make([]any, 0, len(pins)*2)
		for user, credential := range pins {
			values = append(values, user, credential)
		}
		pipe.HSet(ctx, s.pinsKey(), values...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Ledger snapshot operations

func (s *Storage) GetLedgerSnapshot(ctx context.Context) (*model.LedgerSnapshot, error) {
	data, err := s.client.Get(ctx, s.ledgerKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSnapshotNotFound
		}
		return nil, err
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
	return s.client.Set(ctx, s.ledgerKey(), data, 0).Err()
}
