package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tallyledger/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// PIN tests

func (s *StorageSuite) TestGetPinsEmpty() {
	pins, err := s.storage.GetPins(s.ctx)
	s.Require().NoError(err)
	s.Empty(pins)
}

func (s *StorageSuite) TestSaveAndGetPins() {
	err := s.storage.SavePins(s.ctx, map[string]string{"Alice": "hash-a", "Bob": "hash-b"})
	s.Require().NoError(err)

	pins, err := s.storage.GetPins(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"Alice": "hash-a", "Bob": "hash-b"}, pins)

	// Stored as a hash under the prefixed key
	s.Equal("hash-a", s.mini.HGet("tally:pins", "Alice"))
}

func (s *StorageSuite) TestSavePinsRemovesClearedEntries() {
	_ = s.storage.SavePins(s.ctx, map[string]string{"Alice": "hash-a", "Bob": "hash-b"})
	s.Require().NoError(s.storage.SavePins(s.ctx, map[string]string{"Bob": "hash-b"}))

	pins, err := s.storage.GetPins(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"Bob": "hash-b"}, pins)
}

func (s *StorageSuite) TestSavePinsEmptyClearsAll() {
	_ = s.storage.SavePins(s.ctx, map[string]string{"Alice": "hash-a"})
	s.Require().NoError(s.storage.SavePins(s.ctx, map[string]string{}))

	s.False(s.mini.Exists("tally:pins"))
}

func (s *StorageSuite) TestSavePinsFailsWhenServerDown() {
	s.mini.Close()

	err := s.storage.SavePins(s.ctx, map[string]string{"Alice": "hash-a"})
	s.Error(err)
}

// Ledger snapshot tests

func (s *StorageSuite) TestGetLedgerSnapshotNotFound() {
	_, err := s.storage.GetLedgerSnapshot(s.ctx)
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}

func (s *StorageSuite) TestSaveAndGetLedgerSnapshot() {
	account := model.NewAccount("Alice")
	account.Counts["Bier"] = 2
	account.Credit = decimal.RequireFromString("-1.25")
	snapshot := &model.LedgerSnapshot{
		Accounts: []*model.Account{account},
		Drinks:   []model.DrinkType{{Name: "Bier", Price: decimal.RequireFromString("1.6")}},
		FreeLots: map[string][]model.FreeDrinkLot{},
		Settings: model.DefaultSettings(),
	}

	s.Require().NoError(s.storage.SaveLedgerSnapshot(s.ctx, snapshot))
	s.True(s.mini.Exists("tally:ledger"))

	retrieved, err := s.storage.GetLedgerSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(retrieved.Accounts, 1)
	s.Equal("Alice", retrieved.Accounts[0].Name)
	s.Equal(2, retrieved.Accounts[0].Counts["Bier"])
	s.True(retrieved.Accounts[0].Credit.Equal(decimal.RequireFromString("-1.25")))
	s.Require().Len(retrieved.Drinks, 1)
	s.True(retrieved.Drinks[0].Price.Equal(decimal.RequireFromString("1.6")))
}

func (s *StorageSuite) TestCustomKeyPrefix() {
	cfg := DefaultConfig()
	cfg.KeyPrefix = "bar"
	store := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), cfg)
	defer func() { _ = store.Close() }()

	s.Require().NoError(store.SavePins(s.ctx, map[string]string{"Alice": "x"}))
	s.True(s.mini.Exists("bar:pins"))
	s.False(s.mini.Exists("tally:pins"))
}
