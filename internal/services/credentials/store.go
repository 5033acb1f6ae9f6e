package credentials

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"sync"

	"github.com/mcoot/tallyledger/internal/dependencies/random"
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/storage"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// Config holds configuration for the credential store
type Config struct {
	Iterations int
}

// DefaultConfig returns default credential store configuration
func DefaultConfig() Config {
	return Config{
		Iterations: DefaultIterations,
	}
}

// Store keeps hashed PINs per user name and persists them on every change
type Store struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
	cfg     Config

	mu   sync.RWMutex
	pins map[string]string
}

// New creates a credential store. Call Load to read persisted credentials.
func New(store storage.Storage, rnd random.Random, cfg Config, logger *slog.Logger) *Store {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultConfig().Iterations
	}
	return &Store{
		storage: store,
		random:  rnd,
		logger:  logger,
		cfg:     cfg,
		pins:    make(map[string]string),
	}
}

// Load replaces the in-memory credentials with the persisted ones
func (s *Store) Load(ctx context.Context) error {
	pins, err := s.storage.GetPins(ctx)
	if err != nil {
		return fmt.Errorf("load pins: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = make(map[string]string, len(pins))
	maps.Copy(s.pins, pins)
	s.logger.Info("pins loaded", slog.Int("count", len(pins)))
	return nil
}

// SetPin sets or, when pin is empty, clears the PIN of user.
// If persisting fails the previous credential is restored.
func (s *Store) SetPin(ctx context.Context, user, pin string) error {
	if pin != "" && !pinPattern.MatchString(pin) {
		return model.ErrInvalidPin
	}

	var credential string
	if pin != "" {
		var err error
		credential, err = HashPin(s.random, pin, s.cfg.Iterations)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.pins[user]
	if pin == "" {
		delete(s.pins, user)
	} else {
		s.pins[user] = credential
	}

	if err := s.storage.SavePins(ctx, maps.Clone(s.pins)); err != nil {
		if existed {
			s.pins[user] = previous
		} else {
			delete(s.pins, user)
		}
		s.logger.Error("failed to save pin", slog.String("user", user), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", model.ErrPinSaveFailed, err)
	}

	if pin == "" {
		s.logger.Info("pin cleared", slog.String("user", user))
	} else {
		s.logger.Info("pin set", slog.String("user", user))
	}
	return nil
}

// Remove drops any credential held for user
func (s *Store) Remove(ctx context.Context, user string) error {
	s.mu.RLock()
	_, ok := s.pins[user]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return s.SetPin(ctx, user, "")
}

// Verify reports whether pin is the PIN of user. Users without a PIN never verify.
func (s *Store) Verify(user, pin string) bool {
	s.mu.RLock()
	stored, ok := s.pins[user]
	s.mu.RUnlock()
	if !ok || pin == "" {
		return false
	}
	return VerifyPin(pin, stored)
}

// HasPin reports whether user has a PIN set
func (s *Store) HasPin(user string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pins[user]
	return ok
}
