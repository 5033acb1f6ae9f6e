package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/tallyledger/internal/dependencies/clock"
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/auditlog"
	"github.com/mcoot/tallyledger/internal/services/catalog"
	"github.com/mcoot/tallyledger/internal/services/permission"
	"github.com/mcoot/tallyledger/internal/storage"
)

// Auditor receives one audit record per successful mutation
type Auditor interface {
	LogBooking(b auditlog.Booking) error
	LogChange(c auditlog.Change) error
	ClearBookings() error
}

// Credentials manages PINs for ledger users
type Credentials interface {
	SetPin(ctx context.Context, user, pin string) error
	Remove(ctx context.Context, user string) error
}

// Notifier is told to refresh displays after a mutation
type Notifier interface {
	Notify(event model.Event)
}

// Config holds the initial ledger configuration
type Config struct {
	Settings model.Settings
	Users    []string

	CommentMinLength int
	CommentMaxLength int
}

// DefaultConfig returns default ledger configuration
func DefaultConfig() Config {
	return Config{
		Settings:         model.DefaultSettings(),
		CommentMinLength: 3,
		CommentMaxLength: 200,
	}
}

// Service owns all tally state: per-user counts and credit, the free-drink
// lot queues and runtime settings. Every mutation holds mu for its whole
// in-memory part; audit, persistence and notification run after unlock.
type Service struct {
	catalog  *catalog.Catalog
	gate     *permission.Gate
	pins     Credentials
	audit    Auditor
	notifier Notifier
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config

	mu       sync.Mutex
	settings model.Settings
	accounts map[string]*model.Account
	freeLots map[string][]model.FreeDrinkLot
	// seq numbers snapshots in mutation order
	seq uint64

	persistMu sync.Mutex
	persisted uint64
}

// Deps bundles the collaborators of the ledger service
type Deps struct {
	Catalog  *catalog.Catalog
	Gate     *permission.Gate
	Pins     Credentials
	Audit    Auditor
	Notifier Notifier
	Storage  storage.Storage
	Clock    clock.Clock
	Logger   *slog.Logger
}

// New creates a ledger service seeded from cfg
func New(deps Deps, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.CommentMinLength <= 0 {
		cfg.CommentMinLength = defaults.CommentMinLength
	}
	if cfg.CommentMaxLength <= 0 {
		cfg.CommentMaxLength = defaults.CommentMaxLength
	}
	if cfg.Settings.Currency == "" {
		cfg.Settings.Currency = defaults.Settings.Currency
	}
	if cfg.Settings.CashUserName == "" {
		cfg.Settings.CashUserName = defaults.Settings.CashUserName
	}
	if cfg.Settings.PriceListUserName == "" {
		cfg.Settings.PriceListUserName = defaults.Settings.PriceListUserName
	}

	s := &Service{
		catalog:  deps.Catalog,
		gate:     deps.Gate,
		pins:     deps.Pins,
		audit:    deps.Audit,
		notifier: deps.Notifier,
		storage:  deps.Storage,
		clock:    deps.Clock,
		logger:   deps.Logger.With(slog.String("component", "ledger")),
		cfg:      cfg,
		settings: cfg.Settings,
		accounts: make(map[string]*model.Account),
		freeLots: make(map[string][]model.FreeDrinkLot),
	}
	for _, name := range cfg.Users {
		name = strings.TrimSpace(name)
		if name == "" || name == cfg.Settings.PriceListUserName {
			continue
		}
		s.accounts[name] = model.NewAccount(name)
	}
	if cfg.Settings.FreeDrinksEnabled {
		s.ensureCashAccountLocked()
	}
	return s
}

// Restore loads the persisted ledger snapshot, if any, replacing the seed state
func (s *Service) Restore(ctx context.Context) error {
	snap, err := s.storage.GetLedgerSnapshot(ctx)
	if errors.Is(err, model.ErrSnapshotNotFound) {
		s.logger.Info("no ledger snapshot, starting from configuration")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*model.Account, len(snap.Accounts))
	for _, a := range snap.Accounts {
		if a.Counts == nil {
			a.Counts = make(map[string]int)
		}
		s.accounts[a.Name] = a
	}
	s.freeLots = model.CloneLots(snap.FreeLots)
	s.settings = snap.Settings
	s.catalog.Replace(snap.Drinks)
	s.gate.Replace(snap.Settings.Admins, snap.Settings.PublicDevices)

	s.logger.Info("ledger restored",
		slog.Int("users", len(s.accounts)),
		slog.Int("drinks", len(snap.Drinks)))
	return nil
}

// record is the single audit entry produced by a mutation
type record struct {
	booking       *auditlog.Booking
	change        *auditlog.Change
	clearBookings bool
}

// snapshot is a state copy tagged with its position in mutation order
type snapshot struct {
	*model.LedgerSnapshot
	seq uint64
}

// commit runs the post-mutation steps. Failures are logged and never undo
// the mutation.
func (s *Service) commit(ctx context.Context, rec record, snap snapshot, event model.Event) {
	if rec.clearBookings {
		_ = s.audit.ClearBookings()
	}
	switch {
	case rec.booking != nil:
		_ = s.audit.LogBooking(*rec.booking)
	case rec.change != nil:
		_ = s.audit.LogChange(*rec.change)
	}

	s.persist(ctx, snap)

	if s.notifier != nil {
		event.Timestamp = s.clock.Now()
		s.notifier.Notify(event)
	}
}

// persist saves snap unless a later snapshot was already saved. Commits
// run after mu is released, so they may reach this point out of order.
func (s *Service) persist(ctx context.Context, snap snapshot) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if snap.seq <= s.persisted {
		s.logger.Debug("skipping stale ledger snapshot", slog.Uint64("seq", snap.seq))
		return
	}
	s.persisted = snap.seq
	if err := s.storage.SaveLedgerSnapshot(ctx, snap.LedgerSnapshot); err != nil {
		s.logger.Error("failed to persist ledger snapshot", slog.String("error", err.Error()))
	}
}

// snapshotLocked copies the current state. Caller must hold mu.
func (s *Service) snapshotLocked() snapshot {
	s.seq++
	snap := &model.LedgerSnapshot{
		Accounts: make([]*model.Account, 0, len(s.accounts)),
		FreeLots: model.CloneLots(s.freeLots),
		Drinks:   s.catalog.Drinks(),
		Settings: s.settings,
	}
	for _, name := range s.sortedUsersLocked() {
		snap.Accounts = append(snap.Accounts, s.accounts[name].Clone())
	}
	snap.Settings.Admins = s.gate.Admins()
	snap.Settings.PublicDevices = s.gate.PublicDevices()
	return snapshot{LedgerSnapshot: snap, seq: s.seq}
}

func (s *Service) sortedUsersLocked() []string {
	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a == b {
			return names[i] < names[j]
		}
		return a < b
	})
	return names
}

func (s *Service) accountLocked(name string) (*model.Account, error) {
	a, ok := s.accounts[name]
	if !ok {
		return nil, model.ErrUserUnknown
	}
	return a, nil
}

func (s *Service) ensureCashAccountLocked() {
	name := s.settings.CashUserName
	if _, ok := s.accounts[name]; !ok {
		s.accounts[name] = model.NewAccount(name)
	}
}

func ledgerEvent(users ...string) model.Event {
	return model.Event{Type: model.EventLedgerUpdated, Users: users}
}
