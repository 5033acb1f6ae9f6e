package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/tallyledger/internal/dependencies/clock"
	"github.com/mcoot/tallyledger/internal/dependencies/random"
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/auditlog"
	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/services/catalog"
	"github.com/mcoot/tallyledger/internal/services/credentials"
	"github.com/mcoot/tallyledger/internal/services/directory"
	"github.com/mcoot/tallyledger/internal/services/ledger"
	"github.com/mcoot/tallyledger/internal/services/permission"
	"github.com/mcoot/tallyledger/internal/storage"
	"github.com/mcoot/tallyledger/internal/storage/memory"
	redisstorage "github.com/mcoot/tallyledger/internal/storage/redis"
	"github.com/mcoot/tallyledger/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Directory   *directory.Directory
	Catalog     *catalog.Catalog
	Gate        *permission.Gate
	Credentials *credentials.Store
	Audit       *auditlog.Writer
	Ledger      *ledger.Service
	Exporter    *backup.Exporter
	Scheduler   *backup.Scheduler
	Hub         *sse.Hub

	// BackupPolicies are the policies used by the scheduler
	BackupPolicies backup.Policies

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Location is the zone for audit timestamps, backup names and the schedule
	// If nil, defaults to the audit log default zone
	Location *time.Location

	AuditDir  string
	BackupDir string

	Persons        []directory.Entry
	Drinks         []model.DrinkType
	Ledger         ledger.Config
	Credentials    credentials.Config
	BackupPolicies backup.Policies
	// BackupSchedule is a cron spec; empty selects backup.DefaultSchedule
	BackupSchedule string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	if cfg.Location == nil {
		cfg.Location = auditlog.DefaultConfig().Location
	}

	return newWithDependencies(store, clock.NewIn(cfg.Location), random.New(), cfg, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	auditCfg := auditlog.DefaultConfig()
	if cfg.AuditDir != "" {
		auditCfg.Dir = cfg.AuditDir
	}
	if cfg.Location != nil {
		auditCfg.Location = cfg.Location
	}
	backupCfg := backup.DefaultConfig()
	if cfg.BackupDir != "" {
		backupCfg.Dir = cfg.BackupDir
	}
	ledgerCfg := cfg.Ledger

	dir := directory.New(cfg.Persons, logger)
	cat := catalog.New(cfg.Drinks, logger)
	pins := credentials.New(store, rnd, cfg.Credentials, logger)
	gate := permission.New(pins, ledgerCfg.Settings.Admins, ledgerCfg.Settings.PublicDevices, logger)
	audit := auditlog.New(auditCfg, clk, logger)
	hub := sse.NewHub(logger)

	ledgerService := ledger.New(ledger.Deps{
		Catalog:  cat,
		Gate:     gate,
		Pins:     pins,
		Audit:    audit,
		Notifier: hub,
		Storage:  store,
		Clock:    clk,
		Logger:   logger,
	}, ledgerCfg)

	exporter := backup.New(backupCfg, ledgerService, gate, clk, logger)
	scheduler, err := backup.NewScheduler(exporter, cfg.BackupPolicies, cfg.BackupSchedule, auditCfg.Location, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Directory:      dir,
		Catalog:        cat,
		Gate:           gate,
		Credentials:    pins,
		Audit:          audit,
		Ledger:         ledgerService,
		Exporter:       exporter,
		Scheduler:      scheduler,
		Hub:            hub,
		BackupPolicies: cfg.BackupPolicies,
		logger:         logger,
	}, nil
}

// Restore loads persisted PINs and the ledger snapshot
func (a *App) Restore(ctx context.Context) error {
	if err := a.Credentials.Load(ctx); err != nil {
		return fmt.Errorf("load pins: %w", err)
	}
	if err := a.Ledger.Restore(ctx); err != nil {
		return err
	}
	return nil
}

// Start runs the event hub and the backup scheduler
func (a *App) Start() {
	go a.Hub.Run()
	a.Scheduler.Start()
	a.logger.Info("application started", slog.Time("next_backup", a.Scheduler.Next()))
}

// Stop stops the scheduler, disconnects event clients and closes storage
func (a *App) Stop(ctx context.Context) error {
	a.Scheduler.Stop(ctx)
	a.Hub.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
