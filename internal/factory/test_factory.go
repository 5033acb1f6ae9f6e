package factory

import (
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcoot/tallyledger/internal/dependencies/mocks"
	"github.com/mcoot/tallyledger/internal/model"
	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/services/credentials"
	"github.com/mcoot/tallyledger/internal/services/directory"
	"github.com/mcoot/tallyledger/internal/services/ledger"
	"github.com/mcoot/tallyledger/internal/storage/memory"
	"github.com/mcoot/tallyledger/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestConfig returns a small engine: Alice, Bob and the admin Admin as
// users, Kiosk as a public device, Bier and Limo in the catalog, free
// drinks enabled. Files go below dir.
func TestConfig(dir string) Config {
	ledgerCfg := ledger.DefaultConfig()
	ledgerCfg.Users = []string{"Alice", "Bob", "Admin"}
	ledgerCfg.Settings.Admins = []string{"Admin"}
	ledgerCfg.Settings.PublicDevices = []string{"Kiosk"}
	ledgerCfg.Settings.FreeDrinksEnabled = true
	ledgerCfg.Settings.FreeAmount = decimal.RequireFromString("1.5")

	return Config{
		AuditDir:  filepath.Join(dir, "tally_list"),
		BackupDir: filepath.Join(dir, "backup", "tally_list"),
		Persons: []directory.Entry{
			{ID: "u-alice", Name: "Alice"},
			{ID: "u-bob", Name: "Bob"},
			{ID: "u-admin", Name: "Admin"},
			{ID: "u-kiosk", Name: "Kiosk"},
		},
		Drinks: []model.DrinkType{
			{Name: "Bier", Price: decimal.RequireFromString("1.6")},
			{Name: "Limo", Price: decimal.RequireFromString("1.2")},
		},
		Ledger:         ledgerCfg,
		Credentials:    credentials.Config{Iterations: 1000},
		BackupPolicies: backup.DefaultPolicies(),
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and in-memory storage. The clock starts at 2025-09-14 01:09:30 in cfg's zone.
func NewTestApp(cfg Config) (*TestApp, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 9, 14, 1, 9, 30, 0, cfg.Location))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}, nil
}
