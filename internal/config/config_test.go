package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tallyledger/internal/services/backup"
	"github.com/mcoot/tallyledger/internal/testutil"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"TALLY_ADDR_PORT", "TALLY_DATA_DIR", "TALLY_STORAGE", "TALLY_REDIS_URL",
		"TALLY_CONFIG", "TALLY_TIMEZONE", "TALLY_BACKUP_SCHEDULE", "TALLY_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, filepath.Join("data", "tally_list"), cfg.AuditDir())
	assert.Equal(t, filepath.Join("data", "backup", "tally_list"), cfg.BackupDir())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TALLY_ADDR_PORT", "127.0.0.1:9090")
	t.Setenv("TALLY_DATA_DIR", "/var/lib/tally")
	t.Setenv("TALLY_STORAGE", "Redis")
	t.Setenv("TALLY_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TALLY_TIMEZONE", "UTC")
	t.Setenv("TALLY_BACKUP_SCHEDULE", "@daily")
	t.Setenv("TALLY_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/tally", cfg.DataDir)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "@daily", cfg.BackupSchedule)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "TALLY_ADDR_PORT", "localhost:http"},
		{"missing port", "TALLY_ADDR_PORT", "localhost"},
		{"unknown storage", "TALLY_STORAGE", "sqlite"},
		{"redis without url", "TALLY_STORAGE", "redis"},
		{"unknown zone", "TALLY_TIMEZONE", "Mars/Olympus"},
		{"bad log level", "TALLY_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("TALLY_DATA_DIR")
	path := filepath.Join(t.TempDir(), "tally.env")
	require.NoError(t, os.WriteFile(path, []byte("TALLY_DATA_DIR=/srv/tally\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TALLY_DATA_DIR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tally", cfg.DataDir)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestLoadEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"persons": [{"id": "u-alice", "name": "Alice"}],
		"users": ["Alice", "Bob"],
		"drinks": [{"name": "Bier", "price": "1.6"}, {"name": "Limo", "price": 1.2, "icon": "mdi:bottle-soda"}],
		"admins": ["Alice"],
		"public_devices": ["Kiosk"],
		"currency": "EUR",
		"free_amount": "2.5",
		"free_drinks_enabled": true,
		"backups": {"daily": {"enabled": true, "interval": 2, "keep": 10}}
	}`), 0o644))

	engine, err := LoadEngine(path)
	require.NoError(t, err)
	require.Len(t, engine.Drinks, 2)
	assert.True(t, testutil.Dec("1.2").Equal(engine.Drinks[1].Price))
	assert.Equal(t, "mdi:bottle-soda", engine.Drinks[1].Icon)

	ledgerCfg := engine.Ledger()
	assert.Equal(t, []string{"Alice", "Bob"}, ledgerCfg.Users)
	assert.Equal(t, "EUR", ledgerCfg.Settings.Currency)
	assert.Equal(t, "Kasse", ledgerCfg.Settings.CashUserName)
	assert.True(t, testutil.Dec("2.5").Equal(ledgerCfg.Settings.FreeAmount))
	assert.True(t, ledgerCfg.Settings.FreeDrinksEnabled)
	assert.Equal(t, []string{"Kiosk"}, ledgerCfg.Settings.PublicDevices)

	policies := engine.BackupPolicies()
	assert.Equal(t, backup.Policy{Enabled: true, Interval: 2, Keep: 10}, policies.Daily)
	assert.False(t, policies.Weekly.Enabled)
}

func TestLoadEngineDefaults(t *testing.T) {
	engine, err := LoadEngine("")
	require.NoError(t, err)
	assert.Equal(t, backup.DefaultPolicies(), engine.BackupPolicies())
	assert.Equal(t, "€", engine.Ledger().Settings.Currency)
}

func TestLoadEngineErrors(t *testing.T) {
	_, err := LoadEngine(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadEngine(path)
	assert.Error(t, err)
}
