package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the process configuration read from the environment
type Config struct {
	Host           string
	Port           int
	DataDir        string
	StorageType    string
	RedisURL       string
	EnginePath     string
	Timezone       string
	BackupSchedule string
	LogLevel       slog.Level
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Port:           8080,
		DataDir:        "data",
		StorageType:    StorageMemory,
		Timezone:       "Europe/Berlin",
		BackupSchedule: "5 0 * * *",
		LogLevel:       slog.LevelInfo,
	}
}

// Load reads a .env file from the working directory, if present, and then
// the TALLY_* environment variables. Variables already set in the
// environment take precedence over the .env file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the TALLY_* environment variables over the defaults
func FromEnv() (Config, error) {
	cfg := Default()

	if addr := os.Getenv("TALLY_ADDR_PORT"); addr != "" {
		host, port, err := splitAddrPort(addr)
		if err != nil {
			return Config{}, err
		}
		cfg.Host, cfg.Port = host, port
	}
	cfg.DataDir = getEnvOrDefault("TALLY_DATA_DIR", cfg.DataDir)
	cfg.StorageType = strings.ToLower(getEnvOrDefault("TALLY_STORAGE", cfg.StorageType))
	cfg.RedisURL = os.Getenv("TALLY_REDIS_URL")
	cfg.EnginePath = os.Getenv("TALLY_CONFIG")
	cfg.Timezone = getEnvOrDefault("TALLY_TIMEZONE", cfg.Timezone)
	cfg.BackupSchedule = getEnvOrDefault("TALLY_BACKUP_SCHEDULE", cfg.BackupSchedule)

	if level := os.Getenv("TALLY_LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("invalid TALLY_LOG_LEVEL %q: %w", level, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("TALLY_REDIS_URL required when TALLY_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid TALLY_STORAGE %q: must be 'memory' or 'redis'", c.StorageType)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TALLY_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// AuditDir is where the price and free-drink logs are written
func (c Config) AuditDir() string {
	return filepath.Join(c.DataDir, "tally_list")
}

// BackupDir is the base directory of the amount-due snapshots
func (c Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backup", "tally_list")
}

func splitAddrPort(addr string) (string, int, error) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("invalid TALLY_ADDR_PORT %q: expected host:port", addr)
	}
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid TALLY_ADDR_PORT %q: bad port", addr)
	}
	return addr[:i], port, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
