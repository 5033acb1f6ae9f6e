package backup

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/tallyledger/internal/dependencies/clock"
	"github.com/mcoot/tallyledger/internal/model"
)

// AmountSource provides the values written to a snapshot
type AmountSource interface {
	AmountsDue() []model.AmountDue
	Settings() model.Settings
}

// Authorizer checks whether an actor may run a global operation
type Authorizer interface {
	Check(actor model.Actor, target string) error
}

// Config holds configuration for the exporter
type Config struct {
	// Dir is the base backup directory holding one sub-directory per cadence
	Dir string
}

// DefaultConfig returns default exporter configuration
func DefaultConfig() Config {
	return Config{Dir: filepath.Join("backup", "tally_list")}
}

// Result describes one export run
type Result struct {
	Cadence Cadence  `json:"cadence"`
	Path    string   `json:"path,omitempty"`
	Written bool     `json:"written"`
	Removed []string `json:"removed,omitempty"`
}

// Exporter writes amount-due snapshots and prunes old ones
type Exporter struct {
	cfg    Config
	source AmountSource
	auth   Authorizer
	clock  clock.Clock
	logger *slog.Logger
}

// New creates an exporter
func New(cfg Config, source AmountSource, auth Authorizer, clk clock.Clock, logger *slog.Logger) *Exporter {
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfig().Dir
	}
	return &Exporter{
		cfg:    cfg,
		source: source,
		auth:   auth,
		clock:  clk,
		logger: logger.With(slog.String("component", "backup")),
	}
}

// ExportCsv runs one cadence on behalf of actor. Export is a global
// operation and needs admin rights.
func (e *Exporter) ExportCsv(ctx context.Context, actor model.Actor, cadence Cadence, policy Policy) (Result, error) {
	if err := e.auth.Check(actor, ""); err != nil {
		return Result{}, err
	}
	return e.run(cadence, policy)
}

// RunScheduled runs the daily, weekly and monthly cadences
func (e *Exporter) RunScheduled(ctx context.Context, policies Policies) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, c := range []Cadence{Daily, Weekly, Monthly} {
		r, err := e.run(c, policies.For(c))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}

// run writes the cadence's snapshot when due, then applies retention.
// Retention runs even when nothing was written.
func (e *Exporter) run(cadence Cadence, policy Policy) (Result, error) {
	now := e.clock.Now()
	dir := filepath.Join(e.cfg.Dir, string(cadence))
	result := Result{Cadence: cadence}

	var writeErr error
	if path, ok := e.target(cadence, policy, dir, now); ok {
		if writeErr = e.writeSnapshot(path); writeErr == nil {
			result.Path = path
			result.Written = true
			e.logger.Info("backup written", slog.String("cadence", string(cadence)), slog.String("path", path))
		} else {
			e.logger.Error("failed to write backup", slog.String("path", path), slog.String("error", writeErr.Error()))
		}
	}

	var (
		removed    []string
		cleanupErr error
	)
	if cadence == Manual {
		removed, cleanupErr = pruneByCount(dir, manualKeep(policy.Keep))
	} else {
		cutoff := now.AddDate(0, 0, -retentionDays(cadence, policy.Keep))
		removed, cleanupErr = pruneOlderThan(dir, cutoff)
	}
	result.Removed = removed
	if cleanupErr != nil {
		e.logger.Error("failed to prune backups", slog.String("dir", dir), slog.String("error", cleanupErr.Error()))
	}
	if len(removed) > 0 {
		e.logger.Info("backups pruned", slog.String("cadence", string(cadence)), slog.Int("count", len(removed)))
	}
	return result, errors.Join(writeErr, cleanupErr)
}

// target returns the file the cadence should write now, if any
func (e *Exporter) target(cadence Cadence, policy Policy, dir string, now time.Time) (string, bool) {
	if !policy.Enabled {
		return "", false
	}
	switch cadence {
	case Daily:
		if !due(now.YearDay(), policy.Interval) {
			return "", false
		}
		return filepath.Join(dir, "amount_due_"+now.Format("2006-01-02_15-04")+".csv"), true
	case Weekly:
		year, week := now.ISOWeek()
		if !due(week, policy.Interval) {
			return "", false
		}
		path := filepath.Join(dir, fmt.Sprintf("amount_due_week_%d-%02d.csv", year, week))
		return path, !exists(path)
	case Monthly:
		if !due(int(now.Month()), policy.Interval) {
			return "", false
		}
		path := filepath.Join(dir, "amount_due_"+now.Format("2006-01")+".csv")
		return path, !exists(path)
	case Manual:
		return filepath.Join(dir, "amount_due_manual_"+now.Format("2006-01-02_15-04")+".csv"), true
	}
	return "", false
}

// writeSnapshot writes one row per regular user with the amount due
func (e *Exporter) writeSnapshot(path string) error {
	settings := e.source.Settings()
	rows := [][]string{{"Name", fmt.Sprintf("Betrag (%s)", settings.Currency)}}

	dues := e.source.AmountsDue()
	sort.SliceStable(dues, func(i, j int) bool {
		return strings.ToLower(dues[i].Name) < strings.ToLower(dues[j].Name)
	})
	for _, d := range dues {
		if d.Role == model.RoleCash || d.Role == model.RolePriceList {
			continue
		}
		rows = append(rows, []string{d.Name, d.Amount.StringFixed(2)})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type fileInfo struct {
	path  string
	mtime time.Time
}

func listFiles(dir string) ([]fileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: filepath.Join(dir, entry.Name()), mtime: info.ModTime()})
	}
	return files, nil
}

func pruneOlderThan(dir string, cutoff time.Time) ([]string, error) {
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	var (
		removed []string
		errs    []error
	)
	for _, f := range files {
		if !f.mtime.Before(cutoff) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, f.path)
	}
	return removed, errors.Join(errs...)
}

func pruneByCount(dir string, keep int) ([]string, error) {
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) <= keep {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.After(files[j].mtime) })

	var (
		removed []string
		errs    []error
	)
	for _, f := range files[keep:] {
		if err := os.Remove(f.path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, f.path)
	}
	return removed, errors.Join(errs...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
