package auditlog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/mcoot/tallyledger/internal/dependencies/clock"
)

const (
	timestampLayout = "2006-01-02T15:04"

	bookingDir    = "free_drinks"
	bookingPrefix = "free_drinks_"
	changeDir     = "price_list"
	changePrefix  = "price_list_"
)

var (
	bookingHeader = []string{"Uhrzeit", "Name", "Getränke mit Anzahl", "Kommentar"}
	changeHeader  = []string{"Time", "User", "Action", "Details"}
)

// Config holds configuration for the audit log writer
type Config struct {
	// Dir is the base directory holding free_drinks/ and price_list/
	Dir string
	// Location is the zone used for minute timestamps and yearly files
	Location *time.Location
}

// DefaultConfig returns the default writer configuration
func DefaultConfig() Config {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return Config{
		Dir:      filepath.Join("data", "tally_list"),
		Location: loc,
	}
}

// Writer appends minute-bucketed rows to yearly CSV files. Each write
// rewrites the whole file; writes to the same path are serialised.
type Writer struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an audit log writer
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Writer {
	if cfg.Location == nil {
		cfg.Location = DefaultConfig().Location
	}
	return &Writer{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// BookingPath returns the drink-booking log path for year
func (w *Writer) BookingPath(year int) string {
	return filepath.Join(w.cfg.Dir, bookingDir, fmt.Sprintf("%s%d.csv", bookingPrefix, year))
}

// ChangePath returns the change log path for year
func (w *Writer) ChangePath(year int) string {
	return filepath.Join(w.cfg.Dir, changeDir, fmt.Sprintf("%s%d.csv", changePrefix, year))
}

// LogBooking writes a drink-booking row, merging it into the last row when
// timestamp, actor and comment match.
func (w *Writer) LogBooking(b Booking) error {
	now := w.clock.Now().In(w.cfg.Location)
	ts := now.Format(timestampLayout)
	path := w.BookingPath(now.Year())

	err := w.rewrite(path, bookingHeader, func(rows [][]string) [][]string {
		if last := len(rows) - 1; last > 0 && len(rows[last]) >= 4 {
			row := rows[last]
			if row[0] == ts && row[1] == b.Actor && row[3] == b.Comment {
				if existing, ok := parseBookingItems(row[2]); ok {
					items := mergeBookingItems(existing, b.Items)
					if len(items) == 0 {
						return rows[:last]
					}
					row[2] = formatBookingItems(items)
					return rows
				}
			}
		}
		items := mergeBookingItems(nil, b.Items)
		if len(items) == 0 {
			return rows
		}
		return append(rows, []string{ts, b.Actor, formatBookingItems(items), b.Comment})
	})
	if err != nil {
		w.logger.Error("failed to write booking log", slog.String("path", path), slog.String("error", err.Error()))
	}
	return err
}

// LogChange writes a change-log row, merging it into the last row when
// timestamp, actor and action match.
func (w *Writer) LogChange(c Change) error {
	now := w.clock.Now().In(w.cfg.Location)
	ts := now.Format(timestampLayout)
	path := w.ChangePath(now.Year())
	details := c.details()

	err := w.rewrite(path, changeHeader, func(rows [][]string) [][]string {
		if last := len(rows) - 1; last > 0 && len(rows[last]) >= 4 {
			row := rows[last]
			if row[0] == ts && row[1] == c.Actor && row[2] == c.Action {
				row[3] = mergeChangeDetails(row[3], details)
				return rows
			}
		}
		return append(rows, []string{ts, c.Actor, c.Action, details})
	})
	if err != nil {
		w.logger.Error("failed to write change log", slog.String("path", path), slog.String("error", err.Error()))
	}
	return err
}

// ClearBookings deletes every drink-booking log file
func (w *Writer) ClearBookings() error {
	dir := filepath.Join(w.cfg.Dir, bookingDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), bookingPrefix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		lock := w.lockFor(path)
		lock.Lock()
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
		lock.Unlock()
	}
	if err := errors.Join(errs...); err != nil {
		w.logger.Error("failed to clear booking log", slog.String("error", err.Error()))
		return err
	}
	w.logger.Info("booking log cleared")
	return nil
}

// ReadRows returns all rows of the CSV file at path including the header
func ReadRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func (w *Writer) rewrite(path string, header []string, update func([][]string) [][]string) error {
	lock := w.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	rows, err := ReadRows(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		rows = [][]string{append([]string(nil), header...)}
	}
	rows = update(rows)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = ';'
	cw.UseCRLF = true
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (w *Writer) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[path] = lock
	}
	return lock
}
