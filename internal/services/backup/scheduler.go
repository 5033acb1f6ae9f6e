package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the scheduled cadences shortly after midnight
const DefaultSchedule = "5 0 * * *"

// Scheduler runs the daily, weekly and monthly cadences on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	exporter *Exporter
	policies Policies
	logger   *slog.Logger
}

// NewScheduler creates a scheduler. spec is a standard five-field cron
// expression evaluated in loc.
func NewScheduler(exporter *Exporter, policies Policies, spec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		exporter: exporter,
		policies: policies,
		logger:   logger.With(slog.String("component", "backup_scheduler")),
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run executes one scheduled backup pass
func (s *Scheduler) Run() {
	results, err := s.exporter.RunScheduled(context.Background(), s.policies)
	if err != nil {
		s.logger.Error("scheduled backup failed", slog.String("error", err.Error()))
	}
	written := 0
	for _, r := range results {
		if r.Written {
			written++
		}
	}
	s.logger.Info("scheduled backup finished", slog.Int("written", written))
}

// Start starts the cron loop in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("backup scheduler started")
}

// Stop stops the cron loop and waits for a running job to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("backup scheduler stopped")
}

// Next returns the next scheduled run time
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
