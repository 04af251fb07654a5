// Package maintenance schedules periodic cleanup of idle sessions and
// finished export jobs.
package maintenance

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionCleaner removes idle sessions.
type SessionCleaner interface {
	CleanupOldSessions(maxAge time.Duration) int
}

// JobCleaner removes finished export jobs.
type JobCleaner interface {
	CleanupOldJobs(maxAge time.Duration) int
}

// Options configures the cleanup schedule.
type Options struct {
	// Schedule is a cron spec; descriptors such as "@every 5m" are accepted.
	Schedule      string
	SessionMaxAge time.Duration
	JobMaxAge     time.Duration
}

// Scheduler runs cleanup on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionCleaner
	jobs     JobCleaner
	opts     Options
	logger   zerolog.Logger
}

// New validates the schedule and registers the cleanup task. Call Start
// to begin running it.
func New(sessions SessionCleaner, jobs JobCleaner, opts Options, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		sessions: sessions,
		jobs:     jobs,
		opts:     opts,
		logger:   logger.With().Str("component", "maintenance").Logger(),
	}
	if _, err := s.cron.AddFunc(opts.Schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("unable to schedule cleanup %q: %w", opts.Schedule, err)
	}
	return s, nil
}

// RunOnce performs one cleanup pass.
func (s *Scheduler) RunOnce() {
	sessions := s.sessions.CleanupOldSessions(s.opts.SessionMaxAge)
	jobs := s.jobs.CleanupOldJobs(s.opts.JobMaxAge)
	if sessions > 0 || jobs > 0 {
		s.logger.Info().Int("sessions", sessions).Int("jobs", jobs).Msg("cleanup removed stale state")
	}
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Str("schedule", s.opts.Schedule).Msg("cleanup scheduler started")
}

// Stop halts the schedule and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
