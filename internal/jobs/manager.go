// Package jobs runs bulk invoice exports in the background so large
// rosters do not hold an HTTP request open.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/models"
)

var (
	ErrNotFound = errors.New("job not found")
	ErrNotReady = errors.New("job has not finished")
)

// Status represents the export job status.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRendering Status = "rendering"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Job represents an async export job.
type Job struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"-"`
	Period      models.Period  `json:"period"`
	Status      Status         `json:"status"`
	Progress    float64        `json:"progress"`
	Stage       string         `json:"stage"`
	Total       int            `json:"total"`
	Done        int            `json:"done"`
	Entries     []export.Entry `json:"entries,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`

	archive []byte
}

// Exporter builds an archive for a roster.
type Exporter interface {
	ExportAll(ctx context.Context, records []models.ExpertRecord, period models.Period, lookup export.SignatureLookup, progress export.ProgressFunc) (*export.Archive, error)
}

// Manager handles async export processing.
type Manager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	exporter Exporter
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a new export job manager.
func NewManager(exporter Exporter, logger zerolog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:     make(map[string]*Job),
		exporter: exporter,
		logger:   logger.With().Str("component", "jobs").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start queues an export of records and returns a snapshot of the new job.
func (m *Manager) Start(sessionID string, records []models.ExpertRecord, period models.Period, lookup export.SignatureLookup) Job {
	job := &Job{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Period:    period,
		Status:    StatusQueued,
		Stage:     "queued",
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.processJob(job, records, lookup)

	return snapshot
}

// GetJob returns a snapshot of a job.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Archive returns the finished zip of a job.
func (m *Manager) Archive(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	switch job.Status {
	case StatusComplete:
		return job.archive, nil
	case StatusError:
		return nil, fmt.Errorf("export failed: %s", job.Error)
	}
	return nil, ErrNotReady
}

func (m *Manager) processJob(job *Job, records []models.ExpertRecord, lookup export.SignatureLookup) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.markJobError(job, fmt.Sprintf("export panicked: %v", r))
		}
	}()

	log := m.logger.With().Str("job", shortID(job.ID)).Logger()
	log.Info().Int("records", len(records)).Str("period", job.Period.String()).Msg("starting export")
	m.updateJobStatus(job, StatusRendering, "rendering invoices", 0, 0)

	archive, err := m.exporter.ExportAll(m.ctx, records, job.Period, lookup, func(done, total int) {
		m.updateJobStatus(job, StatusRendering, "rendering invoices", done, total)
	})
	if err != nil {
		m.markJobError(job, err.Error())
		return
	}

	m.markJobComplete(job, archive)
	log.Info().Int("invoices", len(archive.Entries)).Int("bytes", len(archive.Data)).Msg("export complete")
}

// updateJobStatus updates job progress (thread-safe). Rendering covers
// 0-95%; the remainder is packaging.
func (m *Manager) updateJobStatus(job *Job, status Status, stage string, done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = status
	job.Stage = stage
	job.Done = done
	job.Total = total
	if total > 0 {
		job.Progress = float64(done) * 95 / float64(total)
	}
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job, archive *export.Archive) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.Stage = "complete"
	job.Progress = 100
	job.Entries = archive.Entries
	job.archive = archive.Data
	now := time.Now()
	job.CompletedAt = &now
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Stage = "failed"
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
	m.logger.Error().Str("job", shortID(job.ID)).Msg(errMsg)
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how
// many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.Status != StatusComplete && job.Status != StatusError {
			continue
		}
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

// Close cancels running exports and waits for them to stop.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
