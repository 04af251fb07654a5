// handlers_export.go - Background export job handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/jobs"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	sessions SessionManager
	jobs     JobRunner
	lookup   export.SignatureLookup
}

// NewExportHandler creates a new export job handler
func NewExportHandler(sessions SessionManager, runner JobRunner, lookup export.SignatureLookup) ExportHandler {
	return &ExportHandlerImpl{
		sessions: sessions,
		jobs:     runner,
		lookup:   lookup,
	}
}

// HandleStartExport queues an export of the session's roster
func (h *ExportHandlerImpl) HandleStartExport(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	records, period, err := h.sessions.Roster(sess.ID)
	if err != nil {
		return sessionError(err)
	}

	job := h.jobs.Start(sess.ID, records, period, h.lookup)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

// ownedJob returns the job only when it belongs to the caller's session.
func (h *ExportHandlerImpl) ownedJob(c echo.Context) (jobs.Job, error) {
	sess, err := currentSession(c)
	if err != nil {
		return jobs.Job{}, err
	}
	id := c.Param("id")
	if id == "" {
		return jobs.Job{}, NewValidationError("id")
	}
	job, ok := h.jobs.GetJob(id)
	if !ok || job.SessionID != sess.ID {
		return jobs.Job{}, NewNotFoundError("export", id)
	}
	return job, nil
}

// HandleExportStatus reports job status and progress
func (h *ExportHandlerImpl) HandleExportStatus(c echo.Context) error {
	job, err := h.ownedJob(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

// HandleExportDownload streams the archive of a finished job
func (h *ExportHandlerImpl) HandleExportDownload(c echo.Context) error {
	job, err := h.ownedJob(c)
	if err != nil {
		return err
	}

	data, err := h.jobs.Archive(job.ID)
	switch {
	case errors.Is(err, jobs.ErrNotReady):
		return NewConflictError("export is still running")
	case errors.Is(err, jobs.ErrNotFound):
		return NewNotFoundError("export", job.ID)
	case err != nil:
		return NewInternalError("export failed", err)
	}

	attachment(c, export.ArchiveName)
	return c.Blob(http.StatusOK, mimeApplicationZip, data)
}
