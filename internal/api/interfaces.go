// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/jobs"
	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// AuthHandler handles login and logout
type AuthHandler interface {
	HandleLogin(c echo.Context) error
	HandleLogout(c echo.Context) error
	HandleWhoAmI(c echo.Context) error
}

// WorkbookHandler handles roster workbook uploads
type WorkbookHandler interface {
	HandleUploadWorkbook(c echo.Context) error
	HandleGetRecentWorkbooks(c echo.Context) error
	HandleSelectWorkbook(c echo.Context) error
}

// RosterHandler lists the active roster
type RosterHandler interface {
	HandleListExperts(c echo.Context) error
}

// PeriodHandler reads and changes the invoice period
type PeriodHandler interface {
	HandleGetPeriod(c echo.Context) error
	HandleSetPeriod(c echo.Context) error
}

// SignatureHandler handles signature uploads
type SignatureHandler interface {
	HandleUploadSignature(c echo.Context) error
}

// InvoiceHandler renders invoices on request
type InvoiceHandler interface {
	HandleInvoicePDF(c echo.Context) error
	HandleInvoicesZip(c echo.Context) error
}

// ExportHandler handles background export jobs
type ExportHandler interface {
	HandleStartExport(c echo.Context) error
	HandleExportStatus(c echo.Context) error
	HandleExportDownload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Create(user string) models.Session
	Get(id string) (models.Session, bool)
	Delete(id string)
	Count() int
	SetPeriod(id string, p models.Period) error
	SetWorkbook(id string, info *models.FileInfo, records []models.ExpertRecord) error
	SelectWorkbook(id string, info *models.FileInfo) error
	Roster(id string) ([]models.ExpertRecord, models.Period, error)
	FindExpert(id, name string) (models.ExpertRecord, models.Period, error)
}

// BatchExporter builds a zip archive from a roster.
type BatchExporter interface {
	ExportAll(ctx context.Context, records []models.ExpertRecord, period models.Period, lookup export.SignatureLookup, progress export.ProgressFunc) (*export.Archive, error)
}

// JobRunner runs exports in the background.
type JobRunner interface {
	Start(sessionID string, records []models.ExpertRecord, period models.Period, lookup export.SignatureLookup) jobs.Job
	GetJob(id string) (jobs.Job, bool)
	Archive(id string) ([]byte, error)
}
