// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Config     *config.AppConfig
	Store      storage.Store
	Signatures storage.SignatureStore
	SessionMgr SessionManager
	Registry   *parser.Registry
	Renderer   export.Renderer
	Exporter   BatchExporter
	Jobs       JobRunner
	Logger     zerolog.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Auth      AuthHandler
	Workbook  WorkbookHandler
	Roster    RosterHandler
	Period    PeriodHandler
	Signature SignatureHandler
	Invoice   InvoiceHandler
	Export    ExportHandler

	requireSession echo.MiddlewareFunc
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	cfg := deps.Config
	lookup := signatureLookup(deps.Signatures)

	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.SessionMgr),
		Auth:      NewAuthHandler(cfg.Security, deps.SessionMgr, deps.Logger),
		Workbook:  NewWorkbookHandler(cfg, deps.Store, deps.Registry, deps.SessionMgr, deps.Logger),
		Roster:    NewRosterHandler(deps.SessionMgr, deps.Signatures, deps.Logger),
		Period:    NewPeriodHandler(cfg.PeriodRange(), deps.SessionMgr),
		Signature: NewSignatureHandler(cfg, deps.Signatures, deps.Logger),
		Invoice:   NewInvoiceHandler(deps.SessionMgr, deps.Renderer, deps.Exporter, lookup, deps.Logger),
		Export:    NewExportHandler(deps.SessionMgr, deps.Jobs, lookup),

		requireSession: RequireSession(deps.SessionMgr, cfg.Security.SessionCookie),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Login is the only unauthenticated invoice route
	e.POST("/api/login", handlers.Auth.HandleLogin)

	g := e.Group("/api", handlers.requireSession)
	g.POST("/logout", handlers.Auth.HandleLogout)
	g.GET("/session", handlers.Auth.HandleWhoAmI)

	g.POST("/workbooks", handlers.Workbook.HandleUploadWorkbook)
	g.GET("/workbooks/recent", handlers.Workbook.HandleGetRecentWorkbooks)
	g.POST("/workbooks/:id/select", handlers.Workbook.HandleSelectWorkbook)
	g.GET("/experts", handlers.Roster.HandleListExperts)

	g.GET("/period", handlers.Period.HandleGetPeriod)
	g.POST("/period", handlers.Period.HandleSetPeriod)

	g.POST("/signatures", handlers.Signature.HandleUploadSignature)

	g.GET("/invoice.pdf", handlers.Invoice.HandleInvoicePDF)
	g.GET("/invoices.zip", handlers.Invoice.HandleInvoicesZip)

	g.POST("/exports", handlers.Export.HandleStartExport)
	g.GET("/exports/:id", handlers.Export.HandleExportStatus)
	g.GET("/exports/:id/download", handlers.Export.HandleExportDownload)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, logger zerolog.Logger, debug bool) {
	// Use custom error handler
	e.HTTPErrorHandler = NewErrorHandler(logger, debug)
	e.HideBanner = true
	e.HidePort = true
}
