// handlers_invoice.go - Invoice download handlers
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// HeaderSignatureDiagnostic carries the reason a signature was not drawn.
const HeaderSignatureDiagnostic = "X-Signature-Diagnostic"

const mimeApplicationZip = "application/zip"
const mimeApplicationPDF = "application/pdf"

// signatureLookup adapts a SignatureStore to the exporter, treating a
// missing signature as none.
func signatureLookup(store storage.SignatureStore) export.SignatureLookup {
	return func(ctx context.Context, name string) ([]byte, error) {
		data, err := store.Lookup(ctx, name)
		if errors.Is(err, storage.ErrSignatureNotFound) {
			return nil, nil
		}
		return data, err
	}
}

func attachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

// InvoiceHandlerImpl implements the InvoiceHandler interface
type InvoiceHandlerImpl struct {
	sessions SessionManager
	renderer export.Renderer
	exporter BatchExporter
	lookup   export.SignatureLookup
	logger   zerolog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(sessions SessionManager, renderer export.Renderer, exporter BatchExporter, lookup export.SignatureLookup, logger zerolog.Logger) InvoiceHandler {
	return &InvoiceHandlerImpl{
		sessions: sessions,
		renderer: renderer,
		exporter: exporter,
		lookup:   lookup,
		logger:   logger.With().Str("component", "invoices").Logger(),
	}
}

// HandleInvoicePDF renders the invoice of the first expert named ?name=
func (h *InvoiceHandlerImpl) HandleInvoicePDF(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return NewValidationError("name")
	}

	rec, period, err := h.sessions.FindExpert(sess.ID, name)
	if err != nil {
		return sessionError(err)
	}

	log := h.logger.With().Str("session", sess.ID).Str("expert", rec.ExpertName).Logger()

	sig, lookupErr := h.lookup(c.Request().Context(), rec.ExpertName)
	if lookupErr != nil {
		log.Warn().Err(lookupErr).Msg("signature lookup failed")
		sig = nil
	}

	res, err := h.renderer.Render(rec, sig, period)
	if err != nil {
		return NewInternalError("failed to render invoice", err)
	}

	switch {
	case res.Diagnostic != nil:
		c.Response().Header().Set(HeaderSignatureDiagnostic, res.Diagnostic.Error())
	case lookupErr != nil:
		c.Response().Header().Set(HeaderSignatureDiagnostic, lookupErr.Error())
	}
	attachment(c, export.InvoiceFilename(rec))
	return c.Blob(http.StatusOK, mimeApplicationPDF, res.PDF)
}

// HandleInvoicesZip renders every invoice of the roster into one archive
func (h *InvoiceHandlerImpl) HandleInvoicesZip(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	records, period, err := h.sessions.Roster(sess.ID)
	if err != nil {
		return sessionError(err)
	}

	archive, err := h.exporter.ExportAll(c.Request().Context(), records, period, h.lookup, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return NewServiceUnavailableError("export cancelled")
		}
		var ee *export.ExportError
		if errors.As(err, &ee) && ee.Expert != "" {
			return NewInternalError(fmt.Sprintf("export failed at %s", ee.Expert), ee.Err)
		}
		return NewInternalError("export failed", err)
	}

	attachment(c, export.ArchiveName)
	return c.Blob(http.StatusOK, mimeApplicationZip, archive.Data)
}
