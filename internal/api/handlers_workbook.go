// handlers_workbook.go - Roster workbook upload handlers
package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
	"github.com/varun160398/auto-invoice-portal/internal/session"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

const recentWorkbookLimit = 20

// WorkbookHandlerImpl implements the WorkbookHandler interface
type WorkbookHandlerImpl struct {
	cfg      *config.AppConfig
	store    storage.Store
	registry *parser.Registry
	sessions SessionManager
	logger   zerolog.Logger
}

// NewWorkbookHandler creates a new workbook handler
func NewWorkbookHandler(cfg *config.AppConfig, store storage.Store, registry *parser.Registry, sessions SessionManager, logger zerolog.Logger) WorkbookHandler {
	return &WorkbookHandlerImpl{
		cfg:      cfg,
		store:    store,
		registry: registry,
		sessions: sessions,
		logger:   logger.With().Str("component", "workbooks").Logger(),
	}
}

type uploadWorkbookResponse struct {
	File    *models.FileInfo `json:"file"`
	Experts int              `json:"experts"`
}

// HandleUploadWorkbook stores a roster, maps its columns and makes it the
// session's active roster. Missing columns are reported immediately.
func (h *WorkbookHandlerImpl) HandleUploadWorkbook(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if !h.cfg.AllowsWorkbook(file.Filename) {
		return NewFieldError("file", fmt.Errorf("unsupported workbook type %q", filepath.Ext(file.Filename)))
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	log := h.logger.With().Str("session", sess.ID).Str("workbook", info.ID).Str("name", info.Name).Logger()

	info, records, err := h.mapWorkbook(info, log)
	if err != nil {
		return err
	}
	if err := h.sessions.SetWorkbook(sess.ID, info, records); err != nil {
		return sessionError(err)
	}

	log.Info().Int("experts", len(records)).Msg("workbook mapped")
	return c.JSON(http.StatusCreated, uploadWorkbookResponse{File: info, Experts: len(records)})
}

// HandleSelectWorkbook makes a previously uploaded workbook the session's
// active roster. The cached roster is reused when present; otherwise the
// stored workbook is mapped again.
func (h *WorkbookHandlerImpl) HandleSelectWorkbook(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("workbook", id)
		}
		return NewInternalError("failed to read workbook", err)
	}

	log := h.logger.With().Str("session", sess.ID).Str("workbook", info.ID).Str("name", info.Name).Logger()

	err = h.sessions.SelectWorkbook(sess.ID, info)
	if errors.Is(err, session.ErrRosterNotCached) {
		var records []models.ExpertRecord
		info, records, err = h.mapWorkbook(info, log)
		if err != nil {
			return err
		}
		err = h.sessions.SetWorkbook(sess.ID, info, records)
	}
	if err != nil {
		return sessionError(err)
	}

	records, _, err := h.sessions.Roster(sess.ID)
	if err != nil {
		return sessionError(err)
	}

	log.Info().Int("experts", len(records)).Msg("workbook selected")
	return c.JSON(http.StatusOK, uploadWorkbookResponse{File: info, Experts: len(records)})
}

// mapWorkbook parses a stored workbook and records the outcome as its
// status. Failures come back as API errors.
func (h *WorkbookHandlerImpl) mapWorkbook(info *models.FileInfo, log zerolog.Logger) (*models.FileInfo, []models.ExpertRecord, error) {
	path, err := h.store.GetFilePath(info.ID)
	if err != nil {
		return nil, nil, NewInternalError("failed to locate saved file", err)
	}

	records, err := h.registry.LoadRecords(path)
	if err != nil {
		h.markError(info.ID)
		var mce *parser.MissingColumnsError
		if errors.As(err, &mce) {
			log.Warn().Int("missing", len(mce.Missing)).Msg("workbook rejected")
			return nil, nil, NewMissingColumnsError(mce)
		}
		log.Warn().Err(err).Msg("workbook unreadable")
		return nil, nil, NewBadRequestError("could not read workbook", err)
	}

	if updated, err := h.store.SetStatus(info.ID, models.FileStatusMapped); err == nil {
		info = updated
	}
	return info, records, nil
}

func (h *WorkbookHandlerImpl) markError(id string) {
	if _, err := h.store.SetStatus(id, models.FileStatusError); err != nil {
		h.logger.Debug().Err(err).Str("workbook", id).Msg("status update failed")
	}
}

// HandleGetRecentWorkbooks returns recently uploaded workbooks
func (h *WorkbookHandlerImpl) HandleGetRecentWorkbooks(c echo.Context) error {
	files, err := h.store.List(recentWorkbookLimit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}
	return c.JSON(http.StatusOK, files)
}

// sessionError maps session manager errors onto API errors.
func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return NewUnauthorizedError("session expired")
	case errors.Is(err, session.ErrNoWorkbook):
		return NewConflictError("no workbook uploaded for this session")
	case errors.Is(err, session.ErrExpertNotFound):
		return &APIError{
			Status:  http.StatusNotFound,
			Code:    "NOT_FOUND",
			Message: "expert not found",
			Details: err.Error(),
		}
	}
	return NewInternalError("session error", err)
}
