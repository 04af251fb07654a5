// handlers_roster.go - Roster listing handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// MIMEApplicationMsgpack selects the binary roster encoding.
const MIMEApplicationMsgpack = "application/msgpack"

// RosterHandlerImpl implements the RosterHandler interface
type RosterHandlerImpl struct {
	sessions   SessionManager
	signatures storage.SignatureStore
	logger     zerolog.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(sessions SessionManager, signatures storage.SignatureStore, logger zerolog.Logger) RosterHandler {
	return &RosterHandlerImpl{
		sessions:   sessions,
		signatures: signatures,
		logger:     logger.With().Str("component", "roster").Logger(),
	}
}

type expertRow struct {
	models.ExpertRecord `msgpack:",inline"`
	HasSignature        bool `json:"hasSignature" msgpack:"hasSignature"`
}

type rosterResponse struct {
	Workbook string        `json:"workbook" msgpack:"workbook"`
	Period   models.Period `json:"period" msgpack:"period"`
	Experts  []expertRow   `json:"experts" msgpack:"experts"`
}

// HandleListExperts returns the active roster with signature availability.
// Clients sending Accept: application/msgpack get a msgpack body.
func (h *RosterHandlerImpl) HandleListExperts(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	records, period, err := h.sessions.Roster(sess.ID)
	if err != nil {
		return sessionError(err)
	}

	ctx := c.Request().Context()
	resp := rosterResponse{
		Workbook: sess.WorkbookName,
		Period:   period,
		Experts:  make([]expertRow, 0, len(records)),
	}
	for _, rec := range records {
		row := expertRow{ExpertRecord: rec}
		if strings.TrimSpace(rec.ExpertName) != "" {
			has, err := h.signatures.Has(ctx, rec.ExpertName)
			if err != nil {
				h.logger.Warn().Err(err).Str("expert", rec.ExpertName).Msg("signature check failed")
			}
			row.HasSignature = has
		}
		resp.Experts = append(resp.Experts, row)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack) {
		data, err := msgpack.Marshal(&resp)
		if err != nil {
			return NewInternalError("failed to encode roster", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}
	return c.JSON(http.StatusOK, resp)
}
