// handlers_period.go - Invoice period handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

// PeriodHandlerImpl implements the PeriodHandler interface
type PeriodHandlerImpl struct {
	allowed  models.PeriodRange
	sessions SessionManager
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(allowed models.PeriodRange, sessions SessionManager) PeriodHandler {
	return &PeriodHandlerImpl{
		allowed:  allowed,
		sessions: sessions,
	}
}

type periodResponse struct {
	Period models.Period `json:"period"`
	Months []string      `json:"months"`
	Years  []int         `json:"years"`
}

func (h *PeriodHandlerImpl) respond(c echo.Context, p models.Period) error {
	return c.JSON(http.StatusOK, periodResponse{
		Period: p,
		Months: models.Months,
		Years:  h.allowed.Years(),
	})
}

// HandleGetPeriod returns the session period and the selectable values
func (h *PeriodHandlerImpl) HandleGetPeriod(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return h.respond(c, sess.Period)
}

// HandleSetPeriod validates month and year form values and stores them
func (h *PeriodHandlerImpl) HandleSetPeriod(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	p, err := h.allowed.ParsePeriod(c.FormValue("month"), c.FormValue("year"))
	switch {
	case errors.Is(err, models.ErrInvalidMonth):
		return NewFieldError("month", err)
	case errors.Is(err, models.ErrInvalidYear):
		return NewFieldError("year", err)
	case err != nil:
		return NewBadRequestError("invalid period", err)
	}

	if err := h.sessions.SetPeriod(sess.ID, p); err != nil {
		return sessionError(err)
	}
	return h.respond(c, p)
}
