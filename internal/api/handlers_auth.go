// handlers_auth.go - Login session handlers
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/models"
)

const sessionContextKey = "session"

// RequireSession rejects requests without a live session cookie and
// stores the session in the echo context.
func RequireSession(sessions SessionManager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return NewUnauthorizedError("login required")
			}
			sess, ok := sessions.Get(cookie.Value)
			if !ok {
				return NewUnauthorizedError("session expired")
			}
			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// currentSession returns the session stored by RequireSession.
func currentSession(c echo.Context) (models.Session, error) {
	sess, ok := c.Get(sessionContextKey).(models.Session)
	if !ok {
		return models.Session{}, NewUnauthorizedError("login required")
	}
	return sess, nil
}

// AuthHandlerImpl implements the AuthHandler interface
type AuthHandlerImpl struct {
	security config.SecurityConfig
	sessions SessionManager
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(security config.SecurityConfig, sessions SessionManager, logger zerolog.Logger) AuthHandler {
	return &AuthHandlerImpl{
		security: security,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

type loginRequest struct {
	LoginID  string `json:"loginId" form:"loginId"`
	Password string `json:"password" form:"password"`
}

func (r *loginRequest) validate() error {
	if strings.TrimSpace(r.LoginID) == "" {
		return NewValidationError("loginId")
	}
	if r.Password == "" {
		return NewValidationError("password")
	}
	return nil
}

func (h *AuthHandlerImpl) credentialsMatch(id, password string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(id)), []byte(h.security.LoginID)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.security.Password)) == 1
	return idOK && pwOK
}

// HandleLogin checks the configured credentials and starts a session
func (h *AuthHandlerImpl) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid login request", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if !h.credentialsMatch(req.LoginID, req.Password) {
		h.logger.Warn().Str("loginId", req.LoginID).Str("ip", c.RealIP()).Msg("login rejected")
		return NewUnauthorizedError("invalid credentials")
	}

	sess := h.sessions.Create(strings.TrimSpace(req.LoginID))
	c.SetCookie(h.cookie(sess.ID, h.security.SessionTimeoutMinutes*60))
	h.logger.Info().Str("session", sess.ID).Msg("login")

	return c.JSON(http.StatusOK, sess)
}

// HandleLogout ends the current session
func (h *AuthHandlerImpl) HandleLogout(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	h.sessions.Delete(sess.ID)
	c.SetCookie(h.cookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

// HandleWhoAmI returns the current session
func (h *AuthHandlerImpl) HandleWhoAmI(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHandlerImpl) cookie(value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     h.security.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.security.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}
