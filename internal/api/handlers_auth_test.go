package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

func TestHealthNeedsNoSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeJSON(t, rec.Body, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/experts"},
		{http.MethodGet, "/api/period"},
		{http.MethodPost, "/api/period"},
		{http.MethodGet, "/api/invoice.pdf?name=x"},
		{http.MethodGet, "/api/invoices.zip"},
		{http.MethodPost, "/api/exports"},
		{http.MethodPost, "/api/signatures"},
		{http.MethodPost, "/api/workbooks"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(r.method, r.path, nil), nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var apiErr APIError
			decodeJSON(t, rec.Body, &apiErr)
			assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
		})
	}

	stale := &http.Cookie{Name: env.cfg.Security.SessionCookie, Value: "no-such-session"}
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/experts", nil), stale)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		errCode    string
	}{
		{"valid", url.Values{"loginId": {"sa"}, "password": {"sa123"}}, http.StatusOK, ""},
		{"id is trimmed", url.Values{"loginId": {"  sa "}, "password": {"sa123"}}, http.StatusOK, ""},
		{"wrong password", url.Values{"loginId": {"sa"}, "password": {"nope"}}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong id", url.Values{"loginId": {"admin"}, "password": {"sa123"}}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing id", url.Values{"password": {"sa123"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing password", url.Values{"loginId": {"sa"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(formRequest(http.MethodPost, "/api/login", tt.form), nil)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.errCode != "" {
				var apiErr APIError
				decodeJSON(t, rec.Body, &apiErr)
				assert.Equal(t, tt.errCode, apiErr.Code)
				assert.Empty(t, rec.Result().Cookies())
				return
			}

			var sess models.Session
			decodeJSON(t, rec.Body, &sess)
			assert.Equal(t, "sa", sess.User)
			assert.Equal(t, models.Period{Month: "February", Year: 2026}, sess.Period)
			assert.Equal(t, 1, env.sessions.Count())
		})
	}
}

func TestLoginAcceptsJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"loginId":"sa","password":"sa123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := env.do(req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionCookieAndLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 24*60*60, cookie.MaxAge)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/session", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess models.Session
	decodeJSON(t, rec.Body, &sess)
	assert.Equal(t, cookie.Value, sess.ID)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil), cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.sessions.Count())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/session", nil), cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	first := env.uploadRoster(t, expert("Asha Rao", "INV-1"))
	second := env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/experts", nil), first)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/experts", nil), second)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
