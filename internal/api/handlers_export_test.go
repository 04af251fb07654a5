package api

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varun160398/auto-invoice-portal/internal/jobs"
)

func startExport(t *testing.T, env *testEnv, cookie *http.Cookie) string {
	t.Helper()
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/exports", nil), cookie)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	decodeJSON(t, rec.Body, &resp)
	require.NotEmpty(t, resp.JobID)
	assert.Equal(t, string(jobs.StatusQueued), resp.Status)
	return resp.JobID
}

func TestExportJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.uploadRoster(t, expert("Asha Rao", "INV-1"), expert("Vikram Shah", "INV-2"))

	id := startExport(t, env, cookie)
	env.jobs.Wait()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/exports/"+id, nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var job jobs.Job
	decodeJSON(t, rec.Body, &job)
	assert.Equal(t, jobs.StatusComplete, job.Status)
	assert.Equal(t, 100.0, job.Progress)
	assert.Equal(t, 2, job.Done)
	require.Len(t, job.Entries, 2)
	assert.Equal(t, "Asha_Rao_Invoice_INV-1.pdf", job.Entries[0].Name)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/exports/"+id+"/download", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)
}

func TestExportJobBelongsToSession(t *testing.T) {
	env := newTestEnv(t)
	owner := env.uploadRoster(t, expert("Asha Rao", "INV-1"))
	other := env.login(t)

	id := startExport(t, env, owner)
	env.jobs.Wait()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/exports/"+id, nil), other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/exports/"+id+"/download", nil), other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportJobErrors(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/exports", nil), cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/exports/missing", nil), cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/exports/missing/download", nil), cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
