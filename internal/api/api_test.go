package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/export"
	"github.com/varun160398/auto-invoice-portal/internal/invoice"
	"github.com/varun160398/auto-invoice-portal/internal/jobs"
	"github.com/varun160398/auto-invoice-portal/internal/models"
	"github.com/varun160398/auto-invoice-portal/internal/parser"
	"github.com/varun160398/auto-invoice-portal/internal/session"
	"github.com/varun160398/auto-invoice-portal/internal/testutil"
)

var stamp = time.Date(2026, time.February, 28, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	e        *echo.Echo
	cfg      *config.AppConfig
	store    *testutil.MockStorage
	sigs     *testutil.MockSignatureStore
	sessions *session.Manager
	rosters  *session.RosterStore
	jobs     *jobs.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	rosters, err := session.NewRosterStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	sessions := session.NewManager(rosters, cfg.DefaultPeriod(), zerolog.Nop())
	renderer := invoice.NewRenderer(invoice.Options{Letterhead: cfg.Company, Timestamp: stamp}, zerolog.Nop())
	exporter := export.NewExporter(renderer, export.Options{Workers: 2, Modified: stamp}, zerolog.Nop())
	jm := jobs.NewManager(exporter, zerolog.Nop())
	t.Cleanup(jm.Close)

	env := &testEnv{
		e:        echo.New(),
		cfg:      cfg,
		store:    testutil.NewMockStorage(t.TempDir()),
		sigs:     testutil.NewMockSignatureStore(),
		sessions: sessions,
		rosters:  rosters,
		jobs:     jm,
	}

	SetupMiddleware(env.e, zerolog.Nop(), true)
	RegisterRoutes(env.e, NewHandlers(&Dependencies{
		Config:     cfg,
		Store:      env.store,
		Signatures: env.sigs,
		SessionMgr: sessions,
		Registry:   parser.NewRegistry(cfg.Workbook.SheetName, cfg.AliasTable()),
		Renderer:   renderer,
		Exporter:   exporter,
		Jobs:       jm,
		Logger:     zerolog.Nop(),
		Version:    "test",
	}))
	return env
}

func (env *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := env.do(formRequest(http.MethodPost, "/api/login", url.Values{
		"loginId":  {"sa"},
		"password": {"sa123"},
	}), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == env.cfg.Security.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// uploadRoster logs in and makes experts the session's roster.
func (env *testEnv) uploadRoster(t *testing.T, experts ...models.ExpertRecord) *http.Cookie {
	t.Helper()
	cookie := env.login(t)
	req := multipartRequest(t, "/api/workbooks", nil, "file", "roster.csv", []byte(rosterCSV(t, experts...)))
	rec := env.do(req, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return cookie
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, data []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// rosterCSV writes a roster with the first alias of every field as header.
func rosterCSV(t *testing.T, experts ...models.ExpertRecord) string {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(parser.DefaultAliases))
	for _, c := range parser.DefaultAliases {
		header = append(header, c.Aliases[0])
	}
	require.NoError(t, w.Write(header))

	for i := range experts {
		row := make([]string, 0, len(header))
		for _, c := range parser.DefaultAliases {
			row = append(row, experts[i].Get(c.Field))
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.String()
}

func expert(name, invoiceNo string) models.ExpertRecord {
	return models.ExpertRecord{
		SrNo:          "1",
		ExpertName:    name,
		Address:       "12 Hill Road, Pune",
		PAN:           "ABCDE1234F",
		BankDetails:   "State Bank",
		AccountNo:     "12345678",
		IFSC:          "SBIN0000001",
		TotalSales:    "150000",
		Commission:    "15000",
		CommissionPct: "10%",
		InvoiceNumber: invoiceNo,
	}
}

// signaturePNG is a transparent canvas with a dark stroke.
func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 60, 20))
	for x := 10; x < 50; x++ {
		img.SetNRGBA(x, 10, color.NRGBA{A: 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJSON(t *testing.T, r io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}
