package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/inbound/internal/config"
	"github.com/JonMunkholm/inbound/internal/core"
	"github.com/JonMunkholm/inbound/internal/storage"
)

const expectedCSV = "Styles NO,Color,XS,S,M,L,XL,2XL\n" +
	"ST1,BK,,,10,,,\n" +
	"ST2,WH,2,,,,,\n"

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Upload:  config.UploadConfig{MaxFileSize: 1 << 20, Timeout: time.Minute},
		Scanner: config.ScannerConfig{HighlightDelay: 500 * time.Millisecond},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *core.Service) {
	t.Helper()
	svc, err := core.NewService(context.Background(), storage.NewMemoryStore(), core.ServiceConfig{
		Now: func() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return NewServer(svc, cfg), svc
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func scanRequest(barcode string) *http.Request {
	body, _ := json.Marshal(ScanRequest{Barcode: barcode})
	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestUploadAndScan(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, uploadRequest(t, "expected.csv", expectedCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode[UploadResponse](t, rec)
	assert.Equal(t, 2, up.Result.SkuCount)
	assert.Equal(t, 12.0, up.Stats.ExpectedTotal)
	assert.Equal(t, core.UploadNotification, up.Notification)

	rec = do(t, s, scanRequest("ST1/BK/M"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scan := decode[ScanResponse](t, rec)
	assert.True(t, scan.Accepted)
	assert.Equal(t, "ST1-BK-M", scan.Outcome.SKU)
	assert.Equal(t, int64(500), scan.HighlightMS)
	assert.Equal(t, 1, scan.Stats.ActualTotal)
	require.Len(t, scan.Notifications, 1)
	assert.Equal(t, core.LevelSuccess, scan.Notifications[0].Level)

	rec = do(t, s, scanRequest("ST2/WH/XS"))
	scan = decode[ScanResponse](t, rec)
	require.Len(t, scan.Notifications, 2, "sku change warns before success")
	assert.Equal(t, core.LevelWarning, scan.Notifications[0].Level)
}

func TestScan_Rejections(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))

	tests := []struct {
		name    string
		barcode string
		code    string
	}{
		{"empty", "   ", "SCAN001"},
		{"malformed", "ST1-BK-M", "SCAN002"},
		{"unknown sku", "ST9/BK/M", "SCAN003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, scanRequest(tt.barcode))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			resp := decode[ScanResponse](t, rec)
			assert.False(t, resp.Accepted)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			require.Len(t, resp.Notifications, 1)
			assert.Equal(t, core.SoundError, resp.Notifications[0].Sound)
			assert.Equal(t, 0, resp.Stats.ActualTotal)
		})
	}
}

func TestScan_FormValue(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader("barcode=ST1%2FBK%2FM"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[ScanResponse](t, rec).Accepted)
}

func TestUpload_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 1024
	s, _ := newTestServer(t, cfg)

	rec := do(t, s, uploadRequest(t, "expected.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE002", decode[ErrorResponse](t, rec).Code)

	rec = do(t, s, uploadRequest(t, "expected.csv", strings.Repeat("a", 4096)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE003", decode[ErrorResponse](t, rec).Code)
}

func TestScansFilter(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))
	do(t, s, scanRequest("ST1/BK/M"))
	do(t, s, scanRequest("ST2/WH/XS"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/scans", nil))
	assert.Len(t, decode[[]core.ScanEvent](t, rec), 2)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/scans?color=wh", nil))
	events := decode[[]core.ScanEvent](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "ST2-WH-XS", events[0].SKU)
}

func TestExport(t *testing.T) {
	s, svc := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))
	do(t, s, scanRequest("ST1/BK/M"))

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "20240305_")
	assert.NotEmpty(t, rec.Header().Get("X-Export-ID"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(core.ReportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, core.ReportHeaders, rows[0])
	assert.Equal(t, []string{"ST1", "BK", "M", "10", "1", "10.0%", "부족"}, rows[1])

	st := svc.Stats()
	assert.Equal(t, 2, st.TotalSkus, "expected set survives export")
	assert.Equal(t, 0, st.ActualTotal)
	assert.Empty(t, svc.History(core.HistoryFilter{}))
}

func TestResetFlow(t *testing.T) {
	s, svc := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))
	do(t, s, scanRequest("ST1/BK/M"))

	post := func(path string) *httptest.ResponseRecorder {
		return do(t, s, httptest.NewRequest(http.MethodPost, path, nil))
	}

	rec := post("/api/reset/finalize")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "RESET001", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, 1, svc.Stats().ActualTotal, "out-of-order finalize changes nothing")

	assert.Equal(t, core.ResetConfirmRequested, decode[ResetResponse](t, post("/api/reset/request")).Phase)
	assert.Equal(t, core.ResetIdle, decode[ResetResponse](t, post("/api/reset/cancel")).Phase)
	assert.Equal(t, 1, svc.Stats().ActualTotal, "cancel changes nothing")

	post("/api/reset/request")
	assert.Equal(t, core.ResetFinalConfirmRequested, decode[ResetResponse](t, post("/api/reset/confirm")).Phase)

	rec = post("/api/reset/finalize")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ResetResponse](t, rec)
	assert.Equal(t, core.ResetIdle, resp.Phase)
	require.NotNil(t, resp.Notification)
	assert.Equal(t, core.ResetNotification.Message, resp.Notification.Message)
	assert.Equal(t, 0, svc.Stats().ActualTotal)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/reset", nil))
	assert.Equal(t, core.ResetIdle, decode[ResetResponse](t, rec).Phase)
}

func TestAPIKeyGuardsMutations(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"station-1"}}
	s, _ := newTestServer(t, cfg)

	rec := do(t, s, scanRequest("ST1/BK/M"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")

	req := scanRequest("ST1/BK/M")
	req.Header.Set("X-API-Key", "station-1")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "authorized, rejected by the empty ledger")
}

func TestDashboard(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	do(t, s, uploadRequest(t, "expected.csv", expectedCSV))
	do(t, s, scanRequest("ST1/BK/M"))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "8.3%")
	assert.Contains(t, body, `class="highlight"`)
	assert.Contains(t, body, "ST1-BK-M")
	assert.Contains(t, body, "HIGHLIGHT_MS=500")
}

func TestStats(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[StatsResponse](t, rec)
	assert.Equal(t, 0, st.TotalSkus)
	assert.Equal(t, "0.0%", st.ProgressText)
}
