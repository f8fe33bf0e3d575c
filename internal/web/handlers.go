package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/inbound/internal/core"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ScanRequest is the body of POST /api/scan. A form field "barcode" is
// accepted as well.
type ScanRequest struct {
	Barcode string `json:"barcode"`
}

// ScanResponse reports an accepted or rejected scan.
type ScanResponse struct {
	Accepted      bool                `json:"accepted"`
	Outcome       *core.ScanOutcome   `json:"outcome,omitempty"`
	Error         *ErrorResponse      `json:"error,omitempty"`
	Notifications []core.Notification `json:"notifications"`
	Stats         core.Stats          `json:"stats"`
	HighlightMS   int64               `json:"highlight_ms"`
}

// UploadResponse reports a completed upload.
type UploadResponse struct {
	Result       core.UploadResult `json:"result"`
	Notification core.Notification `json:"notification"`
	Stats        core.Stats        `json:"stats"`
}

// ResetResponse reports the reset flow phase after a step.
type ResetResponse struct {
	Phase        core.ResetPhase    `json:"phase"`
	Notification *core.Notification `json:"notification,omitempty"`
}

// StatsResponse carries the dashboard figures.
type StatsResponse struct {
	core.Stats
	ProgressText string `json:"progressText"`
	LastScanned  string `json:"lastScanned,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"session_id": s.service.SessionID(),
	})
}

func (s *Server) statsResponse() StatsResponse {
	st := s.service.Stats()
	return StatsResponse{
		Stats:        st,
		ProgressText: core.FormatPercent(st.OverallProgress),
		LastScanned:  s.service.LastScanned(),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statsResponse())
}

func (s *Server) handleSkus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.State().SkuData)
}

// handleScans returns the scan history, filtered by ?style=&color=&size=.
func (s *Server) handleScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := s.service.History(core.HistoryFilter{
		Style: strings.TrimSpace(q.Get("style")),
		Color: strings.TrimSpace(q.Get("color")),
		Size:  strings.TrimSpace(q.Get("size")),
	})
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Report())
}

// handleUpload replaces the expected set with an uploaded .xlsx or .csv file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, r, fmt.Errorf("file too large: limit %d bytes", maxSize), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r, s.cfg.Scanner.Station)
	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	res, err := s.service.Upload(ctx, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Result:       res,
		Notification: core.UploadNotification,
		Stats:        s.service.Stats(),
	})
}

// handleScan applies one barcode. Rejections are reported with 422 and the
// error notification so the client can play the error cue.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, fmt.Errorf("%w: decode scan request: %v", core.ErrInvalidInput, err), http.StatusBadRequest)
			return
		}
	} else {
		req.Barcode = r.FormValue("barcode")
	}

	ctx := WithRequestMetadata(r.Context(), r, s.cfg.Scanner.Station)
	out, err := s.service.Scan(ctx, req.Barcode)

	resp := ScanResponse{
		Notifications: core.ScanNotifications(out, err),
		HighlightMS:   s.cfg.Scanner.HighlightDelay.Milliseconds(),
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		if !core.IsRejection(err) {
			s.respondError(w, r, err, status)
			return
		}
		e := newErrorResponse(core.MapError(err))
		resp.Error = &e
	} else {
		resp.Accepted = true
		resp.Outcome = &out
	}
	resp.Stats = s.service.Stats()

	writeJSON(w, status, resp)
}

// handleExport streams the report workbook and finalizes the session. The
// workbook is rendered to memory first so a failed render changes nothing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	ctx := WithRequestMetadata(r.Context(), r, s.cfg.Scanner.Station)

	res, err := s.service.Export(ctx, &buf)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", contentDisposition(res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-ID", res.ExportID)
	w.Header().Set("X-Notification", url.PathEscape(core.ExportNotification.Message))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// contentDisposition builds an attachment header that survives non-ASCII
// file names.
func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="export.xlsx"; filename*=UTF-8''%s`, url.PathEscape(name))
}

func (s *Server) handleResetPhase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ResetResponse{Phase: s.service.ResetPhase()})
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	phase, err := s.service.RequestReset()
	s.respondReset(w, r, phase, err, nil)
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	phase, err := s.service.ConfirmReset()
	s.respondReset(w, r, phase, err, nil)
}

func (s *Server) handleResetFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r, s.cfg.Scanner.Station)
	phase, err := s.service.FinalizeReset(ctx)
	n := core.ResetNotification
	s.respondReset(w, r, phase, err, &n)
}

func (s *Server) handleResetCancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ResetResponse{Phase: s.service.CancelReset()})
}

func (s *Server) respondReset(w http.ResponseWriter, r *http.Request, phase core.ResetPhase, err error, n *core.Notification) {
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ResetResponse{Phase: phase, Notification: n})
}
