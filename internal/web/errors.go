package web

// errors.go provides unified error response handling for the web layer.
//
// Technical errors are logged with the request ID; clients receive the
// mapped core.UserMessage, as JSON for /api routes and plain text otherwise.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/inbound/internal/core"
	"github.com/JonMunkholm/inbound/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func newErrorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case core.IsRejection(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrParseFailure):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidResetTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Log(r.Context(), logLevelFor(err, statusCode), "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, newErrorResponse(userMsg))
		return
	}
	http.Error(w, core.FormatUserError(err), statusCode)
}

// logLevelFor returns error for server failures and unmapped errors, warn
// otherwise.
func logLevelFor(err error, statusCode int) slog.Level {
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
