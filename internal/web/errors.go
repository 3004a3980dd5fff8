package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status code is derived from the error kind
//  4. Error is mapped via core.MapError to get a user-friendly message
//  5. Technical error is logged with the request ID for correlation
//  6. User message is written as JSON for /api routes, plain text otherwise

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/partlib/internal/core"
	"github.com/JonMunkholm/partlib/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks client mistakes that carry no typed core error.
var errBadRequest = errors.New("invalid request body")

// statusFor maps core error kinds to HTTP status codes.
func statusFor(err error) int {
	var (
		cfgErr    *core.ConfigError
		importErr *core.ImportError
		rangeErr  *core.ColumnRangeError
		lookupErr *core.LookupError
		keyErr    *core.KeyMismatchError
		fileErr   *core.FileError
	)

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, errNoFile),
		errors.Is(err, core.ErrRestoreNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrOperationInProgress):
		return http.StatusConflict
	case errors.As(err, &rangeErr),
		errors.As(err, &cfgErr),
		errors.As(err, &importErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &lookupErr),
		errors.As(err, &keyErr):
		return http.StatusConflict
	case errors.As(err, &fileErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
	} else {
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{ //nolint:errcheck
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
