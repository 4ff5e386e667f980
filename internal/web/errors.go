package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error goes through respondError, which:
//  1. Wraps the error in a core.UserError carrying the user message and code
//  2. Logs the technical error with the request id (server-side only);
//     errors with no specific message are logged at Error so gaps get noticed
//  3. Renders the user message as HTMX fragment, JSON or HTML page
//
// statusFor picks the HTTP status from the error type so handlers only
// decide what went wrong, not how it is reported.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
	"github.com/JonMunkholm/enrollview/internal/tableio"
	"github.com/JonMunkholm/enrollview/internal/web/middleware"
	"github.com/JonMunkholm/enrollview/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errNoFile is returned when a multipart upload has no "file" part.
var errNoFile = errors.New("no file provided")

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		schemaErr     *core.SchemaError
		parseErr      *core.ParseError
		validationErr core.ValidationError
		maxBytesErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tableio.ErrFileTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr):
		if parseErr.Reason == "unsupported file type" {
			return http.StatusUnsupportedMediaType
		}
		return http.StatusBadRequest
	case errors.As(err, &validationErr), errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoDataset):
		return http.StatusConflict
	case errors.Is(err, core.ErrSectionNotFound), errors.Is(err, core.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, middleware.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message with the status
// statusFor derives from it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	logger := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", userMsg.Code,
		"error", userErr.Technical.Error(),
		"user_message", userErr.Display(),
	)
	if status >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		logger.Error("request error")
	} else {
		logger.Warn("request error")
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, status)
	case wantsJSON(r):
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		page := templates.Page("Error", templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code))
		if err := page.Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render error page", "error", err)
		}
	}
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error partial", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
// API routes always get JSON.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
