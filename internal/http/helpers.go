package http

import (
	"errors"
	"net/http"
	"strings"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
	"ledgerbook/internal/middleware/trace"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Server errors are logged and
// their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	logger := log.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err)
		msg = "internal server error"
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err)
	}
	ErrorResponse(status, msg, trace.GetRequestID(r.Context())).Write(w)
}

// owner reads the caller identity from the configured header.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := sanitizeInput(r.Header.Get(s.ownerHeader))
	if owner == "" {
		ErrorResponse(http.StatusUnauthorized, "missing "+s.ownerHeader+" header", trace.GetRequestID(r.Context())).Write(w)
		return "", false
	}
	return owner, true
}
