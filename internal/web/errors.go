package web

// errors.go turns service errors into HTTP responses.
//
// Every error is logged with its technical detail and request id, and the
// client receives a rest.ErrorResponse carrying the user message, the
// suggested action and a support code from core.MapError.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/filter"
	"github.com/JonMunkholm/tabledef/internal/logging"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/JonMunkholm/tabledef/internal/store"
)

var errInvalidBody = errors.New("invalid request body")

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var verrs core.ValidationErrors
	var verr core.ValidationError

	switch {
	case errors.Is(err, core.ErrUnknownTable), errors.Is(err, core.ErrNoQuery):
		return http.StatusNotFound
	case errors.Is(err, core.ErrReadOnly), errors.Is(err, store.ErrRowNotFound):
		return http.StatusConflict
	case errors.As(err, &verrs), errors.As(err, &verr),
		errors.Is(err, filter.ErrInvalidCriterion), errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyUpdates):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing JSON form.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request rejected", args...)
	}

	body := rest.ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error = verrs.Error()
	}
	writeJSONStatus(w, status, body)
}

// writeJSON encodes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent.
		slog.Error("json encode error", "error", err)
	}
}
