package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"pairchat/errors"
)

// Envelope is the uniform response shape of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// respondError maps tagged error kinds to HTTP statuses. Untagged errors
// become 500 with a generic message; details stay in the log.
func respondError(log *slog.Logger, w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	if kind == errors.KindInternal || kind == errors.KindUpstream {
		log.Error("Request failed", "error", err)
	}
	respond(w, httpStatus(kind), errors.MessageOf(err), nil)
}

func httpStatus(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindUnauthorized:
		return http.StatusUnauthorized
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
