package devbackend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/service-order-scheduler/internal/persistence"
)

var errInvalidBody = errors.New("invalid request body")

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeStoreError maps repository sentinels onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, persistence.ErrDuplicate):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		status, message = http.StatusUnprocessableEntity, "unknown reference"
	case errors.Is(err, persistence.ErrConstraintViolation):
		status, message = http.StatusUnprocessableEntity, "missing required fields"
	}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "error", err)
	} else {
		logger.InfoContext(r.Context(), "request rejected", "status", status, "error", err)
	}
	writeMessage(w, status, message)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errInvalidBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}
