package devbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/service-order-scheduler/internal/persistence"
)

// login answers 204 when the credentials match and 401 otherwise, without telling
// an unknown username apart from a wrong password.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	username := strings.TrimSpace(req.Username)
	logger := s.log(r, "login", "username", username)

	if username == "" || req.Password == "" {
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	employee, err := s.employees.GetEmployeeByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			logger.InfoContext(r.Context(), "login rejected", "reason", "unknown_username")
			writeMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeStoreError(w, logger, r, err)
		return
	}
	if err := s.verify(employee.PasswordHash, req.Password); err != nil {
		logger.InfoContext(r.Context(), "login rejected", "reason", "password_mismatch")
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	logger.InfoContext(r.Context(), "login accepted", "employee_id", employee.ID)
	writeJSON(w, http.StatusNoContent, nil)
}
