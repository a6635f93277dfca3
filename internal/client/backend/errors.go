package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("backend: not found")
	// ErrConflict matches 409 responses.
	ErrConflict = errors.New("backend: conflict")
	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrBadRequest matches 400 and 422 responses.
	ErrBadRequest = errors.New("backend: bad request")
	// ErrEmptyResponse is returned when a write succeeded without echoing the entity.
	ErrEmptyResponse = errors.New("backend: response carried no entity")
)

// StatusError describes a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is maps the status code onto the package sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}
