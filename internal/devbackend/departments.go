package devbackend

import (
	"net/http"
	"strings"

	"github.com/example/service-order-scheduler/internal/persistence"
)

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "list_departments")
	departments, err := s.departments.ListDepartments(r.Context())
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	out := make([]departmentResponse, 0, len(departments))
	for _, department := range departments {
		out = append(out, toDepartmentResponse(department))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "create_department")

	var req departmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: map[string]string{"name": "is required"}})
		return
	}

	created, err := s.departments.CreateDepartment(r.Context(), persistence.Department{Name: req.Name})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "department created", "department_id", created.ID)
	writeJSON(w, http.StatusCreated, toDepartmentResponse(created))
}

func (s *Server) updateDepartment(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "update_department", "department_id", id)

	var req departmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: map[string]string{"name": "is required"}})
		return
	}

	updated, err := s.departments.UpdateDepartment(r.Context(), persistence.Department{ID: id, Name: req.Name})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "department updated")
	writeJSON(w, http.StatusOK, toDepartmentResponse(updated))
}

func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "delete_department", "department_id", id)
	if err := s.departments.DeleteDepartment(r.Context(), id); err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "department deleted")
	writeJSON(w, http.StatusNoContent, nil)
}
