package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/scheduler"
)

type departmentService interface {
	ListDepartments(ctx context.Context, principal application.Principal) ([]scheduler.Department, error)
	CreateDepartment(ctx context.Context, principal application.Principal, input application.DepartmentInput) (scheduler.Department, error)
	UpdateDepartment(ctx context.Context, principal application.Principal, id int, input application.DepartmentInput) (scheduler.Department, error)
	DeleteDepartment(ctx context.Context, principal application.Principal, id int) error
}

type DepartmentHandler struct {
	service   departmentService
	responder responder
}

func NewDepartmentHandler(service departmentService, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{service: service, responder: newResponder(logger)}
}

func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	departments, err := h.service.ListDepartments(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]departmentDTO, 0, len(departments))
	for _, department := range departments {
		resp = append(resp, departmentDTO{ID: department.ID, Name: department.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req departmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	department, err := h.service.CreateDepartment(r.Context(), principal, application.DepartmentInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, departmentDTO{ID: department.ID, Name: department.Name})
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := resourceID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var req departmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	department, err := h.service.UpdateDepartment(r.Context(), principal, id, application.DepartmentInput{Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, departmentDTO{ID: department.ID, Name: department.Name})
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := resourceID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteDepartment(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type departmentDTO struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}
