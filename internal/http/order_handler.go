package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/service-order-scheduler/internal/application"
)

type serviceOrderService interface {
	ListServiceOrders(ctx context.Context, principal application.Principal) ([]application.OrderCard, error)
	CreateServiceOrder(ctx context.Context, principal application.Principal, input application.ServiceOrderInput) (application.OrderCard, error)
	UpdateServiceOrder(ctx context.Context, principal application.Principal, id int, input application.ServiceOrderInput) (application.OrderCard, error)
	DeleteServiceOrder(ctx context.Context, principal application.Principal, id int) error
}

type ServiceOrderHandler struct {
	service   serviceOrderService
	responder responder
}

func NewServiceOrderHandler(service serviceOrderService, logger *slog.Logger) *ServiceOrderHandler {
	return &ServiceOrderHandler{service: service, responder: newResponder(logger)}
}

func (h *ServiceOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	cards, err := h.service.ListServiceOrders(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newOrderCardDTOs(cards))
}

func (h *ServiceOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req serviceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	card, err := h.service.CreateServiceOrder(r.Context(), principal, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newOrderCardDTO(card))
}

func (h *ServiceOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := resourceID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	var req serviceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	card, err := h.service.UpdateServiceOrder(r.Context(), principal, id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newOrderCardDTO(card))
}

func (h *ServiceOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeleteServiceOrder(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type serviceOrderRequest struct {
	OSNumber    string              `json:"os_number"`
	ServiceDays []int               `json:"service_days"`
	Departments []assignmentRequest `json:"departments"`
}

type assignmentRequest struct {
	DepartmentID    int    `json:"department_id"`
	ExecutionStart  string `json:"execution_start"`
	ExecutionEnd    string `json:"execution_end"`
	CollaboratorIDs []int  `json:"collaborator_ids"`
}

func (r serviceOrderRequest) toInput() application.ServiceOrderInput {
	input := application.ServiceOrderInput{
		OSNumber:    r.OSNumber,
		ServiceDays: r.ServiceDays,
		Departments: make([]application.AssignmentInput, 0, len(r.Departments)),
	}
	for _, d := range r.Departments {
		input.Departments = append(input.Departments, application.AssignmentInput{
			DepartmentID:    d.DepartmentID,
			ExecutionStart:  d.ExecutionStart,
			ExecutionEnd:    d.ExecutionEnd,
			CollaboratorIDs: d.CollaboratorIDs,
		})
	}
	return input
}
