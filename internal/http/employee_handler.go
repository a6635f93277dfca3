package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/workschedule"
)

type employeeService interface {
	ListEmployees(ctx context.Context, principal application.Principal) ([]scheduler.Employee, error)
	CreateEmployee(ctx context.Context, principal application.Principal, input application.EmployeeInput) (scheduler.Employee, error)
	UpdateEmployee(ctx context.Context, principal application.Principal, id int, input application.EmployeeInput) (scheduler.Employee, error)
	DeleteEmployee(ctx context.Context, principal application.Principal, id int) error
}

type EmployeeHandler struct {
	service   employeeService
	responder responder
	logger    *slog.Logger
}

func NewEmployeeHandler(service employeeService, logger *slog.Logger) *EmployeeHandler {
	base := defaultLogger(logger)
	return &EmployeeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	employees, err := h.service.ListEmployees(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]employeeDTO, 0, len(employees))
	for _, employee := range employees {
		resp = append(resp, newEmployeeDTO(employee))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, ok := h.decode(w, r, "Create")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	employee, err := h.service.CreateEmployee(r.Context(), principal, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newEmployeeDTO(employee))
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := resourceID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	input, ok := h.decode(w, r, "Update")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	employee, err := h.service.UpdateEmployee(r.Context(), principal, id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newEmployeeDTO(employee))
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeleteEmployee(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EmployeeHandler) decode(w http.ResponseWriter, r *http.Request, operation string) (application.EmployeeInput, bool) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlerLogger(r.Context(), h.logger, "EmployeeHandler", operation, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode employee request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return application.EmployeeInput{}, false
	}

	schedule, ok := workschedule.Decode([]byte(req.WorkSchedule))
	if !ok {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: localizedStatusMessage(http.StatusUnprocessableEntity),
			Errors:  map[string]string{"work_schedule": workschedule.InvalidFormatLabel},
		})
		return application.EmployeeInput{}, false
	}

	return application.EmployeeInput{
		Name:          req.Name,
		Username:      req.Username,
		Password:      req.Password,
		DepartmentIDs: req.Departments,
		WorkSchedule:  schedule,
	}, true
}

// employeeRequest accepts work_schedule as an object or as its JSON text.
type employeeRequest struct {
	Name         string          `json:"name"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	Departments  []int           `json:"departments"`
	WorkSchedule json.RawMessage `json:"work_schedule"`
}

type employeeDTO struct {
	ID              int                   `json:"id"`
	Name            string                `json:"name"`
	Username        string                `json:"username"`
	Departments     []string              `json:"departments"`
	WorkSchedule    workschedule.Schedule `json:"work_schedule"`
	ScheduleDisplay string                `json:"schedule_display"`
	ScheduleInvalid bool                  `json:"schedule_invalid,omitempty"`
}

func newEmployeeDTO(e scheduler.Employee) employeeDTO {
	schedule := e.WorkSchedule
	if schedule == nil {
		schedule = workschedule.Schedule{}
	}
	display := workschedule.Display(schedule)
	if e.ScheduleInvalid {
		display = workschedule.InvalidFormatLabel
	}
	return employeeDTO{
		ID:              e.ID,
		Name:            e.Name,
		Username:        e.Username,
		Departments:     nonNilStrings(e.Departments),
		WorkSchedule:    schedule,
		ScheduleDisplay: display,
		ScheduleInvalid: e.ScheduleInvalid,
	}
}
