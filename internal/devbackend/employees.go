package devbackend

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/service-order-scheduler/internal/persistence"
)

const defaultPageLimit = 10

func (s *Server) departmentNames(ctx context.Context) (map[int]string, error) {
	departments, err := s.departments.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(departments))
	for _, department := range departments {
		names[department.ID] = department.Name
	}
	return names, nil
}

func (s *Server) listAllEmployees(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "list_all_employees")
	employees, _, err := s.employees.ListEmployees(r.Context(), persistence.EmployeeFilter{})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	names, err := s.departmentNames(r.Context())
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, employee := range employees {
		out = append(out, toEmployeeResponse(employee, names))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listEmployeePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := positiveInt(query.Get("page"), 1)
	limit := positiveInt(query.Get("limit"), defaultPageLimit)
	search := strings.TrimSpace(query.Get("search"))
	logger := s.log(r, "list_employee_page", "page", page, "limit", limit)

	employees, total, err := s.employees.ListEmployees(r.Context(), persistence.EmployeeFilter{
		Search: search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	names, err := s.departmentNames(r.Context())
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	resp := employeePage{Data: make([]employeeResponse, 0, len(employees)), Total: total, Page: page, Limit: limit}
	for _, employee := range employees {
		resp.Data = append(resp.Data, toEmployeeResponse(employee, names))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getEmployeeByUsername(w http.ResponseWriter, r *http.Request, username string) {
	logger := s.log(r, "get_employee_by_username", "username", username)
	employee, err := s.employees.GetEmployeeByUsername(r.Context(), username)
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	s.writeEmployee(w, r, logger, http.StatusOK, employee)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "create_employee")

	var req employeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, problems := req.scheduleText()
	if strings.TrimSpace(req.Password) == "" {
		if problems == nil {
			problems = map[string]string{}
		}
		problems["password"] = "is required"
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: problems})
		return
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	created, err := s.employees.CreateEmployee(r.Context(), persistence.Employee{
		Name:          req.Name,
		Username:      req.Username,
		PasswordHash:  hash,
		DepartmentIDs: req.Departments,
		WorkSchedule:  schedule,
	})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "employee created", "employee_id", created.ID)
	s.writeEmployee(w, r, logger, http.StatusCreated, created)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "update_employee", "employee_id", id)

	var req employeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, problems := req.scheduleText()
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: problems})
		return
	}

	hash := ""
	if strings.TrimSpace(req.Password) != "" {
		var err error
		if hash, err = s.hash(req.Password); err != nil {
			writeStoreError(w, logger, r, err)
			return
		}
	}
	updated, err := s.employees.UpdateEmployee(r.Context(), persistence.Employee{
		ID:            id,
		Name:          req.Name,
		Username:      req.Username,
		PasswordHash:  hash,
		DepartmentIDs: req.Departments,
		WorkSchedule:  schedule,
	})
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "employee updated")
	s.writeEmployee(w, r, logger, http.StatusOK, updated)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "delete_employee", "employee_id", id)
	if err := s.employees.DeleteEmployee(r.Context(), id); err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "employee deleted")
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) writeEmployee(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, employee persistence.Employee) {
	names, err := s.departmentNames(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to resolve department names", "error", err)
		names = map[int]string{}
	}
	writeJSON(w, status, toEmployeeResponse(employee, names))
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
