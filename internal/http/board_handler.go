package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/recurrence"
	"github.com/example/service-order-scheduler/internal/report"
	"github.com/example/service-order-scheduler/internal/scheduler"
)

type boardService interface {
	Week(ctx context.Context, params application.WeekParams) (application.WeekBoard, error)
	Day(ctx context.Context, params application.DayParams) (application.DayColumn, error)
	Availability(ctx context.Context, principal application.Principal) ([]application.AvailabilityRow, error)
	EmployeeOrders(ctx context.Context, principal application.Principal, employeeID int) ([]application.OrderCard, error)
	Order(ctx context.Context, principal application.Principal, id int) (application.OrderCard, error)
	Refresh(ctx context.Context, principal application.Principal) (application.Freshness, error)
	Freshness() application.Freshness
}

// ReportObserver records how long workbook exports take.
type ReportObserver interface {
	ObserveReport(elapsed time.Duration)
}

type BoardHandler struct {
	service   boardService
	reports   ReportObserver
	responder responder
	logger    *slog.Logger
}

func NewBoardHandler(service boardService, reports ReportObserver, logger *slog.Logger) *BoardHandler {
	base := defaultLogger(logger)
	return &BoardHandler{service: service, reports: reports, responder: newResponder(base), logger: base}
}

func (h *BoardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "BoardHandler", operation, attrs...)
}

// Week handles GET /board/week.
func (h *BoardHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := weekParamsFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	params.Principal, _ = PrincipalFromContext(r.Context())

	board, err := h.service.Week(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newWeekBoardDTO(board))
}

// Day handles GET /board/days/{weekday}.
func (h *BoardHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw, _ := ResourceIDFromContext(r.Context())
	day, ok := parseWeekday(raw)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekday)
		return
	}
	filter, err := departmentFilterFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	column, err := h.service.Day(r.Context(), application.DayParams{Principal: principal, Day: day, Filter: filter})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newDayDTO(column))
}

// ExportWeek handles GET /board/week.xlsx. Administrators also get the availability sheet.
func (h *BoardHandler) ExportWeek(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := weekParamsFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	params.Principal, _ = PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ExportWeek", "principal_id", params.Principal.UserID)

	start := time.Now()
	board, err := h.service.Week(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var availability []application.AvailabilityRow
	if params.Principal.IsAdmin() {
		if availability, err = h.service.Availability(r.Context(), params.Principal); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	buf, err := report.WeekWorkbook(board, availability)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to build workbook", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
		return
	}
	if h.reports != nil {
		h.reports.ObserveReport(time.Since(start))
	}

	filename := "quadro-" + board.Reference.Format(dateLayout) + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "workbook exported", "filename", filename)
}

// Availability handles GET /availability.
func (h *BoardHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	rows, err := h.service.Availability(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newAvailabilityRowDTOs(rows))
}

// MyOrders handles GET /me/service-orders. Administrators may pass employee_id.
func (h *BoardHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("employee_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
			return
		}
		employeeID = id
	}

	principal, _ := PrincipalFromContext(r.Context())
	cards, err := h.service.EmployeeOrders(r.Context(), principal, employeeID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newOrderCardDTOs(cards))
}

// Order handles GET /service-orders/{id}.
func (h *BoardHandler) Order(w http.ResponseWriter, r *http.Request) {
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
	card, err := h.service.Order(r.Context(), principal, id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newOrderCardDTO(card))
}

// Refresh handles POST /snapshot/refresh.
func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	freshness, err := h.service.Refresh(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "Refresh", "principal_id", principal.UserID).InfoContext(r.Context(), "snapshot refreshed on request")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newFreshnessDTO(freshness))
}

// Health handles GET /healthz. It answers 503 until the first snapshot is loaded.
func (h *BoardHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	freshness := h.service.Freshness()
	status := http.StatusOK
	if !freshness.Loaded {
		status = http.StatusServiceUnavailable
	}
	h.responder.writeJSON(r.Context(), w, status, newFreshnessDTO(freshness))
}

func weekParamsFromQuery(query url.Values) (application.WeekParams, error) {
	var params application.WeekParams

	filter, err := departmentFilterFromQuery(query)
	if err != nil {
		return params, err
	}
	params.Filter = filter

	if raw := strings.TrimSpace(query.Get("reference")); raw != "" {
		reference, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return params, errInvalidReference
		}
		params.Reference = reference
	}
	return params, nil
}

func departmentFilterFromQuery(query url.Values) (scheduler.DepartmentFilter, error) {
	raw := strings.TrimSpace(query.Get("department"))
	if raw == "" || raw == "all" {
		return scheduler.AnyDepartment, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return scheduler.AnyDepartment, errInvalidDepartment
	}
	return scheduler.OnlyDepartment(id), nil
}

// parseWeekday accepts the numeric weekday or its key (dom, seg, ...).
func parseWeekday(raw string) (recurrence.Weekday, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		day := recurrence.Weekday(n)
		return day, day.Valid()
	}
	return recurrence.ParseKey(raw)
}

func resourceID(r *http.Request) (int, bool) {
	raw, ok := ResourceIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
