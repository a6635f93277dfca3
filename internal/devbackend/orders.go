package devbackend

import (
	"net/http"

	"github.com/example/service-order-scheduler/internal/persistence"
)

func (s *Server) listServiceOrders(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "list_service_orders")
	orders, err := s.orders.ListServiceOrders(r.Context())
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	names, err := s.departmentNames(r.Context())
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	out := make([]serviceOrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toServiceOrderResponse(order, names))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getServiceOrder(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "get_service_order", "service_order_id", id)
	order, err := s.orders.GetServiceOrder(r.Context(), id)
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	s.writeServiceOrder(w, r, http.StatusOK, order)
}

func (s *Server) createServiceOrder(w http.ResponseWriter, r *http.Request) {
	logger := s.log(r, "create_service_order")

	var req serviceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: problems})
		return
	}

	created, err := s.orders.CreateServiceOrder(r.Context(), req.toPersistence(0))
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "service order created", "service_order_id", created.ID)
	s.writeServiceOrder(w, r, http.StatusCreated, created)
}

func (s *Server) updateServiceOrder(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "update_service_order", "service_order_id", id)

	var req serviceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if problems := req.validate(); len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: problems})
		return
	}

	updated, err := s.orders.UpdateServiceOrder(r.Context(), req.toPersistence(id))
	if err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "service order updated")
	s.writeServiceOrder(w, r, http.StatusOK, updated)
}

func (s *Server) deleteServiceOrder(w http.ResponseWriter, r *http.Request, id int) {
	logger := s.log(r, "delete_service_order", "service_order_id", id)
	if err := s.orders.DeleteServiceOrder(r.Context(), id); err != nil {
		writeStoreError(w, logger, r, err)
		return
	}
	logger.InfoContext(r.Context(), "service order deleted")
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) writeServiceOrder(w http.ResponseWriter, r *http.Request, status int, order persistence.ServiceOrder) {
	names, err := s.departmentNames(r.Context())
	if err != nil {
		s.log(r, "resolve_department_names").ErrorContext(r.Context(), "failed to resolve department names", "error", err)
		names = map[int]string{}
	}
	writeJSON(w, status, toServiceOrderResponse(order, names))
}
