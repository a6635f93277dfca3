package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Board       *BoardHandler
	Employees   *EmployeeHandler
	Departments *DepartmentHandler
	Orders      *ServiceOrderHandler
	// Session guards every route except login, health and metrics.
	Session func(http.Handler) http.Handler
	// Metrics serves GET /metrics when set.
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(fn http.HandlerFunc) http.Handler {
		if cfg.Session == nil {
			return fn
		}
		return cfg.Session(fn)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions/admin", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateAdminSession(w, r)
		})
		mux.HandleFunc("/sessions/collaborator", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateCollaboratorSession(w, r)
		})
		currentPrincipal := protect(cfg.Auth.CurrentPrincipal)
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				currentPrincipal.ServeHTTP(w, r)
			case http.MethodDelete:
				cfg.Auth.DeleteCurrentSession(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
	}

	if cfg.Board != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Health(w, r)
		})
		mux.Handle("/board/week", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Week(w, r)
		}))
		mux.Handle("/board/week.xlsx", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.ExportWeek(w, r)
		}))
		mux.Handle("/board/days/", protect(func(w http.ResponseWriter, r *http.Request) {
			day := strings.TrimPrefix(r.URL.Path, "/board/days/")
			if day == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Day(w, r.WithContext(ContextWithResourceID(r.Context(), day)))
		}))
		mux.Handle("/availability", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.Availability(w, r)
		}))
		mux.Handle("/me/service-orders", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Board.MyOrders(w, r)
		}))
		mux.Handle("/snapshot/refresh", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Board.Refresh(w, r)
		}))
	}

	if cfg.Employees != nil {
		mux.Handle("/employees", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.List(w, r)
			case http.MethodPost:
				cfg.Employees.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/employees/", protect(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/employees/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Employees.Update(w, r)
			case http.MethodDelete:
				cfg.Employees.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Departments != nil {
		mux.Handle("/departments", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Departments.List(w, r)
			case http.MethodPost:
				cfg.Departments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/departments/", protect(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/departments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Departments.Update(w, r)
			case http.MethodDelete:
				cfg.Departments.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Orders != nil {
		mux.Handle("/service-orders", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Orders.List(w, r)
			case http.MethodPost:
				cfg.Orders.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/service-orders/", protect(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/service-orders/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				if cfg.Board == nil {
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
					return
				}
				cfg.Board.Order(w, r)
			case http.MethodPut:
				cfg.Orders.Update(w, r)
			case http.MethodDelete:
				cfg.Orders.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// RouteLabel collapses path identifiers so metrics labels stay bounded.
func RouteLabel(r *http.Request) string {
	path := r.URL.Path
	for _, prefix := range []string{"/employees/", "/departments/", "/service-orders/"} {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + "{id}"
		}
	}
	if strings.HasPrefix(path, "/board/days/") {
		return "/board/days/{day}"
	}
	switch path {
	case "/sessions/admin", "/sessions/collaborator", "/sessions/current",
		"/board/week", "/board/week.xlsx", "/availability", "/me/service-orders",
		"/employees", "/departments", "/service-orders", "/snapshot/refresh",
		"/healthz", "/metrics":
		return path
	}
	return "other"
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
