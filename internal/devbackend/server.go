package devbackend

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/service-order-scheduler/internal/logging"
	"github.com/example/service-order-scheduler/internal/password"
	"github.com/example/service-order-scheduler/internal/persistence"
)

// Options wires the server to its repositories.
type Options struct {
	Employees   persistence.EmployeeRepository
	Departments persistence.DepartmentRepository
	Orders      persistence.ServiceOrderRepository
	// HashPassword defaults to argon2id with password.DefaultParams.
	HashPassword func(secret string) (string, error)
	// VerifyPassword defaults to password.Verify.
	VerifyPassword func(hash, secret string) error
	Logger         *slog.Logger
}

// Server implements the backend API.
type Server struct {
	employees   persistence.EmployeeRepository
	departments persistence.DepartmentRepository
	orders      persistence.ServiceOrderRepository
	hash        func(string) (string, error)
	verify      func(string, string) error
	logger      *slog.Logger
}

// New constructs a Server.
func New(opts Options) *Server {
	hash := opts.HashPassword
	if hash == nil {
		hash = func(secret string) (string, error) { return password.Hash(secret, password.DefaultParams) }
	}
	verify := opts.VerifyPassword
	if verify == nil {
		verify = password.Verify
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		employees:   opts.Employees,
		departments: opts.Departments,
		orders:      opts.Orders,
		hash:        hash,
		verify:      verify,
		logger:      logger,
	}
}

// Handler returns the routed API with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/employee/all", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		s.listAllEmployees(w, r)
	})
	mux.HandleFunc("/api/employee", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listEmployeePage(w, r)
		case http.MethodPost:
			s.createEmployee(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/api/employee/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "/api/employee/")
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodPut:
			s.updateEmployee(w, r, id)
		case http.MethodDelete:
			s.deleteEmployee(w, r, id)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	})
	mux.HandleFunc("/api/employees/", func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/employees/"))
		if username == "" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		s.getEmployeeByUsername(w, r, username)
	})

	mux.HandleFunc("/api/departments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listDepartments(w, r)
		case http.MethodPost:
			s.createDepartment(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/api/departments/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "/api/departments/")
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodPut:
			s.updateDepartment(w, r, id)
		case http.MethodDelete:
			s.deleteDepartment(w, r, id)
		default:
			methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		}
	})

	mux.HandleFunc("/api/service-orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listServiceOrders(w, r)
		case http.MethodPost:
			s.createServiceOrder(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/api/service-orders/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "/api/service-orders/")
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.getServiceOrder(w, r, id)
		case http.MethodPut:
			s.updateServiceOrder(w, r, id)
		case http.MethodDelete:
			s.deleteServiceOrder(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	})

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.login(w, r)
	})

	return s.requestLogger(mux)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With(
			"component", "devbackend",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := logging.ContextWithLogger(r.Context(), logger)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.DebugContext(ctx, "request completed", "duration", time.Since(start))
	})
}

func (s *Server) log(r *http.Request, operation string, attrs ...any) *slog.Logger {
	return logging.FromContextOr(r.Context(), s.logger).With(append([]any{"operation", operation}, attrs...)...)
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (int, bool) {
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if raw == "" {
		http.NotFound(w, r)
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}
