package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/client/backend"
	"github.com/example/service-order-scheduler/internal/config"
	httptransport "github.com/example/service-order-scheduler/internal/http"
	"github.com/example/service-order-scheduler/internal/logging"
	"github.com/example/service-order-scheduler/internal/metrics"
	"github.com/example/service-order-scheduler/internal/persistence"
	"github.com/example/service-order-scheduler/internal/persistence/sqlite"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Env, os.Stdout)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	instruments := metrics.New(reg)

	sessionStorage, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SessionDSN), logger)
	if err != nil {
		logger.Error("failed to open session storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := sessionStorage.Close(); cerr != nil {
			logger.Error("failed to close session storage", "error", cerr)
		}
	}()

	client := backend.New(cfg.BackendBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithObserver(instruments),
		backend.WithLogger(logger),
	)
	gateway := newBackendGateway(client)

	snapshots := store.New()
	refresher := store.NewRefresher(gateway, snapshots, time.Now, instruments, logger)
	if err := refresher.Refresh(ctx); err != nil {
		// The board answers with an empty snapshot until a refresh succeeds.
		logger.Warn("initial snapshot refresh failed", "error", err, "backend", client.BaseURL())
	}
	go refresher.Run(ctx, cfg.RefreshInterval)

	authService := application.NewAuthServiceWithLogger(
		application.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		gateway,
		newSessionRepositoryAdapter(sqlite.NewSessionRepository(sessionStorage)),
		nil,
		uuid.NewString,
		time.Now,
		cfg.SessionTTL,
		logger,
	)
	boardService := application.NewBoardServiceWithLogger(snapshots, refresher, time.Now, logger)
	employeeService := application.NewEmployeeServiceWithLogger(gateway, snapshots, refresher, logger)
	departmentService := application.NewDepartmentServiceWithLogger(gateway, snapshots, refresher, logger)
	orderService := application.NewServiceOrderServiceWithLogger(gateway, snapshots, refresher, time.Now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Board:       httptransport.NewBoardHandler(boardService, instruments, logger),
		Employees:   httptransport.NewEmployeeHandler(employeeService, logger),
		Departments: httptransport.NewDepartmentHandler(departmentService, logger),
		Orders:      httptransport.NewServiceOrderHandler(orderService, logger),
		Session:     httptransport.RequireSession(authService, logger),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			instruments.Middleware(httptransport.RouteLabel),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr, "backend", client.BaseURL())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// backendAPI is the subset of the backend client used by the gateway.
type backendAPI interface {
	ListEmployees(ctx context.Context) ([]scheduler.Employee, error)
	ListDepartments(ctx context.Context) ([]scheduler.Department, error)
	ListServiceOrders(ctx context.Context) ([]scheduler.ServiceOrder, error)
	GetEmployeeByUsername(ctx context.Context, username string) (scheduler.Employee, error)
	Login(ctx context.Context, username, password string) error
	CreateEmployee(ctx context.Context, input backend.EmployeeInput) (scheduler.Employee, error)
	UpdateEmployee(ctx context.Context, id int, input backend.EmployeeInput) (scheduler.Employee, error)
	DeleteEmployee(ctx context.Context, id int) error
	CreateDepartment(ctx context.Context, input backend.DepartmentInput) (scheduler.Department, error)
	UpdateDepartment(ctx context.Context, id int, input backend.DepartmentInput) (scheduler.Department, error)
	DeleteDepartment(ctx context.Context, id int) error
	CreateServiceOrder(ctx context.Context, input backend.ServiceOrderInput) (scheduler.ServiceOrder, error)
	UpdateServiceOrder(ctx context.Context, id int, input backend.ServiceOrderInput) (scheduler.ServiceOrder, error)
	DeleteServiceOrder(ctx context.Context, id int) error
}

// backendGateway adapts the backend client to the application interfaces: it converts
// write inputs to wire payloads and backend errors to application errors.
type backendGateway struct {
	api backendAPI
}

func newBackendGateway(api backendAPI) *backendGateway {
	return &backendGateway{api: api}
}

func (g *backendGateway) ListEmployees(ctx context.Context) ([]scheduler.Employee, error) {
	employees, err := g.api.ListEmployees(ctx)
	return employees, translateBackendError(err)
}

func (g *backendGateway) ListDepartments(ctx context.Context) ([]scheduler.Department, error) {
	departments, err := g.api.ListDepartments(ctx)
	return departments, translateBackendError(err)
}

func (g *backendGateway) ListServiceOrders(ctx context.Context) ([]scheduler.ServiceOrder, error) {
	orders, err := g.api.ListServiceOrders(ctx)
	return orders, translateBackendError(err)
}

func (g *backendGateway) Login(ctx context.Context, username, password string) error {
	return translateBackendError(g.api.Login(ctx, username, password))
}

func (g *backendGateway) GetEmployeeByUsername(ctx context.Context, username string) (scheduler.Employee, error) {
	employee, err := g.api.GetEmployeeByUsername(ctx, username)
	return employee, translateBackendError(err)
}

func (g *backendGateway) CreateEmployee(ctx context.Context, input application.EmployeeInput) (scheduler.Employee, error) {
	employee, err := g.api.CreateEmployee(ctx, toBackendEmployee(input))
	return employee, translateBackendError(err)
}

func (g *backendGateway) UpdateEmployee(ctx context.Context, id int, input application.EmployeeInput) (scheduler.Employee, error) {
	employee, err := g.api.UpdateEmployee(ctx, id, toBackendEmployee(input))
	return employee, translateBackendError(err)
}

func (g *backendGateway) DeleteEmployee(ctx context.Context, id int) error {
	return translateBackendError(g.api.DeleteEmployee(ctx, id))
}

func (g *backendGateway) CreateDepartment(ctx context.Context, input application.DepartmentInput) (scheduler.Department, error) {
	department, err := g.api.CreateDepartment(ctx, backend.DepartmentInput{Name: input.Name})
	return department, translateBackendError(err)
}

func (g *backendGateway) UpdateDepartment(ctx context.Context, id int, input application.DepartmentInput) (scheduler.Department, error) {
	department, err := g.api.UpdateDepartment(ctx, id, backend.DepartmentInput{Name: input.Name})
	return department, translateBackendError(err)
}

func (g *backendGateway) DeleteDepartment(ctx context.Context, id int) error {
	return translateBackendError(g.api.DeleteDepartment(ctx, id))
}

func (g *backendGateway) CreateServiceOrder(ctx context.Context, input application.ServiceOrderInput) (scheduler.ServiceOrder, error) {
	order, err := g.api.CreateServiceOrder(ctx, toBackendServiceOrder(input))
	return order, translateBackendError(err)
}

func (g *backendGateway) UpdateServiceOrder(ctx context.Context, id int, input application.ServiceOrderInput) (scheduler.ServiceOrder, error) {
	order, err := g.api.UpdateServiceOrder(ctx, id, toBackendServiceOrder(input))
	return order, translateBackendError(err)
}

func (g *backendGateway) DeleteServiceOrder(ctx context.Context, id int) error {
	return translateBackendError(g.api.DeleteServiceOrder(ctx, id))
}

func toBackendEmployee(input application.EmployeeInput) backend.EmployeeInput {
	departments := append([]int(nil), input.DepartmentIDs...)
	if departments == nil {
		departments = []int{}
	}
	return backend.EmployeeInput{
		Name:          input.Name,
		Username:      input.Username,
		Password:      input.Password,
		DepartmentIDs: departments,
		WorkSchedule:  input.WorkSchedule,
	}
}

func toBackendServiceOrder(input application.ServiceOrderInput) backend.ServiceOrderInput {
	payload := backend.ServiceOrderInput{
		OSNumber:    input.OSNumber,
		ServiceDays: append([]int{}, input.ServiceDays...),
		Departments: make([]backend.AssignmentInput, 0, len(input.Departments)),
	}
	for _, assignment := range input.Departments {
		payload.Departments = append(payload.Departments, backend.AssignmentInput{
			DepartmentID:    assignment.DepartmentID,
			ExecutionStart:  assignment.ExecutionStart,
			ExecutionEnd:    assignment.ExecutionEnd,
			CollaboratorIDs: append([]int{}, assignment.CollaboratorIDs...),
		})
	}
	return payload
}

// translateBackendError maps client errors onto the application sentinels so the
// HTTP responder can pick a status code.
func translateBackendError(err error) error {
	if err == nil {
		return nil
	}

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrEmptyResponse):
		return application.ErrNotEchoed
	case errors.Is(err, backend.ErrNotFound):
		return fmt.Errorf("%w: %v", application.ErrNotFound, err)
	case errors.Is(err, backend.ErrConflict):
		return fmt.Errorf("%w: %v", application.ErrAlreadyExists, err)
	case errors.Is(err, backend.ErrUnauthorized):
		return fmt.Errorf("%w: %v", application.ErrUnauthorized, err)
	case errors.Is(err, backend.ErrBadRequest) && errors.As(err, &statusErr):
		message := statusErr.Message
		if message == "" {
			message = "rejected by backend"
		}
		return &application.ValidationError{FieldErrors: map[string]string{"backend": message}}
	case errors.As(err, &statusErr):
		return fmt.Errorf("%w: %v", application.ErrBackendUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", application.ErrBackendUnavailable, err)
	}
	return err
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, translatePersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, translatePersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, translatePersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return translatePersistenceError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func translatePersistenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	}
	return err
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:    model.ID,
		Token: model.Token,
		Principal: application.Principal{
			UserID:      model.SubjectID,
			EmployeeID:  model.EmployeeID,
			Role:        application.Role(model.Role),
			DisplayName: model.DisplayName,
		},
		CreatedAt: model.CreatedAt,
		ExpiresAt: model.ExpiresAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		Token:       session.Token,
		SubjectID:   session.Principal.UserID,
		Role:        string(session.Principal.Role),
		EmployeeID:  session.Principal.EmployeeID,
		DisplayName: session.Principal.DisplayName,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.CreatedAt,
		RevokedAt:   cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
