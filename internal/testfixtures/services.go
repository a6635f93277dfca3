package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/service-order-scheduler/internal/application"
	"github.com/example/service-order-scheduler/internal/scheduler"
	"github.com/example/service-order-scheduler/internal/store"
)

// ServiceFactory assists tests with constructing application services over a
// shared snapshot store using deterministic tokens and clocks.
type ServiceFactory struct {
	Clock  *Clock
	Tokens *TokenSequence
	Store  *store.Store
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:  NewClock(time.Time{}),
		Tokens: NewTokenSequence("token"),
		Store:  store.New(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Tokens == nil {
		factory.Tokens = NewTokenSequence("token")
	}
	if factory.Store == nil {
		factory.Store = store.New()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithTokens overrides the session token sequence used by the factory.
func WithTokens(tokens *TokenSequence) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Tokens = tokens
	}
}

// WithSnapshot publishes the snapshot into the factory store.
func WithSnapshot(snapshot scheduler.Snapshot) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		if factory.Store == nil {
			factory.Store = store.New()
		}
		factory.Store.Replace(snapshot, ReferenceTime())
	}
}

// NewBoardService builds a board service reading the factory store.
func (f *ServiceFactory) NewBoardService(refresher application.SnapshotRefresher, logger *slog.Logger) *application.BoardService {
	return application.NewBoardServiceWithLogger(f.Store, refresher, f.Clock.NowFunc(), logger)
}

// CatalogServiceDeps captures dependencies for the three catalog services.
type CatalogServiceDeps struct {
	Employees   application.EmployeeBackend
	Departments application.DepartmentBackend
	Orders      application.ServiceOrderBackend
	Refresher   application.SnapshotRefresher
	Logger      *slog.Logger
}

// Catalog groups the services that mutate backend entities.
type Catalog struct {
	Employees   *application.EmployeeService
	Departments *application.DepartmentService
	Orders      *application.ServiceOrderService
}

// NewCatalog builds the catalog services over the factory store.
func (f *ServiceFactory) NewCatalog(deps CatalogServiceDeps) Catalog {
	return Catalog{
		Employees:   application.NewEmployeeServiceWithLogger(deps.Employees, f.Store, deps.Refresher, deps.Logger),
		Departments: application.NewDepartmentServiceWithLogger(deps.Departments, f.Store, deps.Refresher, deps.Logger),
		Orders:      application.NewServiceOrderServiceWithLogger(deps.Orders, f.Store, deps.Refresher, f.Clock.NowFunc(), deps.Logger),
	}
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Admin          application.AdminCredentials
	Directory      application.CollaboratorDirectory
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.Tokens.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Admin,
		deps.Directory,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
