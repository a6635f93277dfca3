package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/service-order-scheduler/internal/logging"
	"github.com/example/service-order-scheduler/internal/scheduler"
)

// Source lists the three entity sets a snapshot is built from.
type Source interface {
	ListEmployees(ctx context.Context) ([]scheduler.Employee, error)
	ListDepartments(ctx context.Context) ([]scheduler.Department, error)
	ListServiceOrders(ctx context.Context) ([]scheduler.ServiceOrder, error)
}

// Observer receives the outcome of each refresh.
type Observer interface {
	ObserveRefresh(outcome string, duration time.Duration)
}

// Refresh outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Refresher loads all entity sets concurrently and publishes them together.
type Refresher struct {
	source   Source
	store    *Store
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

// NewRefresher constructs a refresher. A nil now defaults to time.Now.
func NewRefresher(source Source, store *Store, now func() time.Time, observer Observer, logger *slog.Logger) *Refresher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{source: source, store: store, now: now, observer: observer, logger: logger}
}

// Refresh fetches employees, departments and service orders in parallel. The snapshot
// is replaced only when all three succeed; otherwise the previous one is marked stale.
func (r *Refresher) Refresh(ctx context.Context) (err error) {
	if r == nil || r.source == nil || r.store == nil {
		return fmt.Errorf("refresher not configured")
	}

	logger := logging.FromContextOr(ctx, r.logger).With("component", "store.Refresher")

	started := r.now()
	defer func() {
		elapsed := r.now().Sub(started)
		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
			r.store.MarkStale(err, r.now())
			logger.ErrorContext(ctx, "snapshot refresh failed", "error", err, "duration", elapsed)
		} else {
			logger.InfoContext(ctx, "snapshot refreshed", "duration", elapsed)
		}
		if r.observer != nil {
			r.observer.ObserveRefresh(outcome, elapsed)
		}
	}()

	var next scheduler.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		employees, err := r.source.ListEmployees(gctx)
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		next.Employees = employees
		return nil
	})
	g.Go(func() error {
		departments, err := r.source.ListDepartments(gctx)
		if err != nil {
			return fmt.Errorf("list departments: %w", err)
		}
		next.Departments = departments
		return nil
	})
	g.Go(func() error {
		orders, err := r.source.ListServiceOrders(gctx)
		if err != nil {
			return fmt.Errorf("list service orders: %w", err)
		}
		next.Orders = orders
		return nil
	})
	if err = g.Wait(); err != nil {
		return err
	}

	for _, employee := range next.Employees {
		if employee.ScheduleInvalid {
			logger.WarnContext(ctx, "employee work schedule has invalid format", "employee_id", employee.ID)
		}
	}

	r.store.Replace(next, r.now())
	return nil
}

// Run refreshes on every tick until ctx is cancelled. Failures are logged and retried on the next tick.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Refresh(ctx)
		}
	}
}
