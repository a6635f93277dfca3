package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/service-order-scheduler/internal/scheduler"
)

// ErrNotEchoed is returned by backends whose write succeeded without returning the stored entity.
var ErrNotEchoed = errors.New("application: backend did not echo the stored entity")

// resync reloads the snapshot after a write the backend confirmed without echoing the entity.
// It returns the snapshot to search for the written entity.
func resync(ctx context.Context, logger *slog.Logger, refresher SnapshotRefresher, snapshots SnapshotStore) scheduler.Snapshot {
	if refresher != nil {
		if err := refresher.Refresh(ctx); err != nil {
			logger.WarnContext(ctx, "snapshot resync after write failed", "error", err)
		}
	}
	if snapshots == nil {
		return scheduler.Snapshot{}
	}
	return snapshots.Snapshot()
}

// notVisible reports a write the backend confirmed but the resynced snapshot does not show yet.
func notVisible(entity string) error {
	return fmt.Errorf("%w: %s stored but not yet visible", ErrBackendUnavailable, entity)
}

func publish(snapshots SnapshotStore, fn func(scheduler.Snapshot) scheduler.Snapshot) {
	if snapshots != nil {
		snapshots.Apply(fn)
	}
}

func currentSnapshot(snapshots SnapshotStore) scheduler.Snapshot {
	if snapshots == nil {
		return scheduler.Snapshot{}
	}
	return snapshots.Snapshot()
}

func requireAdmin(principal Principal) error {
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

func requireID(field string, id int) error {
	if id > 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add(field, "must be a positive integer")
	return vErr
}

func nilServiceError(name string) error {
	return fmt.Errorf("%s is nil", name)
}

func uniquePositive(ids []int) ([]int, []int) {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	var invalid []int
	for _, id := range ids {
		if id <= 0 {
			invalid = append(invalid, id)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, invalid
}
