package layout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store snapshots the host layout, switches to the target layout and puts
// the snapshot back afterwards.
type Store struct {
	facility Facility
	log      *zap.SugaredLogger

	// SettleDelay is waited after switching to the target layout.
	SettleDelay time.Duration
	// RestoreDelay is waited after restoring a snapshot.
	RestoreDelay time.Duration
}

func NewStore(f Facility, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{
		facility:     f,
		log:          log,
		SettleDelay:  500 * time.Millisecond,
		RestoreDelay: 300 * time.Millisecond,
	}
}

// Capture reads the current layout state. It never fails: if the host cannot
// be queried the returned snapshot is empty and restoring it is a no-op.
func (s *Store) Capture(ctx context.Context) Snapshot {
	sources, err := s.facility.Sources(ctx)
	if err != nil {
		s.log.Warnw("layout query failed, nothing will be restored", "error", err)
		return Snapshot{}
	}
	if len(sources) == 0 {
		s.log.Warnw("host reports no input sources, nothing will be restored")
		return Snapshot{}
	}

	cur, err := s.facility.Current(ctx)
	if err != nil {
		s.log.Warnw("active layout query failed", "error", err)
		cur = -1
	} else if cur < 0 || cur >= len(sources) {
		s.log.Warnw("active layout index out of range", "index", cur, "sources", len(sources))
	}

	snap := NewSnapshot(sources, cur)
	s.log.Debugw("captured layout", "snapshot", snap.String())
	return snap
}

// EnsureTarget makes target the active layout, inserting it at the front of
// the source list when it is missing. The writes depend only on the snapshot,
// so calling it twice with the same snapshot leaves the same host state.
func (s *Store) EnsureTarget(ctx context.Context, snap Snapshot, target string) (int, error) {
	if snap.Empty() {
		return -1, ErrNothingCaptured
	}

	idx := snap.Index(target)
	if idx < 0 {
		sources := append([]Source{XKB(target)}, snap.sources...)
		if err := s.facility.SetSources(ctx, sources); err != nil {
			return -1, fmt.Errorf("insert %s layout: %w", target, err)
		}
		idx = 0
	}

	if err := s.facility.SetCurrent(ctx, idx); err != nil {
		return -1, fmt.Errorf("activate %s layout at %d: %w", target, idx, err)
	}

	s.log.Infow("target layout active", "layout", target, "index", idx)
	if err := sleepCtx(ctx, s.SettleDelay); err != nil {
		return idx, err
	}
	return idx, nil
}

// Restore writes the snapshot back, sources first and then the active index
// so the index is read against the restored list. Every write is attempted;
// the returned error only needs to be logged.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	if snap.Empty() {
		return nil
	}

	var errs []error
	if err := s.facility.SetSources(ctx, snap.Sources()); err != nil {
		errs = append(errs, fmt.Errorf("restore sources: %w", err))
	}
	if cur, ok := snap.Current(); ok {
		if err := s.facility.SetCurrent(ctx, cur); err != nil {
			errs = append(errs, fmt.Errorf("restore active index %d: %w", cur, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.log.Infow("layout restored", "snapshot", snap.String())
	_ = sleepCtx(ctx, s.RestoreDelay)
	return nil
}
