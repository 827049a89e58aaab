package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type AssignmentLifecycleProvider interface {
	ActivateScheduledAssignments(ctx context.Context, now time.Time) (int64, error)
	ArchiveExpiredAssignments(ctx context.Context, now time.Time) (int64, error)
}

// AssignmentScheduler opens assignments whose start date arrived and archives
// those past their end date.
type AssignmentScheduler struct {
	provider AssignmentLifecycleProvider
	interval time.Duration
}

func NewAssignmentScheduler(provider AssignmentLifecycleProvider, interval time.Duration) *AssignmentScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AssignmentScheduler{provider: provider, interval: interval}
}

func (s *AssignmentScheduler) Start(ctx context.Context) {
	if s.provider == nil {
		slog.Warn("assignment scheduler skipped: no provider configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *AssignmentScheduler) run(ctx context.Context) {
	now := time.Now().UTC()
	if opened, err := s.provider.ActivateScheduledAssignments(ctx, now); err != nil {
		slog.Error("activate scheduled assignments failed", "err", err)
	} else if opened > 0 {
		slog.Info("assignments activated", "count", opened)
	}
	if archived, err := s.provider.ArchiveExpiredAssignments(ctx, now); err != nil {
		slog.Error("archive expired assignments failed", "err", err)
	} else if archived > 0 {
		slog.Info("assignments archived", "count", archived)
	}
}
