package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/domain/planning"
)

const ConflictSweepJob = "conflict_sweep"

type ConflictJobs struct {
	planningSvc planning.PlanningService
}

func NewConflictJobs(planningSvc planning.PlanningService) *ConflictJobs {
	return &ConflictJobs{planningSvc: planningSvc}
}

// RegisterJobs schedules the sweep; a non-positive interval disables it.
func (j *ConflictJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if interval <= 0 {
		slog.Info("Cron: conflict sweep disabled")
		return
	}
	// a sweep must finish before the next one is due
	scheduler.Add(Job{
		Name:     ConflictSweepJob,
		Interval: interval,
		Timeout:  interval,
		Fn:       j.SweepConflicts,
	})
}

// SweepConflicts rescans every order against current absences. The planning
// service updates the open-conflicts gauge as part of the scan.
func (j *ConflictJobs) SweepConflicts(ctx context.Context) error {
	resp, err := j.planningSvc.AllConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan conflicts: %w", err)
	}

	flagged := 0
	for _, o := range resp.Orders {
		if len(o.MissingAssignments) > 0 || o.MissingAssignment {
			flagged++
		}
	}

	slog.Info("Cron: conflict sweep finished",
		"scanned_orders", resp.ScannedOrders,
		"conflicts", resp.TotalConflicts,
		"orders_missing_assignment", flagged,
	)
	return nil
}
