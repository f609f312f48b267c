package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guccio85/proximasuite-sub000/internal/domain/planning"
)

type stubPlanning struct {
	planning.PlanningService
	calls atomic.Int32
	err   error
}

func (s *stubPlanning) AllConflicts(ctx context.Context) (planning.ConflictScanResponse, error) {
	s.calls.Add(1)
	if s.err != nil {
		return planning.ConflictScanResponse{}, s.err
	}
	return planning.ConflictScanResponse{
		ScannedOrders:  2,
		TotalConflicts: 1,
		Orders: []planning.OrderConflictsResponse{
			{OrderNumber: "2024-001", MissingAssignments: []string{"kbw"}},
		},
	}, nil
}

func TestConflictJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler(context.Background())
	jobs := NewConflictJobs(&stubPlanning{})

	jobs.RegisterJobs(s, 0)
	assert.Empty(t, s.Jobs())

	jobs.RegisterJobs(s, time.Minute)
	assert.Equal(t, []string{ConflictSweepJob}, s.Jobs())
}

func TestConflictJobs_SweepConflicts(t *testing.T) {
	stub := &stubPlanning{}
	require.NoError(t, NewConflictJobs(stub).SweepConflicts(context.Background()))
	assert.Equal(t, int32(1), stub.calls.Load())

	stub.err = errors.New("db down")
	assert.ErrorContains(t, NewConflictJobs(stub).SweepConflicts(context.Background()), "db down")
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	stub := &stubPlanning{}
	s := NewScheduler(context.Background())
	NewConflictJobs(stub).RegisterJobs(s, time.Hour)

	s.Start()
	assert.Eventually(t, func() bool { return stub.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestScheduler_RunOnce(t *testing.T) {
	stub := &stubPlanning{}
	s := NewScheduler(context.Background())
	NewConflictJobs(stub).RegisterJobs(s, time.Hour)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(context.Background())
	s.Add(Job{Name: "ok", Interval: time.Hour, Fn: func(ctx context.Context) error { return nil }})
	s.Add(Job{Name: "boom", Interval: time.Hour, Fn: func(ctx context.Context) error { panic("bad state") }})
	s.Add(Job{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  10 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	assert.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.ErrorContains(t, s.RunNow(context.Background(), "boom"), "panicked")
	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), context.DeadlineExceeded)
	assert.ErrorContains(t, s.RunNow(context.Background(), "missing"), "not registered")
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(context.Background())
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
}
