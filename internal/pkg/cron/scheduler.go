package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job is a task run on a fixed interval. Timeout bounds a single run; zero
// means the run lives as long as the scheduler.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs in their own goroutines until stopped.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	started bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler bound to parent; cancelling parent stops
// every job.
func NewScheduler(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// AddJob registers a job. Jobs added after Start are not run.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.Add(Job{Name: name, Interval: interval, Fn: fn})
}

func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", job.Name, "interval", job.Interval, "timeout", job.Timeout)
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		names = append(names, j.Name)
	}
	return names
}

// Start launches every job once; repeated calls are no-ops.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// RunNow runs the named job synchronously and returns its error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var job *Job
	for i := range s.jobs {
		if s.jobs[i].Name == name {
			job = &s.jobs[i]
			break
		}
	}
	s.mu.Unlock()

	if job == nil {
		return fmt.Errorf("cron job %q not registered", name)
	}
	return run(ctx, *job)
}

// RunOnce runs all jobs once, logging failures.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, name := range s.Jobs() {
		if err := s.RunNow(ctx, name); err != nil {
			slog.Error("Cron job failed", "name", name, "error", err)
		}
	}
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// first run happens on start, not after one interval
	s.execute(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.execute(job)
		}
	}
}

func (s *Scheduler) execute(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := run(s.ctx, job); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// run executes one invocation and reports a panic as an error.
func run(ctx context.Context, job Job) (err error) {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cron job %q panicked: %v", job.Name, p)
		}
	}()

	return job.Fn(ctx)
}
