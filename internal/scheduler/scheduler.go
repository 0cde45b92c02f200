// Package scheduler runs a job on a fixed interval and on demand.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	processor "auction-market/internal/auctionProcessor"
	"auction-market/internal/biddingerrors"
	"auction-market/utils"
)

// Runner is the job the scheduler drives
type Runner interface {
	ProcessEndedAuctions(ctx context.Context) (processor.Summary, error)
}

// Status reports the scheduler state
type Status struct {
	IsRunning bool               `json:"is_running"`
	Interval  string             `json:"interval"`
	LastRunAt *time.Time         `json:"last_run_at,omitempty"`
	LastRun   *processor.Summary `json:"last_run,omitempty"`
	LastError string             `json:"last_error,omitempty"`
}

// Scheduler owns one ticker. Ticks and Trigger both go through the same Runner,
// whose run lock decides whether a sweep is already in progress.
type Scheduler struct {
	runner   Runner
	interval time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	lastRunAt time.Time
	lastRun   *processor.Summary
	lastErr   error
}

// New creates a stopped scheduler
func New(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

// Start launches the ticker. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	utils.Info("scheduler: started", map[string]any{"interval": s.interval.String()})
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := s.run(ctx)
			if errors.Is(err, biddingerrors.ErrSweepInProgress) {
				utils.Info("scheduler: sweep already in progress, tick skipped", nil)
			}
		}
	}
}

// Stop halts the ticker and waits for an in-flight tick to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	utils.Info("scheduler: stopped", nil)
}

// Trigger runs the job now, outside the ticker, and returns its summary
func (s *Scheduler) Trigger(ctx context.Context) (processor.Summary, error) {
	return s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) (processor.Summary, error) {
	summary, err := s.runner.ProcessEndedAuctions(ctx)
	if errors.Is(err, biddingerrors.ErrSweepInProgress) {
		return summary, err
	}

	s.mu.Lock()
	s.lastRunAt = time.Now().UTC()
	s.lastErr = err
	if err == nil {
		s.lastRun = &summary
	}
	s.mu.Unlock()

	if err != nil {
		utils.Error("scheduler: sweep failed", map[string]any{"error": err.Error()})
	}
	return summary, err
}

// IsRunning reports whether the ticker is started
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Status returns the state shown on the processor status endpoint
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		IsRunning: s.cancel != nil,
		Interval:  s.interval.String(),
		LastRun:   s.lastRun,
	}
	if !s.lastRunAt.IsZero() {
		at := s.lastRunAt
		st.LastRunAt = &at
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
