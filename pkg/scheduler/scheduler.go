// Package scheduler drives the daily summarization job. It polls the wall
// clock about once a second and fires when the configured hour and minute
// match, which tolerates system sleep/wake and missed ticks at the cost of
// coarse trigger resolution.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/odvcencio/loom/pkg/logging"
)

const (
	// MaxAttempts bounds the retry loop, counting the first try
	MaxAttempts = 3
	// RetryBackoff is the wait between failed attempts
	RetryBackoff = 30 * time.Minute

	defaultPollInterval = time.Second
)

// Job is the work the scheduler fires once daily
type Job func(ctx context.Context) error

// Notifier delivers the terminal failure notification
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Scheduler runs a single daily job with bounded retry
type Scheduler struct {
	hour     int
	minute   int
	job      Job
	notifier Notifier
	logger   *logging.Logger

	pollInterval time.Duration
	backoff      time.Duration
	maxAttempts  int
	now          func() time.Time

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastFired string
}

// New creates a scheduler that fires job daily at hour:minute
func New(hour, minute int, job Job, notifier Notifier, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		hour:         hour,
		minute:       minute,
		job:          job,
		notifier:     notifier,
		logger:       logger,
		pollInterval: defaultPollInterval,
		backoff:      RetryBackoff,
		maxAttempts:  MaxAttempts,
		now:          time.Now,
	}
}

// SetSchedule updates the trigger time. Takes effect on the next tick.
func (s *Scheduler) SetSchedule(hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hour = hour
	s.minute = minute
}

// Start begins the polling loop. A second call while running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logInfo("started", fmt.Sprintf("daily summary scheduled at %02d:%02d", s.hour, s.minute), nil)
}

// Stop halts the loop and waits for it to exit. Safe to call when stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logInfo("stopped", "scheduler stopped", nil)
}

// IsRunning reports whether the polling loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := s.now()
		s.mu.Lock()
		due := s.running && now.Hour() == s.hour && now.Minute() == s.minute
		key := now.Format("2006-01-02 15:04")
		if due && s.lastFired == key {
			due = false
		}
		if due {
			s.lastFired = key
		}
		s.mu.Unlock()

		if due {
			s.RunJob(ctx)
		}
	}
}

// RunNow triggers the job synchronously, bypassing the schedule
func (s *Scheduler) RunNow(ctx context.Context) {
	s.RunJob(ctx)
}

// RunJob wraps the job in the bounded retry loop: up to MaxAttempts tries
// with a backoff wait between them, then one terminal failure notification.
// The backoff wait is chunked so Stop interrupts it promptly.
func (s *Scheduler) RunJob(ctx context.Context) {
	s.logInfo("job_start", "starting daily summary job", nil)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.job(ctx); err == nil {
			s.logInfo("job_done", "daily summary completed", map[string]any{"attempt": attempt})
			return
		} else {
			lastErr = err
			s.logWarn("job_retry", fmt.Sprintf("summary attempt %d failed: %v", attempt, err), map[string]any{"attempt": attempt})
		}

		if attempt < s.maxAttempts {
			if !s.wait(ctx, s.backoff) {
				s.logInfo("job_abort", "retry wait interrupted by shutdown", nil)
				return
			}
		}
	}

	s.logError("job_failed", fmt.Sprintf("all %d attempts failed: %v", s.maxAttempts, lastErr), nil)

	if s.notifier != nil {
		msg := fmt.Sprintf("Failed to generate daily summary after %d attempts", s.maxAttempts)
		if err := s.notifier.Notify(ctx, "Loom Error", msg); err != nil {
			s.logError("notify_failed", fmt.Sprintf("failed to send error notification: %v", err), nil)
		}
	}
}

// wait sleeps for d in poll-interval chunks, returning false when the
// scheduler shuts down before the full wait elapses.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	deadline := s.now().Add(d)
	for s.now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.pollInterval):
		}
	}
	return true
}

func (s *Scheduler) logInfo(eventType, message string, details map[string]any) {
	if s.logger != nil {
		s.logger.Info(logging.CategoryScheduler, eventType, message, details)
	}
}

func (s *Scheduler) logWarn(eventType, message string, details map[string]any) {
	if s.logger != nil {
		s.logger.Warn(logging.CategoryScheduler, eventType, message, details)
	}
}

func (s *Scheduler) logError(eventType, message string, details map[string]any) {
	if s.logger != nil {
		s.logger.Error(logging.CategoryScheduler, eventType, message, details)
	}
}
