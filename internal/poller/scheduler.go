package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	jobName = "devpulse-poll"

	// stopTimeout bounds how long Stop waits for a running task.
	// Tasks receive a cancelled context first, so this is rarely reached.
	stopTimeout = 10 * time.Second
)

// ErrSchedulerStopped is returned by [Scheduler.Start] after [Scheduler.Stop].
var ErrSchedulerStopped = errors.New("scheduler already stopped")

// Task is the unit of work run on every tick. The context is cancelled when
// the scheduler stops.
type Task func(ctx context.Context)

// Scheduler runs a single [Task] immediately and then at a fixed interval.
//
// Ticks that fire while the previous run is still in progress are skipped
// (rescheduled), never overlapped. Panics inside the task are recovered by
// gocron and logged with the job ID.
//
// Start and Stop are safe for concurrent use. A Scheduler cannot be restarted.
type Scheduler struct {
	interval time.Duration
	task     Task
	logger   *zap.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	cron     gocron.Scheduler
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewScheduler creates a [Scheduler] for task. It does nothing until
// [Scheduler.Start] is called.
func NewScheduler(interval time.Duration, task Task, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Start schedules the task and returns once the scheduler is running.
//
// The first run happens immediately. Cancelling ctx stops the scheduler as
// if [Scheduler.Stop] had been called. A second Start is a no-op; Start after
// Stop returns [ErrSchedulerStopped].
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if s.started {
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.interval)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cron, err := gocron.NewScheduler(gocron.WithStopTimeout(stopTimeout))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	_, err = cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if runCtx.Err() != nil {
				return
			}
			s.task(runCtx)
		}),
		gocron.WithName(jobName),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, name string, recoverData any) {
				s.logger.Error("poll task panicked",
					zap.String("job_id", jobID.String()),
					zap.String("job", name),
					zap.Any("panic", recoverData),
				)
			}),
		),
	)
	if err != nil {
		cancel()
		_ = cron.Shutdown()
		return fmt.Errorf("failed to schedule poll task: %w", err)
	}

	s.cron = cron
	s.cancel = cancel
	s.started = true
	cron.Start()

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	s.logger.Debug("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop cancels the task context, removes the job and waits for a running
// task to return. Stop is idempotent and safe to call before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		cron, cancel := s.cron, s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if cron == nil {
			return
		}
		if err := cron.Shutdown(); err != nil {
			s.logger.Warn("scheduler shutdown incomplete", zap.Error(err))
		}
		s.logger.Debug("scheduler stopped")
	})
}
