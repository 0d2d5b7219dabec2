package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ErrDuplicateTask = errors.New("task already registered")
	ErrTaskLocked    = errors.New("task run suppressed by lock")
)

// Task is a unit of scheduled work.
type Task func(ctx context.Context) error

// TaskSpec declares when and how a task runs, independent of any queue
// runtime.
type TaskSpec struct {
	Name string
	// Interval between runs.
	Interval time.Duration
	// Timeout is the hard per-run limit enforced through ctx.
	Timeout time.Duration
	// MaxRetries are attempted after the first failure with a flat
	// RetryDelay between attempts. No exponential backoff.
	MaxRetries int
	RetryDelay time.Duration
	// RateLimit throttles run starts for this task; zero means unlimited.
	RateLimit rate.Limit
	Run       Task
}

// Locker suppresses overlapping runs of the same task across workers.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// NopLocker allows every run. Used when no shared lock store is configured.
type NopLocker struct{}

func (NopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}
func (NopLocker) Release(ctx context.Context, key string) error { return nil }

// Scheduler runs registered tasks on their intervals under a global
// concurrency cap.
type Scheduler struct {
	mu       sync.Mutex
	specs    []TaskSpec
	limiters map[string]*rate.Limiter

	sem    chan struct{}
	locker Locker
	log    *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

const defaultConcurrency = 2

func New(locker Locker, log *logrus.Logger) *Scheduler {
	if locker == nil {
		locker = NopLocker{}
	}
	return &Scheduler{
		limiters: map[string]*rate.Limiter{},
		sem:      make(chan struct{}, defaultConcurrency),
		locker:   locker,
		log:      log,
		sleep:    sleepCtx,
	}
}

func (s *Scheduler) Register(spec TaskSpec) error {
	if spec.Name == "" || spec.Run == nil {
		return fmt.Errorf("task spec needs a name and a run func")
	}
	if spec.Interval <= 0 {
		return fmt.Errorf("task %s needs a positive interval", spec.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.specs {
		if existing.Name == spec.Name {
			return fmt.Errorf("%w: %s", ErrDuplicateTask, spec.Name)
		}
	}
	s.specs = append(s.specs, spec)
	if spec.RateLimit > 0 {
		s.limiters[spec.Name] = rate.NewLimiter(spec.RateLimit, 1)
	}
	return nil
}

// Start runs every registered task on its interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	specs := make([]TaskSpec, len(s.specs))
	copy(specs, s.specs)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, spec := range specs {
		spec := spec
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(spec.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := s.RunTask(ctx, spec); err != nil && !errors.Is(err, ErrTaskLocked) {
						s.log.WithField("task", spec.Name).WithError(err).Error("task run failed")
					}
				}
			}
		}()
	}
	wg.Wait()
}

// RunTask executes one run of the task: semaphore, overlap lock, rate
// limit, then the flat retry loop under the per-run timeout.
func (s *Scheduler) RunTask(ctx context.Context, spec TaskSpec) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.sem <- struct{}{}:
	}
	defer func() { <-s.sem }()

	lockKey := "scheduler:lock:" + spec.Name
	lockTTL := spec.Timeout
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	ok, err := s.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		return fmt.Errorf("acquire lock for %s: %w", spec.Name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskLocked, spec.Name)
	}
	defer func() { _ = s.locker.Release(context.Background(), lockKey) }()

	if limiter := s.limiterFor(spec.Name); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	runCtx := ctx
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	attempts := spec.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = spec.Run(runCtx)
		if lastErr == nil {
			if attempt > 1 {
				s.log.WithFields(logrus.Fields{"task": spec.Name, "attempt": attempt}).Info("task recovered")
			}
			return nil
		}
		if runCtx.Err() != nil {
			return runCtx.Err()
		}
		s.log.WithFields(logrus.Fields{"task": spec.Name, "attempt": attempt}).WithError(lastErr).Warn("task attempt failed")
		if attempt < attempts && spec.RetryDelay > 0 {
			if err := s.sleep(runCtx, spec.RetryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("task %s failed after %d attempts: %w", spec.Name, attempts, lastErr)
}

func (s *Scheduler) limiterFor(name string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limiters[name]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
