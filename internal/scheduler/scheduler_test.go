package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func TestRunTaskRetriesWithFlatDelayThenSucceeds(t *testing.T) {
	s := New(newFakeLocker(), testLogger())
	s.sleep = noSleep

	var attempts int32
	spec := TaskSpec{
		Name:       "flaky",
		Interval:   time.Hour,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Run: func(ctx context.Context) error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	}

	require.NoError(t, s.RunTask(context.Background(), spec))
	require.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestRunTaskExhaustsRetryBudget(t *testing.T) {
	s := New(newFakeLocker(), testLogger())
	s.sleep = noSleep

	var attempts int32
	spec := TaskSpec{
		Name:       "broken",
		Interval:   time.Hour,
		MaxRetries: 3,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("permanent")
		},
	}

	err := s.RunTask(context.Background(), spec)
	require.ErrorContains(t, err, "after 4 attempts")
	require.Equal(t, int32(4), atomic.LoadInt32(&attempts))
}

func TestRunTaskConcurrencyCap(t *testing.T) {
	s := New(newFakeLocker(), testLogger())
	s.sleep = noSleep

	var current, peak int32
	release := make(chan struct{})

	run := func(ctx context.Context) error {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&current, -1)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunTask(context.Background(), TaskSpec{
				Name:     []string{"a", "b", "c", "d"}[i],
				Interval: time.Hour,
				Run:      run,
			})
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(defaultConcurrency))
	require.Equal(t, int32(defaultConcurrency), atomic.LoadInt32(&peak))
}

func TestRunTaskSuppressedWhenLockHeld(t *testing.T) {
	locker := newFakeLocker()
	_, err := locker.Acquire(context.Background(), "scheduler:lock:held", time.Minute)
	require.NoError(t, err)

	s := New(locker, testLogger())
	s.sleep = noSleep

	var ran bool
	err = s.RunTask(context.Background(), TaskSpec{
		Name:     "held",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			ran = true
			return nil
		},
	})
	require.ErrorIs(t, err, ErrTaskLocked)
	require.False(t, ran)
}

func TestRunTaskHonorsTimeout(t *testing.T) {
	s := New(newFakeLocker(), testLogger())
	s.sleep = noSleep

	err := s.RunTask(context.Background(), TaskSpec{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := New(newFakeLocker(), testLogger())

	spec := TaskSpec{Name: "once", Interval: time.Hour, Run: func(ctx context.Context) error { return nil }}
	require.NoError(t, s.Register(spec))
	require.ErrorIs(t, s.Register(spec), ErrDuplicateTask)
}
