package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunLimiter_AcquireRelease(t *testing.T) {
	l := NewRunLimiter(2, time.Second)
	ctx := context.Background()

	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}

	if s := l.Status(); s.Active != 2 || s.Available != 0 || s.MaxConcurrent != 2 {
		t.Errorf("Status() = %+v", s)
	}

	l.Release()
	l.Release()
	if s := l.Status(); s.Active != 0 || s.Available != 2 {
		t.Errorf("Status() after release = %+v", s)
	}
}

func TestRunLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewRunLimiter(1, 20*time.Millisecond)
	if !l.TryAcquire() {
		t.Fatal("TryAcquire() on empty limiter = false")
	}
	defer l.Release()

	if l.TryAcquire() {
		t.Error("TryAcquire() on full limiter = true")
	}
	if err := l.Acquire(context.Background()); !errors.Is(err, ErrTooManyRuns) {
		t.Errorf("Acquire() error = %v, want ErrTooManyRuns", err)
	}
}

func TestRunLimiter_ContextCancellation(t *testing.T) {
	l := NewRunLimiter(1, time.Minute)
	l.TryAcquire()
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
}

func TestRunLimiter_UnblocksWaiter(t *testing.T) {
	l := NewRunLimiter(1, time.Second)
	l.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- l.Acquire(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	l.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiter Acquire() error = %v", err)
		}
		l.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired slot")
	}
}

func TestRunLimiter_ConcurrentAccess(t *testing.T) {
	l := NewRunLimiter(3, time.Second)

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			l.Release()
		}()
	}
	wg.Wait()

	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestRunLimiter_WaitForDrain(t *testing.T) {
	l := NewRunLimiter(1, time.Second)
	l.TryAcquire()

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain() error = %v", err)
	}
}

func TestRunLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	l := NewRunLimiter(1, time.Second)
	l.TryAcquire()
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() error = %v, want DeadlineExceeded", err)
	}
}

func TestRunLimiter_DefaultValues(t *testing.T) {
	l := NewRunLimiter(0, 0)
	if l.Status().MaxConcurrent != defaultMaxConcurrentRuns {
		t.Errorf("MaxConcurrent = %d, want %d", l.Status().MaxConcurrent, defaultMaxConcurrentRuns)
	}
	if l.maxWait != defaultMaxRunWait {
		t.Errorf("maxWait = %v, want %v", l.maxWait, defaultMaxRunWait)
	}
}
