package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestUploadLimiter_SlotAccounting(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		name          string
		do            func()
		wantActive    int
		wantAvailable int
	}{
		{"initial", func() {}, 0, 2},
		{"first acquire", func() { mustAcquire(t, limiter) }, 1, 1},
		{"second acquire", func() { mustAcquire(t, limiter) }, 2, 0},
		{"release", limiter.Release, 1, 1},
		{"release last", limiter.Release, 0, 2},
	}

	for _, step := range steps {
		step.do()
		if got := limiter.ActiveCount(); got != step.wantActive {
			t.Errorf("%s: ActiveCount = %d, want %d", step.name, got, step.wantActive)
		}
		if got := limiter.Available(); got != step.wantAvailable {
			t.Errorf("%s: Available = %d, want %d", step.name, got, step.wantAvailable)
		}
	}

	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain on idle limiter = %v", err)
	}
}

func mustAcquire(t *testing.T, l *UploadLimiter) {
	t.Helper()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
}

func TestUploadLimiter_FullTimesOut(t *testing.T) {
	limiter := NewUploadLimiter(1, 80*time.Millisecond)
	mustAcquire(t, limiter)
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("Acquire on full limiter = %v, want ErrTooManyUploads", err)
	}
	if elapsed < 70*time.Millisecond {
		t.Errorf("gave up after %v, before the wait period", elapsed)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire on full limiter should fail")
	}
}

func TestUploadLimiter_ContextEndsWait(t *testing.T) {
	limiter := NewUploadLimiter(1, 5*time.Second)
	mustAcquire(t, limiter)
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire ignored cancellation")
	}
}

func TestUploadLimiter_NeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	limiter := NewUploadLimiter(capacity, 5*time.Second)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		peak int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer limiter.Release()

			mu.Lock()
			peak = max(peak, limiter.ActiveCount())
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if peak > capacity {
		t.Errorf("peak active = %d, capacity %d", peak, capacity)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all released = %d", got)
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	mustAcquire(t, limiter)

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a save was active")
	case <-time.After(60 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestUploadLimiter_WaitForDrainDeadline(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	mustAcquire(t, limiter)
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain = %v, want DeadlineExceeded", err)
	}
}

func TestUploadLimiter_StatusAndDefaults(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentUploads {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentUploads)
	}

	mustAcquire(t, limiter)
	defer limiter.Release()

	want := UploadLimiterStatus{Active: 1, Available: DefaultMaxConcurrentUploads - 1, MaxConcurrent: DefaultMaxConcurrentUploads}
	if got := limiter.Status(); got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}
}
