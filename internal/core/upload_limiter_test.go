package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUploadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("after two Acquires, ActiveCount = %d, want 2", got)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire succeeded on a full limiter")
	}

	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire failed after Release")
	}

	limiter.Release()
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after releasing all, ActiveCount = %d, want 0", got)
	}
}

func TestUploadLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewUploadLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	if err := limiter.Acquire(ctx); !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("Acquire on full limiter = %v, want ErrTooManyUploads", err)
	}
}

func TestUploadLimiter_CancelledContext(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestUploadLimiter_Defaults(t *testing.T) {
	limiter := NewUploadLimiter(0, 0)

	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentUploads {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentUploads)
	}
}

func TestUploadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewUploadLimiter(2, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain = %v, want nil", err)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after drain = %d, want 0", got)
	}
}

func TestUploadLimiter_WaitForDrainTimeout(t *testing.T) {
	limiter := NewUploadLimiter(1, time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain = %v, want deadline exceeded", err)
	}
}
