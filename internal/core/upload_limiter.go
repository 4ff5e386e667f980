package core

// upload_limiter.go bounds how many uploads are parsed at once.
//
// Parsing a workbook holds the whole file in memory, so parallel uploads are
// capped. When all slots are taken a request waits up to maxWait and then
// fails with ErrTooManyUploads. WaitForDrain lets shutdown wait for uploads
// in flight.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUploads is returned when no upload slot frees up in time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

const (
	// DefaultMaxConcurrentUploads is the default limit for parallel uploads.
	DefaultMaxConcurrentUploads = 2

	// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
	DefaultMaxWaitTime = 10 * time.Second
)

// UploadLimiter caps concurrent uploads with a weighted semaphore.
type UploadLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewUploadLimiter allows at most maxConcurrent simultaneous uploads.
// Non-positive arguments fall back to the defaults.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it when the upload ends.
// A cancelled ctx returns ctx.Err(); an expired wait returns ErrTooManyUploads.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without waiting.
func (l *UploadLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of uploads in flight.
func (l *UploadLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *UploadLimiter) MaxConcurrent() int {
	return l.max
}

// WaitForDrain blocks until no upload is in flight or ctx is done.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, int64(l.max)); err != nil {
		return err
	}
	l.sem.Release(int64(l.max))
	return nil
}
