// Package slot provides the conversion slot: the gate that lets at most one
// foreign-file conversion drive external applications at a time.
package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"modelbridge/internal/logging"
)

const defaultRetryDelay = 250 * time.Millisecond

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("conversion slot closed")

// Options configures a Slot.
type Options struct {
	// LockPath enables cross-process exclusion through an advisory file lock.
	LockPath string
	// RetryDelay is the polling interval while waiting for the file lock.
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Slot serializes conversions. Create one per process at startup and share it
// between every orchestrator; Close it at shutdown.
type Slot struct {
	gate       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	lock       *flock.Flock
	retryDelay time.Duration
	logger     *slog.Logger
}

// New constructs a free slot.
func New(opts Options) *Slot {
	s := &Slot{
		gate:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		retryDelay: opts.RetryDelay,
		logger:     logging.NewComponentLogger(opts.Logger, "slot"),
	}
	if s.retryDelay <= 0 {
		s.retryDelay = defaultRetryDelay
	}
	if opts.LockPath != "" {
		s.lock = flock.New(opts.LockPath)
	}
	return s
}

// Acquire blocks until the slot is free or ctx is done. On success the caller
// owns the slot until the returned release function runs; release is safe to
// call more than once and is meant to be deferred immediately.
func (s *Slot) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case <-s.done:
		return nil, ErrClosed
	default:
	}

	select {
	case s.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for conversion slot: %w", ctx.Err())
	case <-s.done:
		return nil, ErrClosed
	}

	if s.lock != nil {
		ok, err := s.lock.TryLockContext(ctx, s.retryDelay)
		if err != nil || !ok {
			<-s.gate
			if err == nil {
				err = errors.New("lock not acquired")
			}
			return nil, fmt.Errorf("acquire conversion lock %s: %w", s.lock.Path(), err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if s.lock != nil {
				if err := s.lock.Unlock(); err != nil {
					s.logger.Warn("failed to release conversion lock", logging.Error(err))
				}
			}
			<-s.gate
		})
	}, nil
}

// Held reports whether a conversion currently owns the slot in this process.
func (s *Slot) Held() bool {
	return len(s.gate) == 1
}

// Close makes future Acquire calls fail. A conversion already holding the slot
// keeps it until it releases.
func (s *Slot) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
