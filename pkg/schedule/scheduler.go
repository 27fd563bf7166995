package schedule

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler draws typing delays and performs cancellable sleeps.
type Scheduler struct {
	clock clock.Clock

	mu   sync.Mutex
	rand *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithRand sets the random source used for typing delays.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) { s.rand = r }
}

// New creates a Scheduler on the wall clock.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: clock.New(),
		rand:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the scheduler clock.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// TypingDelay returns a delay drawn uniformly from [min, max] in whole milliseconds.
// A window with max < min collapses to min.
func (s *Scheduler) TypingDelay(min, max time.Duration) time.Duration {
	lo, hi := min.Milliseconds(), max.Milliseconds()
	if hi <= lo {
		return time.Duration(lo) * time.Millisecond
	}

	s.mu.Lock()
	ms := lo + s.rand.Int64N(hi-lo+1)
	s.mu.Unlock()
	return time.Duration(ms) * time.Millisecond
}

// Sleep pauses for d or until ctx is done, returning ctx.Err() in the latter case.
func (s *Scheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := s.clock.Timer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AfterFunc runs fn after d on its own goroutine.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *clock.Timer {
	return s.clock.AfterFunc(d, fn)
}
