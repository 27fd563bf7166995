package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Countdown ticks down from a number of seconds and fires an expiry action once.
// Resolve lets exactly one party (a user choice or the expiry) settle the outcome.
type Countdown struct {
	clock    clock.Clock
	interval time.Duration
	onTick   func(remaining int)
	onExpire func()

	remaining atomic.Int64
	resolved  atomic.Bool

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewCountdown creates a countdown of seconds ticks, one per interval.
// onTick receives the remaining count after each tick; onExpire runs when it reaches
// zero, unless the countdown was resolved first. Either callback may be nil.
func NewCountdown(c clock.Clock, seconds int, interval time.Duration, onTick func(int), onExpire func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	cd := &Countdown{
		clock:    c,
		interval: interval,
		onTick:   onTick,
		onExpire: onExpire,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	cd.remaining.Store(int64(seconds))
	return cd
}

// Start begins ticking. The ticker is created before Start returns.
func (c *Countdown) Start() {
	c.startOnce.Do(func() {
		ticker := c.clock.Ticker(c.interval)
		go c.run(ticker)
	})
}

func (c *Countdown) run(ticker *clock.Ticker) {
	defer close(c.done)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			select {
			case <-c.stop:
				return
			default:
			}
			left := c.remaining.Add(-1)
			if left < 0 {
				left = 0
			}
			if c.onTick != nil {
				c.onTick(int(left))
			}
			if left > 0 {
				continue
			}
			if c.Resolve() && c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}
}

// Resolve settles the countdown and stops it. It returns true only for the first caller.
func (c *Countdown) Resolve() bool {
	if !c.resolved.CompareAndSwap(false, true) {
		return false
	}
	c.Stop()
	return true
}

// Resolved reports whether the countdown has been settled.
func (c *Countdown) Resolved() bool {
	return c.resolved.Load()
}

// Stop halts ticking without resolving. Safe to call repeatedly.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	return int(c.remaining.Load())
}

// Done is closed once the ticking goroutine has exited. It never closes before Start.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
