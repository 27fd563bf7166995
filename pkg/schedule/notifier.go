package schedule

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Notifier fires two staggered notifications while the chat is closed.
// The second timer is armed only after the first one fired.
type Notifier struct {
	clock  clock.Clock
	first  time.Duration
	second time.Duration
	closed func() bool
	show   func(index int)

	mu        sync.Mutex
	timers    [2]*clock.Timer
	cancelled bool
	started   bool
}

// NewNotifier creates a notifier. closed reports whether the chat surface is closed;
// show receives the notification index (0 or 1).
func NewNotifier(c clock.Clock, first, second time.Duration, closed func() bool, show func(index int)) *Notifier {
	return &Notifier{
		clock:  c,
		first:  first,
		second: second,
		closed: closed,
		show:   show,
	}
}

// Start arms the first timer. Later calls are ignored.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started || n.cancelled {
		return
	}
	n.started = true
	n.timers[0] = n.clock.AfterFunc(n.first, func() { n.fire(0) })
}

func (n *Notifier) fire(index int) {
	if !n.closed() {
		return
	}

	n.mu.Lock()
	if n.cancelled {
		n.mu.Unlock()
		return
	}
	if index == 0 {
		n.timers[1] = n.clock.AfterFunc(n.second, func() { n.fire(1) })
	}
	n.mu.Unlock()

	n.show(index)
}

func (n *Notifier) live() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.cancelled
}

// Cancel stops both timers, whether or not they fired. Safe to call repeatedly.
func (n *Notifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.cancelled = true
	for _, t := range n.timers {
		if t != nil {
			t.Stop()
		}
	}
}

// Cancelled reports whether Cancel was called.
func (n *Notifier) Cancelled() bool {
	return !n.live()
}
