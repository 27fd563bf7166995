package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalManager ties a context to SIGINT and SIGTERM and smooths over the race
// between a terminal EOF and the signal that caused it.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals on top of parent.
func NewSignalManager(parent context.Context) *SignalManager {
	sm := &SignalManager{}
	sm.ctx, sm.cancel = signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return sm
}

// Context returns the signal context.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop stops listening and cancels the context.
func (sm *SignalManager) Stop() {
	sm.cancel()
}

// CheckRace waits briefly to see if a context cancellation follows an input error.
// Ctrl+C may surface as EOF slightly before the signal context is cancelled.
func (sm *SignalManager) CheckRace() {
	if sm.ctx.Err() == nil {
		select {
		case <-sm.ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}
}
