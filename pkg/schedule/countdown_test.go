package schedule_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/leadchat/pkg/schedule"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCountdown_ExpiresOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	mock := clock.NewMock()
	var (
		mu    sync.Mutex
		ticks []int
	)
	var expired atomic.Int32

	cd := schedule.NewCountdown(mock, 6, time.Second, func(left int) {
		mu.Lock()
		ticks = append(ticks, left)
		mu.Unlock()
	}, func() { expired.Add(1) })
	cd.Start()

	for want := 5; want >= 0; want-- {
		mock.Add(time.Second)
		require.Eventually(t, func() bool { return cd.Remaining() == want }, time.Second, time.Millisecond)
	}

	<-cd.Done()
	assert.Equal(t, int32(1), expired.Load())
	assert.True(t, cd.Resolved())
	assert.False(t, cd.Resolve(), "expiry already settled the countdown")

	mu.Lock()
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, ticks)
	mu.Unlock()
}

func TestCountdown_ResolveStopsExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	mock := clock.NewMock()
	var expired atomic.Int32
	cd := schedule.NewCountdown(mock, 6, time.Second, nil, func() { expired.Add(1) })
	cd.Start()

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return cd.Remaining() == 5 }, time.Second, time.Millisecond)

	assert.True(t, cd.Resolve())
	assert.False(t, cd.Resolve(), "a second resolution is a no-op")
	<-cd.Done()

	mock.Add(time.Minute)
	assert.Equal(t, int32(0), expired.Load())
	assert.Equal(t, 5, cd.Remaining())
}

func TestCountdown_StopWithoutResolve(t *testing.T) {
	defer goleak.VerifyNone(t)

	cd := schedule.NewCountdown(clock.NewMock(), 3, time.Second, nil, nil)
	cd.Start()
	cd.Stop()
	cd.Stop()
	<-cd.Done()
	assert.False(t, cd.Resolved())
}
