package browse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	pool := NewWorkerPool(3)

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, pool.Submit(func() { ran.Add(1) }))
	}

	require.Eventually(t, func() bool { return ran.Load() == 20 }, waitFor, tick)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	require.NoError(t, pool.Stop(ctx))

	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolStopped)
}

func TestWorkerPoolSubmitNeverBlocks(t *testing.T) {
	pool := NewWorkerPool(1)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		pool.Stop(ctx)
	}()

	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-gate
	}))
	<-started

	var ran atomic.Int32
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for i := 0; i < 100; i++ {
			pool.Submit(func() { ran.Add(1) })
		}
	}()

	select {
	case <-submitted:
	case <-time.After(waitFor):
		t.Fatal("Submit blocked while the only worker was busy")
	}
	assert.Equal(t, 100, pool.(*workerPool).pending())
	assert.Equal(t, int32(0), ran.Load())

	close(gate)
	require.Eventually(t, func() bool { return ran.Load() == 100 }, waitFor, tick)
}

func TestWorkerPoolStopDropsQueuedWork(t *testing.T) {
	pool := NewWorkerPool(1)

	gate := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-gate
	}))
	<-started

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(func() { ran.Add(1) }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stopped := make(chan error, 1)
	go func() { stopped <- pool.Stop(ctx) }()
	require.Eventually(t, func() bool { return pool.Submit(func() {}) != nil }, waitFor, tick)

	close(gate)
	require.NoError(t, <-stopped)
	assert.Equal(t, 0, pool.(*workerPool).pending())
	assert.Equal(t, int32(0), ran.Load())
}

func TestMailboxPreservesOrder(t *testing.T) {
	m := newMailbox()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, m.post(func() { got = append(got, i) }))
	}

	<-m.signal
	for _, fn := range m.drain() {
		fn()
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Empty(t, m.drain())

	m.close()
	assert.False(t, m.post(func() {}))
}
