package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsInOrder(t *testing.T) {
	d := New(DefaultConfig())

	var mu sync.Mutex
	var got []int
	for i := range 10 {
		require.NoError(t, d.Submit("append", func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, d.Close())

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	assert.Equal(t, uint64(10), d.Completed())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	d := New(Config{Workers: 1, QueueSize: 1})

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Submit("block", func() {
		close(started)
		<-block
	}))
	<-started

	require.NoError(t, d.Submit("queued", func() {}))
	assert.ErrorIs(t, d.Submit("dropped", func() {}), ErrQueueFull)
	assert.Equal(t, uint64(1), d.Dropped())
	assert.Equal(t, 1, d.Pending())

	close(block)
	require.NoError(t, d.Close())
	assert.Equal(t, uint64(2), d.Completed())
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := New(DefaultConfig())

	ran := false
	require.NoError(t, d.Submit("panic", func() { panic("listener bug") }))
	require.NoError(t, d.Submit("after", func() { ran = true }))
	require.NoError(t, d.Close())

	assert.True(t, ran)
	assert.Equal(t, uint64(1), d.Panics())
	assert.Equal(t, uint64(1), d.Completed())
}

func TestDispatcherClosed(t *testing.T) {
	d := New(Config{Workers: 4})
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Submit("late", func() {}), ErrClosed)
}
