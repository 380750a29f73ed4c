package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUntilImmediate(t *testing.T) {
	start := time.Now()
	ok := Until(context.Background(), time.Second, time.Second, func() bool { return true })

	assert.True(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestUntilTimeout(t *testing.T) {
	start := time.Now()
	ok := Until(context.Background(), 5*time.Millisecond, 50*time.Millisecond, func() bool { return false })

	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestUntilBecomesTrue(t *testing.T) {
	var flag atomic.Bool
	time.AfterFunc(20*time.Millisecond, func() { flag.Store(true) })

	ok := Until(context.Background(), 5*time.Millisecond, time.Second, flag.Load)
	assert.True(t, ok)
}

func TestUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	ok := Until(ctx, 5*time.Millisecond, 0, func() bool { return false })
	assert.False(t, ok)
}
