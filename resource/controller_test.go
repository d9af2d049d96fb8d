package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Over budget: fail fast, usage unchanged.
	assert.False(t, c.TryAcquireMemory(20))
	assert.ErrorIs(t, c.AcquireMemory(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(90), c.MemoryPeak())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())

	// Non-positive amounts are ignored.
	require.NoError(t, c.AcquireMemory(0))
	c.ReleaseMemory(-1)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Rate(t *testing.T) {
	base := time.Unix(1000, 0)
	timeNow = func() time.Time { return base }
	defer func() { timeNow = time.Now }()

	c := NewController(Config{EventsPerSec: 10, Burst: 2})

	assert.True(t, c.Allow(1))
	assert.True(t, c.Allow(1))
	assert.False(t, c.Allow(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.Wait(ctx, 1))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(1<<40))
	assert.True(t, c.TryAcquireMemory(1))
	c.ReleaseMemory(1)
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.MemoryPeak())
	assert.Zero(t, c.MemoryLimit())
	assert.NoError(t, c.Wait(context.Background(), 100))
	assert.True(t, c.Allow(100))
}
