package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindow_AllowsUpToMaxHits(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 6)

	for i := 1; i <= 6; i++ {
		assert.True(t, limiter.Hit("1.2.3.4"), "hit %d should be allowed", i)
	}

	assert.False(t, limiter.Hit("1.2.3.4"), "7th hit within the window should be blocked")
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 2)

	assert.True(t, limiter.Hit("10.0.0.1"))
	assert.True(t, limiter.Hit("10.0.0.1"))
	assert.False(t, limiter.Hit("10.0.0.1"))

	assert.True(t, limiter.Hit("10.0.0.2"), "a different key must not be affected")
}

func TestFixedWindow_ResetsAfterWindowElapsed(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 2)

	current := time.Now()
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.Hit("1.2.3.4"))
	assert.True(t, limiter.Hit("1.2.3.4"))
	assert.False(t, limiter.Hit("1.2.3.4"))

	// 窗口过期后计数应重置为 1，而不是顺延
	current = current.Add(61 * time.Second)
	assert.True(t, limiter.Hit("1.2.3.4"))
	assert.True(t, limiter.Hit("1.2.3.4"))
	assert.False(t, limiter.Hit("1.2.3.4"))
}

func TestFixedWindow_SweepRemovesExpiredEntries(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 6)

	current := time.Now()
	limiter.now = func() time.Time { return current }

	limiter.Hit("1.1.1.1")
	limiter.Hit("2.2.2.2")
	assert.Equal(t, 2, limiter.size())

	current = current.Add(2 * time.Minute)
	limiter.Hit("3.3.3.3")
	limiter.Sweep()

	assert.Equal(t, 1, limiter.size(), "only the fresh entry should survive the sweep")
}

func TestFixedWindow_ConcurrentHits(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				limiter.Hit(fmt.Sprintf("192.0.2.%d", n))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, limiter.size())
}
