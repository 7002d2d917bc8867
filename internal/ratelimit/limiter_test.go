package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestAllow_FixedWindow(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	l := New(Options{}, WithClock(clk.Now))

	for i := 1; i <= 100; i++ {
		res := l.Allow("1.2.3.4")
		require.True(t, res.Allowed, "call %d should pass", i)
		assert.Equal(t, 100-i, res.Remaining)
	}

	res := l.Allow("1.2.3.4")
	assert.False(t, res.Allowed, "101st call must be denied")
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60*time.Second, res.RetryAfter)

	clk.Advance(60 * time.Second)

	res = l.Allow("1.2.3.4")
	assert.True(t, res.Allowed)
	assert.Equal(t, 99, res.Remaining)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	l := New(Options{Limit: 2}, WithClock(clk.Now))

	assert.True(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)

	assert.True(t, l.Allow("b").Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestAllow_ResetAt(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &fakeClock{t: start}
	l := New(Options{Limit: 5, Window: 10 * time.Second}, WithClock(clk.Now))

	first := l.Allow("k")
	clk.Advance(3 * time.Second)
	second := l.Allow("k")

	assert.Equal(t, start.Add(10*time.Second), first.ResetAt)
	assert.Equal(t, first.ResetAt, second.ResetAt, "window end must not slide")
}

func TestAllow_MaxKeysBound(t *testing.T) {
	l := New(Options{MaxKeys: 3})
	for i := 0; i < 10; i++ {
		l.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 3, l.Len())
}

func TestAllow_Concurrent(t *testing.T) {
	l := New(Options{Limit: 50})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared").Allowed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, granted)
}
