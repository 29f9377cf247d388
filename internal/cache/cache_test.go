// ABOUTME: Tests for the response cache: TTL expiry, eviction, clearing and goroutine shutdown
// ABOUTME: Uses a fake clock for expiry and goleak to prove Close stops the sweeper

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, maxSize int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newCache(DefaultTTL, maxSize, time.Hour, clock.Now)
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t, 10)
	_, ok := c.Get("users_jsonplaceholder_")
	assert.False(t, ok)
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Set("k", []string{"a"})

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, v)
}

func TestCache_ExpiresFiveMinutesAfterInsert(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("k", 1)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_GetDoesNotExtendTTL(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("k", 1)

	clock.Advance(3 * time.Minute)
	c.Get("k")
	clock.Advance(3 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	c, _ := newTestCache(t, 3)
	for i := range 4 {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, 3, c.Len())
	_, ok := c.Get("k0")
	assert.False(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
}

func TestCache_ClearAndDelete(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Set("c", 3)
	assert.Equal(t, 1, c.Len())
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Set("old", 1)
	clock.Advance(3 * time.Minute)
	c.Set("new", 2)
	clock.Advance(2 * time.Minute)

	c.sweep()
	assert.Equal(t, 1, c.Len())
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}

func TestCache_Concurrent(t *testing.T) {
	c, _ := newTestCache(t, 100)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Set(key, i)
			c.Get(key)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 5)
}
