package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBattleCache_New(t *testing.T) {
	c := NewBattleCache()

	require.NotNil(t, c)
	assert.NotNil(t, c.battles)
	assert.Equal(t, 0, c.Len())
}

func TestBattleCache_SetAndGet(t *testing.T) {
	c := NewBattleCache()
	c.Set("4f1c2c2e-battle", 42)

	id, ok := c.Get("4f1c2c2e-battle")
	require.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestBattleCache_Overwrite(t *testing.T) {
	c := NewBattleCache()
	c.Set("b1", 1)
	c.Set("b1", 100)

	id, ok := c.Get("b1")
	require.True(t, ok)
	assert.Equal(t, uint(100), id)
	assert.Equal(t, 1, c.Len())
}

func TestBattleCache_DeleteAndReset(t *testing.T) {
	c := NewBattleCache()
	c.Set("b1", 1)
	c.Set("b2", 2)
	c.Set("b3", 3)

	c.Delete("b1")
	c.Delete("nonexistent")
	_, ok := c.Get("b1")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())

	c.Set("b4", 4)
	_, ok = c.Get("b4")
	assert.True(t, ok, "cache must be usable after reset")
}

func TestBattleCache_Concurrent(t *testing.T) {
	c := NewBattleCache()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(3)
		key := fmt.Sprintf("battle-%d", i%26)
		go func() {
			defer wg.Done()
			c.Set(key, uint(i))
		}()
		go func() {
			defer wg.Done()
			c.Get(key)
		}()
		go func() {
			defer wg.Done()
			c.Delete(key)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 26)
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	assert.Equal(t, 0, c.Value())

	c.Inc()
	c.Add(4)
	assert.Equal(t, 5, c.Value())

	c.Set(10)
	assert.Equal(t, 10, c.Value())
}

func TestSafeCounter_Concurrent(t *testing.T) {
	var c SafeCounter
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Value())
}
