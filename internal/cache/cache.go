// Package cache holds lookups shared by the asynchronous storage writers.
package cache

import "sync"

// BattleCache maps battle UUIDs to their database IDs so turn rows can be
// written without reading the battle row back.
type BattleCache struct {
	mu      sync.RWMutex
	battles map[string]uint
}

func NewBattleCache() *BattleCache {
	return &BattleCache{
		battles: make(map[string]uint),
	}
}

// Get returns the database ID stored for battleID.
func (c *BattleCache) Get(battleID string) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.battles[battleID]
	return id, ok
}

func (c *BattleCache) Set(battleID string, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.battles[battleID] = id
}

func (c *BattleCache) Delete(battleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.battles, battleID)
}

func (c *BattleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.battles)
}

// Reset clears all entries.
func (c *BattleCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.battles = make(map[string]uint)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

// Add increments the counter by n.
func (c *SafeCounter) Add(n int) {
	c.mu.Lock()
	c.v += n
	c.mu.Unlock()
}
