// ABOUTME: TTL cache remembering recently handled transport events
// ABOUTME: Absorbs duplicate callback presses redelivered by the transport

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key     string
	expires time.Time
}

// Cache is a thread-safe, size-bounded seen-set with per-key TTL. Expired
// entries are swept opportunistically on writes; with a uniform TTL the
// insertion-ordered list always expires from the front, so the sweep is O(expired).
type Cache struct {
	mu      sync.Mutex
	elems   map[string]*list.Element
	order   *list.List // *entry values, oldest at front
	ttl     time.Duration
	maxSize int
}

// New creates a dedupe cache. Keys are forgotten after ttl, or earlier when
// the cache exceeds maxSize and the oldest entries are evicted.
func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		elems:   make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// CheckAndMark atomically checks whether key was seen within the TTL and marks
// it seen if not. Returns true for duplicates.
func (c *Cache) CheckAndMark(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep(now)

	if el, ok := c.elems[key]; ok {
		if now.Before(el.Value.(*entry).expires) {
			return true
		}
		// Expired but not yet swept (non-front): refresh in place
		el.Value.(*entry).expires = now.Add(c.ttl)
		c.order.MoveToBack(el)
		return false
	}

	if len(c.elems) >= c.maxSize {
		c.evictOldest()
	}

	c.elems[key] = c.order.PushBack(&entry{key: key, expires: now.Add(c.ttl)})
	return false
}

// Len returns the number of tracked keys, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elems)
}

// sweep drops expired entries from the front of the insertion order.
// Must be called with mu held.
func (c *Cache) sweep(now time.Time) {
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		e := front.Value.(*entry)
		if now.Before(e.expires) {
			return
		}
		c.order.Remove(front)
		delete(c.elems, e.key)
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	e := front.Value.(*entry)
	c.order.Remove(front)
	delete(c.elems, e.key)
}
