// Package cache keeps fetched todo collections keyed by the request that
// produced them, so mutations can patch them in place instead of refetching.
package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/idilsaglam/todosync/internal/model"
)

// Key identifies a collection request.
type Key struct {
	Resource string
	Limit    int
}

func (k Key) String() string {
	if k.Limit > 0 {
		return fmt.Sprintf("%s?_limit=%d", k.Resource, k.Limit)
	}
	return k.Resource
}

type entry struct {
	todos     []model.Todo
	updatedAt time.Time
}

// Cache is a bounded, staleness-aware collection cache.
type Cache struct {
	mu        sync.Mutex
	entries   *lru.Cache[Key, entry]
	staleTime time.Duration
	now       func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a cache holding at most size collections. Entries older than
// staleTime are reported as stale; staleTime 0 makes every entry stale.
func New(size int, staleTime time.Duration, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	entries, err := lru.New[Key, entry](size)
	if err != nil {
		return nil, fmt.Errorf("new lru: %w", err)
	}
	c := &Cache{entries: entries, staleTime: staleTime, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Get returns a copy of the cached collection for k. ok is false on a miss;
// fresh is false when the entry is older than the stale time.
func (c *Cache) Get(k Key) (todos []model.Todo, ok, fresh bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(k)
	if !ok {
		return nil, false, false
	}
	return clone(e.todos), true, c.now().Sub(e.updatedAt) < c.staleTime
}

// Set stores todos under k.
func (c *Cache) Set(k Key, todos []model.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(k, entry{todos: clone(todos), updatedAt: c.now()})
}

// Patch replaces the collection under k with fn(old). A missing entry is
// patched as an empty collection. The patched collection is returned.
func (c *Cache) Patch(k Key, fn func([]model.Todo) []model.Todo) []model.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	var old []model.Todo
	if e, ok := c.entries.Get(k); ok {
		old = clone(e.todos)
	} else {
		old = []model.Todo{}
	}
	next := fn(old)
	c.entries.Add(k, entry{todos: clone(next), updatedAt: c.now()})
	return clone(next)
}

// Invalidate drops k.
func (c *Cache) Invalidate(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(k)
}

// Len reports the number of cached collections.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func clone(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	return out
}

// Append adds t to the collection. When t.ID is zero or already taken it is
// given max(ids)+1, since the server may echo a constant id for new records.
// The record as stored is returned through assigned.
func Append(t model.Todo, assigned *model.Todo) func([]model.Todo) []model.Todo {
	return func(old []model.Todo) []model.Todo {
		highest, taken := 0, false
		for _, o := range old {
			if o.ID > highest {
				highest = o.ID
			}
			if o.ID == t.ID {
				taken = true
			}
		}
		if t.ID == 0 || taken {
			t.ID = highest + 1
		}
		if assigned != nil {
			*assigned = t
		}
		return append(old, t)
	}
}

// Replace swaps the record with t's id for t.
func Replace(t model.Todo) func([]model.Todo) []model.Todo {
	return func(old []model.Todo) []model.Todo {
		for i, o := range old {
			if o.ID == t.ID {
				old[i] = t
			}
		}
		return old
	}
}

// Remove drops the record with id.
func Remove(id int) func([]model.Todo) []model.Todo {
	return func(old []model.Todo) []model.Todo {
		out := old[:0]
		for _, o := range old {
			if o.ID != id {
				out = append(out, o)
			}
		}
		return out
	}
}
