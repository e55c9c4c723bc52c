// Package store holds the UI-visible todo list and active filter.
//
// A Store is created once per session and handed to whoever needs it.
// State only changes through Send, and every accepted transition is
// published synchronously to subscribers before Send returns.
package store

import (
	"sync"

	"github.com/idilsaglam/todosync/internal/model"
)

// Snapshot is an immutable view of the store. Callers must not modify Todos.
type Snapshot struct {
	Todos  []model.Todo
	Filter model.Filter
}

// Visible returns the todos passing the snapshot's filter.
func (s Snapshot) Visible() []model.Todo { return model.Apply(s.Todos, s.Filter) }

// Listener receives every new snapshot. It runs on the goroutine that called
// Send and must not call Send itself.
type Listener func(Snapshot)

type subscriber struct {
	id int
	fn Listener
}

// Store is the local reactive store.
type Store struct {
	sendMu sync.Mutex // serializes transitions and their notifications

	mu      sync.RWMutex
	snap    Snapshot
	version uint64
	subs    []subscriber
	nextID  int
	closed  bool

	memo struct {
		version uint64
		todos   []model.Todo
	}
}

// New returns an empty store with filter all.
func New() *Store {
	s := &Store{snap: Snapshot{Todos: []model.Todo{}, Filter: model.FilterAll}}
	s.memo.version = ^uint64(0)
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Send applies e and notifies subscribers. Sends after Close are ignored.
func (s *Store) Send(e Event) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.snap = Reduce(s.snap, e)
	s.version++
	snap := s.snap
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Subscribe registers fn for every future snapshot. The returned func
// removes it and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Store) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Visible returns the filtered todos of the current snapshot. The result is
// memoized until the next accepted transition.
func (s *Store) Visible() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memo.version != s.version {
		s.memo.todos = s.snap.Visible()
		s.memo.version = s.version
	}
	return s.memo.todos
}

// Close drops all subscribers and freezes the store.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
}
