// Package syncer applies user actions against the remote API and, once a
// call succeeds, mirrors the outcome into the server cache and the local
// store. A failed call leaves both untouched.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todosync/internal/api"
	"github.com/idilsaglam/todosync/internal/cache"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/store"
)

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrNotFound   = errors.New("todo not found")
)

// Remote is the subset of the API client the service needs.
type Remote interface {
	List(ctx context.Context, limit int) ([]model.Todo, error)
	Create(ctx context.Context, in model.CreateInput) (model.Todo, error)
	Update(ctx context.Context, t model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int) error
}

// Options tune the service.
type Options struct {
	Limit   int // page size for fetch-all; 0 fetches everything
	OwnerID int // owner of created todos

	// ReconcileIDs makes the optimistic add reuse the id the cache assigned.
	// When false a time-derived placeholder id is used and never reconciled.
	ReconcileIDs bool

	Logger *log.Logger
	Now    func() time.Time
}

// Service binds a remote, a cache and a store.
type Service struct {
	remote  Remote
	cache   *cache.Cache
	store   *store.Store
	key     cache.Key
	opts    Options
	logger  *log.Logger
	pending atomic.Int64
}

// New returns a Service. Owner id defaults to 1.
func New(remote Remote, c *cache.Cache, s *store.Store, opts Options) *Service {
	if opts.OwnerID == 0 {
		opts.OwnerID = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		remote: remote,
		cache:  c,
		store:  s,
		key:    cache.Key{Resource: api.Resource, Limit: opts.Limit},
		opts:   opts,
		logger: logger,
	}
}

// Store returns the store the service writes to.
func (s *Service) Store() *store.Store { return s.store }

// Pending reports how many remote calls are in flight.
func (s *Service) Pending() int { return int(s.pending.Load()) }

func (s *Service) track() func() {
	s.pending.Add(1)
	return func() { s.pending.Add(-1) }
}

// Load fills the store with the collection, serving a fresh cache entry
// without a network call.
func (s *Service) Load(ctx context.Context) error {
	if todos, ok, fresh := s.cache.Get(s.key); ok && fresh {
		s.logger.Debug("serving todos from cache", "key", s.key)
		s.send(store.SetAll{Todos: todos})
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh refetches the collection regardless of cache state. A failed
// refetch drops the cache entry and leaves the store as it was.
func (s *Service) Refresh(ctx context.Context) error {
	defer s.track()()
	todos, err := s.remote.List(ctx, s.opts.Limit)
	if err != nil {
		s.cache.Invalidate(s.key)
		s.logger.Warn("fetch todos failed", "err", err)
		return fmt.Errorf("load todos: %w", err)
	}
	s.cache.Set(s.key, todos)
	s.send(store.SetAll{Todos: todos})
	s.logger.Debug("todos loaded", "count", len(todos))
	return nil
}

// Create posts a new todo and adds it to the cache and the store. It
// returns the todo as the store holds it.
func (s *Service) Create(ctx context.Context, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, ErrEmptyTitle
	}

	done := s.track()
	created, err := s.remote.Create(ctx, model.CreateInput{Title: title, Completed: false, OwnerID: s.opts.OwnerID})
	done()
	if err != nil {
		s.logger.Warn("create todo failed", "title", title, "err", err)
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}

	var cached model.Todo
	s.cache.Patch(s.key, cache.Append(created, &cached))

	local := cached
	if !s.opts.ReconcileIDs {
		local = model.Todo{
			ID:        int(s.opts.Now().UnixMilli()),
			Title:     title,
			Completed: false,
			OwnerID:   s.opts.OwnerID,
		}
	}
	s.send(store.Add{Todo: local})
	s.logger.Debug("todo created", "id", local.ID, "server_id", created.ID)
	return local, nil
}

// Update sends the full record and replaces it in the cache and the store.
func (s *Service) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	done := s.track()
	echoed, err := s.remote.Update(ctx, t)
	done()
	if err != nil {
		s.logger.Warn("update todo failed", "id", t.ID, "err", err)
		return model.Todo{}, fmt.Errorf("update todo %d: %w", t.ID, err)
	}

	record := echoed
	if record.ID != t.ID {
		record = t
	}
	s.cache.Patch(s.key, cache.Replace(record))
	s.send(store.Update{Todo: record})
	s.logger.Debug("todo updated", "id", record.ID, "completed", record.Completed)
	return record, nil
}

// Toggle flips the completion flag of the todo with id.
func (s *Service) Toggle(ctx context.Context, id int) (model.Todo, error) {
	t, err := s.find(id)
	if err != nil {
		return model.Todo{}, err
	}
	t.Completed = !t.Completed
	return s.Update(ctx, t)
}

// Rename changes the title of the todo with id.
func (s *Service) Rename(ctx context.Context, id int, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, ErrEmptyTitle
	}
	t, err := s.find(id)
	if err != nil {
		return model.Todo{}, err
	}
	t.Title = title
	return s.Update(ctx, t)
}

// Delete removes the todo with id remotely, then from the cache and the store.
func (s *Service) Delete(ctx context.Context, id int) error {
	done := s.track()
	err := s.remote.Delete(ctx, id)
	done()
	if err != nil {
		s.logger.Warn("delete todo failed", "id", id, "err", err)
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	s.cache.Patch(s.key, cache.Remove(id))
	s.send(store.Delete{ID: id})
	s.logger.Debug("todo deleted", "id", id)
	return nil
}

// SetFilter changes the active filter. It never touches the remote.
func (s *Service) SetFilter(f model.Filter) {
	s.send(store.SetFilter{Filter: f})
}

func (s *Service) send(e store.Event) {
	s.logger.Debug("store transition", "event", store.EventName(e))
	s.store.Send(e)
}

func (s *Service) find(id int) (model.Todo, error) {
	for _, t := range s.store.Snapshot().Todos {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Todo{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}
