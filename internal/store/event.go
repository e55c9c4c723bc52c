package store

import "github.com/idilsaglam/todosync/internal/model"

// Event is one of the named transitions the store accepts.
type Event interface {
	eventName() string
}

// SetAll replaces the todo sequence and keeps the filter.
type SetAll struct{ Todos []model.Todo }

// Add appends a todo. Callers guarantee the id is not already present.
type Add struct{ Todo model.Todo }

// Update replaces the todo with the same id, if any.
type Update struct{ Todo model.Todo }

// Delete removes the todo with the given id, if any.
type Delete struct{ ID int }

// SetFilter replaces the active filter.
type SetFilter struct{ Filter model.Filter }

func (SetAll) eventName() string    { return "SET_TODOS" }
func (Add) eventName() string       { return "ADD_TODO" }
func (Update) eventName() string    { return "UPDATE_TODO" }
func (Delete) eventName() string    { return "DELETE_TODO" }
func (SetFilter) eventName() string { return "SET_FILTER" }

// EventName returns the wire-style name of e, for logs.
func EventName(e Event) string { return e.eventName() }

// Reduce derives the next snapshot from prev and e. It never modifies prev:
// every todo-changing transition builds a fresh slice.
func Reduce(prev Snapshot, e Event) Snapshot {
	next := prev
	switch ev := e.(type) {
	case SetAll:
		todos := make([]model.Todo, len(ev.Todos))
		copy(todos, ev.Todos)
		next.Todos = todos
	case Add:
		todos := make([]model.Todo, 0, len(prev.Todos)+1)
		todos = append(todos, prev.Todos...)
		next.Todos = append(todos, ev.Todo)
	case Update:
		todos := make([]model.Todo, len(prev.Todos))
		for i, t := range prev.Todos {
			if t.ID == ev.Todo.ID {
				t = ev.Todo
			}
			todos[i] = t
		}
		next.Todos = todos
	case Delete:
		todos := make([]model.Todo, 0, len(prev.Todos))
		for _, t := range prev.Todos {
			if t.ID != ev.ID {
				todos = append(todos, t)
			}
		}
		next.Todos = todos
	case SetFilter:
		next.Filter = ev.Filter
	}
	return next
}
