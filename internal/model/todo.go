package model

import (
	"fmt"
	"strings"
)

// Todo is the domain model for a todo entry as the remote API stores it.
type Todo struct {
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
	OwnerID   int    `json:"userId" yaml:"userId"`
}

// CreateInput is the payload for a todo the server has not assigned an id to yet.
type CreateInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	OwnerID   int    `json:"userId"`
}

// Filter selects a view over the todo collection.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps user input onto a Filter. Empty input means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "pending":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Match reports whether t passes the filter. Unknown filters pass everything.
func (f Filter) Match(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return true
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	for i, x := range Filters {
		if x == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

func (f Filter) String() string { return string(f) }

// Apply returns the todos passing f, in their original order.
// The input slice is never modified; FilterAll returns it as is.
func Apply(todos []Todo, f Filter) []Todo {
	if f == FilterAll || f == "" {
		return todos
	}
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats counts completed and pending todos.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
