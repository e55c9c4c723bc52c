// Package fakeapi serves an in-memory /todos resource shaped like the
// public jsonplaceholder API, for offline use and tests.
package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/todosync/internal/model"
)

// Server holds the todos and routes requests to them.
type Server struct {
	mu     sync.Mutex
	todos  []model.Todo
	nextID int
	fail   map[string]int // method -> forced status

	logger *log.Logger
	router *mux.Router
}

// New returns a server seeded with todos.
func New(logger *log.Logger, seed ...model.Todo) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{logger: logger, fail: map[string]int{}}
	for _, t := range seed {
		s.todos = append(s.todos, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID
		}
	}
	s.nextID++

	r := mux.NewRouter()
	r.Use(s.logRequests, s.injectFailures)
	r.Methods(http.MethodGet).Path("/todos").HandlerFunc(s.list)
	r.Methods(http.MethodPost).Path("/todos").HandlerFunc(s.create)
	r.Methods(http.MethodGet).Path("/todos/{id:[0-9]+}").HandlerFunc(s.get)
	r.Methods(http.MethodPut).Path("/todos/{id:[0-9]+}").HandlerFunc(s.update)
	r.Methods(http.MethodDelete).Path("/todos/{id:[0-9]+}").HandlerFunc(s.delete)
	s.router = r
	return s
}

// DemoSeed is a small collection for `todo serve`.
func DemoSeed() []model.Todo {
	return []model.Todo{
		{ID: 1, Title: "delectus aut autem", Completed: false, OwnerID: 1},
		{ID: 2, Title: "quis ut nam facilis et officia qui", Completed: false, OwnerID: 1},
		{ID: 3, Title: "fugiat veniam minus", Completed: false, OwnerID: 1},
		{ID: 4, Title: "et porro tempora", Completed: true, OwnerID: 1},
		{ID: 5, Title: "laboriosam mollitia et enim quasi", Completed: false, OwnerID: 1},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// FailMethod makes every request with method answer status. The failure is
// sticky until cleared with status 0.
func (s *Server) FailMethod(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, method)
		return
	}
	s.fail[method] = status
}

// Todos returns a copy of the stored collection.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Todo(nil), s.todos...)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled", "method", r.Method, "url", r.URL, "duration", m.Duration, "status", m.Code,
			"request_id", r.Header.Get("X-Request-ID"))
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.fail[r.Method]
		s.mu.Unlock()
		if ok {
			http.Error(w, "injected failure", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]model.Todo{}, s.todos...)
	s.mu.Unlock()

	if v := r.URL.Query().Get("_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad _limit", http.StatusBadRequest)
			return
		}
		if n < len(out) {
			out = out[:n]
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		writeJSON(w, http.StatusOK, s.todos[i])
		return
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in model.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	t := model.Todo{ID: s.nextID, Title: in.Title, Completed: in.Completed, OwnerID: in.OwnerID}
	s.nextID++
	s.todos = append(s.todos, t)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var t model.Todo
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	t.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.todos[i] = t
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	s.mu.Lock()
	if i := s.index(id); i >= 0 {
		s.todos = append(s.todos[:i], s.todos[i+1:]...)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) index(id int) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
