package fakeapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, rec.Body.Bytes()
}

func TestListWithLimit(t *testing.T) {
	s := New(nil, DemoSeed()...)
	rec, body := doJSON(t, s, http.MethodGet, "/todos?_limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Todo
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)

	rec, _ = doJSON(t, s, http.MethodGet, "/todos?_limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAssignsNextID(t *testing.T) {
	s := New(nil, DemoSeed()...)
	rec, body := doJSON(t, s, http.MethodPost, "/todos", `{"title":"new","completed":false,"userId":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Todo
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, model.Todo{ID: 6, Title: "new", OwnerID: 1}, got)
	assert.Len(t, s.Todos(), 6)
}

func TestUpdateGetDelete(t *testing.T) {
	s := New(nil, DemoSeed()...)

	rec, _ := doJSON(t, s, http.MethodPut, "/todos/2", `{"id":2,"title":"changed","completed":true,"userId":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, s, http.MethodGet, "/todos/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Todo
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Completed)
	assert.Equal(t, "changed", got.Title)

	rec, _ = doJSON(t, s, http.MethodPut, "/todos/99", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, s, http.MethodDelete, "/todos/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, s, http.MethodGet, "/todos/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFailMethod(t *testing.T) {
	s := New(nil)
	s.FailMethod(http.MethodGet, http.StatusServiceUnavailable)
	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, s, http.MethodGet, "/todos", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "request %d", i)
	}
	rec, _ := doJSON(t, s, http.MethodPost, "/todos", `{"title":"x","completed":false,"userId":1}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "other methods pass through")

	s.FailMethod(http.MethodGet, 0)
	rec, _ = doJSON(t, s, http.MethodGet, "/todos", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, New(nil, DemoSeed()...)) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/todos")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
