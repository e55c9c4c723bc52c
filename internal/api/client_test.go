package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idilsaglam/todosync/internal/fakeapi"
	"github.com/idilsaglam/todosync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("todos", Options{})
	assert.Error(t, err)
}

func TestCRUDAgainstFakeAPI(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, fakeapi.New(nil, fakeapi.DemoSeed()...), Options{})

	todos, err := c.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, todos, 3)

	created, err := c.Create(ctx, model.CreateInput{Title: "write tests", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, created.ID)
	assert.Equal(t, "write tests", created.Title)

	created.Completed = true
	updated, err := c.Update(ctx, created)
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, c.Delete(ctx, created.ID))
	todos, err = c.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, todos, 5)
}

func TestRequestShape(t *testing.T) {
	var got *http.Request
	var body []byte
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"id":201,"title":"x","completed":false,"userId":1}`))
	})
	c := newTestClient(t, h, Options{Token: "secret"})

	_, err := c.Create(context.Background(), model.CreateInput{Title: "x", OwnerID: 1})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/todos", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, map[string]any{"title": "x", "completed": false, "userId": float64(1)}, sent)
}

func TestList_SendsLimit(t *testing.T) {
	var query string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})
	c := newTestClient(t, h, Options{})

	todos, err := c.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "_limit=10", query)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestFailuresAreRequestFailed(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, "boom", "boom"},
		{"not found empty body", http.StatusNotFound, "", "Not Found"},
		{"bad shape", http.StatusOK, `[{"id":"one"}]`, ""},
		{"not json", http.StatusOK, `<html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := newTestClient(t, h, Options{})

			_, err := c.List(context.Background(), 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRequestFailed)

			var re *RequestError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, "list", re.Op)
			assert.Equal(t, tt.status, re.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, re.Message)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, Options{})
	require.NoError(t, err)
	err = c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Zero(t, re.Status)
}

func TestDelete_IgnoresBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/todos/7", r.URL.Path)
		_, _ = w.Write([]byte(`not even json`))
	})
	c := newTestClient(t, h, Options{})
	assert.NoError(t, c.Delete(context.Background(), 7))
}

func TestCanceledContext(t *testing.T) {
	c := newTestClient(t, fakeapi.New(nil), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.List(ctx, 0)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
