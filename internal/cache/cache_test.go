package cache

import (
	"testing"
	"time"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

var todosKey = Key{Resource: "todos", Limit: 10}

func newCache(t *testing.T, clock *fakeClock) *Cache {
	t.Helper()
	c, err := New(4, time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func TestGet_MissHitStale(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newCache(t, clock)

	_, ok, _ := c.Get(todosKey)
	assert.False(t, ok)

	c.Set(todosKey, []model.Todo{{ID: 1}})
	got, ok, fresh := c.Get(todosKey)
	assert.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, []model.Todo{{ID: 1}}, got)

	clock.t = clock.t.Add(2 * time.Minute)
	_, ok, fresh = c.Get(todosKey)
	assert.True(t, ok)
	assert.False(t, fresh)
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := newCache(t, &fakeClock{t: time.Now()})
	c.Set(todosKey, []model.Todo{{ID: 1, Title: "A"}})

	got, _, _ := c.Get(todosKey)
	got[0].Title = "mutated"

	again, _, _ := c.Get(todosKey)
	assert.Equal(t, "A", again[0].Title)
}

func TestPatch_MissingEntryStartsEmpty(t *testing.T) {
	c := newCache(t, &fakeClock{t: time.Now()})
	var assigned model.Todo
	got := c.Patch(todosKey, Append(model.Todo{ID: 201, Title: "new"}, &assigned))

	assert.Equal(t, 201, assigned.ID)
	assert.Equal(t, []model.Todo{{ID: 201, Title: "new"}}, got)
}

func TestAppend_AssignsNextIDOnCollision(t *testing.T) {
	tests := []struct {
		name   string
		echoed int
		want   int
	}{
		{"fresh server id kept", 201, 201},
		{"colliding id replaced", 2, 4},
		{"zero id replaced", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := []model.Todo{{ID: 1}, {ID: 3}, {ID: 2}}
			var assigned model.Todo
			got := Append(model.Todo{ID: tt.echoed, Title: "x"}, &assigned)(old)
			assert.Equal(t, tt.want, assigned.ID)
			assert.Equal(t, tt.want, got[len(got)-1].ID)
			assert.Len(t, got, 4)
		})
	}
}

func TestReplaceAndRemove(t *testing.T) {
	c := newCache(t, &fakeClock{t: time.Now()})
	c.Set(todosKey, []model.Todo{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	c.Patch(todosKey, Replace(model.Todo{ID: 2, Title: "B2", Completed: true}))
	got, _, _ := c.Get(todosKey)
	assert.Equal(t, []model.Todo{{ID: 1, Title: "A"}, {ID: 2, Title: "B2", Completed: true}}, got)

	c.Patch(todosKey, Remove(1))
	got, _, _ = c.Get(todosKey)
	assert.Equal(t, []model.Todo{{ID: 2, Title: "B2", Completed: true}}, got)

	c.Patch(todosKey, Remove(99))
	got, _, _ = c.Get(todosKey)
	assert.Len(t, got, 1)
}

func TestInvalidateAndEviction(t *testing.T) {
	c := newCache(t, &fakeClock{t: time.Now()})
	for i := 1; i <= 5; i++ {
		c.Set(Key{Resource: "todos", Limit: i}, nil)
	}
	assert.Equal(t, 4, c.Len())
	_, ok, _ := c.Get(Key{Resource: "todos", Limit: 1})
	assert.False(t, ok, "oldest entry should be evicted")

	c.Invalidate(Key{Resource: "todos", Limit: 5})
	assert.Equal(t, 3, c.Len())
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "todos?_limit=10", todosKey.String())
	assert.Equal(t, "todos", Key{Resource: "todos"}.String())
}
