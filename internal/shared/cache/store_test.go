package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID string
}

func TestStore(t *testing.T) {
	t.Run("Set and Get", func(t *testing.T) {
		store := New[string](time.Minute)

		store.Set("key", "value")

		v, ok := store.Get("key")
		require.True(t, ok)
		assert.Equal(t, "value", v)
		assert.True(t, store.Has("key"))
	})

	t.Run("Get returns zero value for missing key", func(t *testing.T) {
		store := New[*user](time.Minute)

		v, ok := store.Get("missing")
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.False(t, store.Has("missing"))
	})

	t.Run("Non-positive timeout falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultTimeout, New[int](0).Timeout())
		assert.Equal(t, DefaultTimeout, New[int](-time.Second).Timeout())
		assert.Equal(t, time.Second, New[int](time.Second).Timeout())
	})

	t.Run("Delete removes entry", func(t *testing.T) {
		store := New[string](time.Minute)
		store.Set("key", "value")

		store.Delete("key")

		assert.False(t, store.Has("key"))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Delete of missing key is a no-op", func(t *testing.T) {
		store := New[string](time.Minute)
		store.Set("key", "value")

		store.Delete("other")

		assert.Equal(t, 1, store.Len())
	})

	t.Run("Clear removes all entries", func(t *testing.T) {
		store := New[string](time.Minute)
		store.Set("a", "1")
		store.Set("b", "2")

		store.Clear()

		assert.Equal(t, 0, store.Len())
		assert.False(t, store.Has("a"))
		assert.False(t, store.Has("b"))
	})
}

func TestStoreExpiry(t *testing.T) {
	t.Run("Entry is live before ttl and gone at ttl", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[string](time.Minute, WithClock(clock))

		store.SetWithTTL("key", "value", 10*time.Second)

		clock.Advance(10*time.Second - time.Nanosecond)
		v, ok := store.Get("key")
		require.True(t, ok)
		assert.Equal(t, "value", v)

		clock.Advance(time.Nanosecond)
		_, ok = store.Get("key")
		assert.False(t, ok)
	})

	t.Run("Expired entry stays in memory until observed", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[string](time.Second, WithClock(clock))
		store.Set("key", "value")

		clock.Advance(2 * time.Second)
		assert.Equal(t, 1, store.Len())

		assert.False(t, store.Has("key"))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Get evicts expired entry", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[string](time.Second, WithClock(clock))
		store.Set("key", "value")

		clock.Advance(time.Second)
		_, ok := store.Get("key")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Overwrite takes the new value and ttl", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[string](time.Hour, WithClock(clock))

		store.Set("key", "v1")
		store.SetWithTTL("key", "v2", time.Second)

		v, ok := store.Get("key")
		require.True(t, ok)
		assert.Equal(t, "v2", v)

		clock.Advance(time.Second)
		assert.False(t, store.Has("key"))
	})

	t.Run("Set refreshes expiry of existing entry", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[string](time.Second, WithClock(clock))

		store.Set("key", "v1")
		clock.Advance(900 * time.Millisecond)
		store.Set("key", "v2")
		clock.Advance(900 * time.Millisecond)

		v, ok := store.Get("key")
		require.True(t, ok)
		assert.Equal(t, "v2", v)
	})

	t.Run("Default timeout of 1000ms", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		store := New[*user](1000*time.Millisecond, WithClock(clock))

		u1 := &user{ID: "u1"}
		store.Set("u1", u1)

		clock.Advance(500 * time.Millisecond)
		v, ok := store.Get("u1")
		require.True(t, ok)
		assert.Same(t, u1, v)

		clock.Advance(1000 * time.Millisecond)
		v, ok = store.Get("u1")
		assert.False(t, ok)
		assert.Nil(t, v)

		clock.Advance(100 * time.Millisecond)
		assert.False(t, store.Has("u1"))
	})
}
