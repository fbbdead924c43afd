package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTimeout is used when a store is created with a non-positive timeout.
const DefaultTimeout = time.Hour

// Store is an in-memory key-value store where every entry carries its own expiry.
//
// Expired entries are evicted lazily: Get and Has remove an expired entry when they
// observe it. There is no background sweep, so an expired entry may stay in memory
// until it is next looked up.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	timeout time.Duration
	clock   clockwork.Clock
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	clock clockwork.Clock
}

// WithClock sets the clock used to compute and check expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// New creates a store whose entries expire after timeout unless Set is given another ttl.
func New[V any](timeout time.Duration, opts ...Option) *Store[V] {
	o := &options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(o)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Store[V]{
		entries: make(map[string]entry[V]),
		timeout: timeout,
		clock:   o.clock,
	}
}

// Timeout returns the store-wide default ttl.
func (s *Store[V]) Timeout() time.Duration {
	return s.timeout
}

// Get returns the value stored under key if it is still live.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key.
func (s *Store[V]) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(key)
	return ok
}

// Set stores value under key using the default timeout.
func (s *Store[V]) Set(key string, value V) {
	s.SetWithTTL(key, value, s.timeout)
}

// SetWithTTL stores value under key, replacing any existing entry.
func (s *Store[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{
		value:     value,
		expiresAt: s.clock.Now().Add(ttl),
	}
}

// Delete removes the entry for key, if any.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Clear removes all entries.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
}

// Len returns the number of entries held in memory, expired ones included.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// lookup must be called with mu held.
func (s *Store[V]) lookup(key string) (entry[V], bool) {
	e, ok := s.entries[key]
	if !ok {
		return e, false
	}

	// Live while expiresAt is strictly in the future.
	if !e.expiresAt.After(s.clock.Now()) {
		delete(s.entries, key)
		return e, false
	}
	return e, true
}
