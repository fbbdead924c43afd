package auth

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/uniedit/apiclient/internal/shared/cache"
)

// DefaultStateTTL bounds how long a login may take between InitiateLogin and CompleteLogin.
const DefaultStateTTL = 10 * time.Minute

// StateStore defines the interface for OAuth state management.
type StateStore interface {
	Set(ctx context.Context, state string, data string) error
	Get(ctx context.Context, state string) (string, error)
	Delete(ctx context.Context, state string) error
}

// MemoryStateStore is an in-memory implementation of StateStore.
// Suitable for single-instance deployments; use the redis store otherwise.
type MemoryStateStore struct {
	states *cache.Store[string]
}

// NewMemoryStateStore creates a new in-memory state store.
func NewMemoryStateStore(ttl time.Duration, clock clockwork.Clock) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStateStore{
		states: cache.New[string](ttl, cache.WithClock(clock)),
	}
}

// Set stores a state with data.
func (s *MemoryStateStore) Set(_ context.Context, state string, data string) error {
	s.states.Set(state, data)
	return nil
}

// Get retrieves data for a state. Unknown and expired states are both ErrInvalidOAuthState.
func (s *MemoryStateStore) Get(_ context.Context, state string) (string, error) {
	data, ok := s.states.Get(state)
	if !ok {
		return "", ErrInvalidOAuthState
	}
	return data, nil
}

// Delete removes a state.
func (s *MemoryStateStore) Delete(_ context.Context, state string) error {
	s.states.Delete(state)
	return nil
}

var _ StateStore = (*MemoryStateStore)(nil)
