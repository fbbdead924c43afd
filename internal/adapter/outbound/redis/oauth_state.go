package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/apiclient/internal/module/auth"
)

const oauthStateKeyPrefix = "oauth:state:"

// oauthStateStore keeps OAuth login states in Redis so any instance can
// complete a login started on another.
type oauthStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewOAuthStateStore creates a new OAuth state store adapter.
func NewOAuthStateStore(client redis.UniversalClient, ttl time.Duration) auth.StateStore {
	if ttl <= 0 {
		ttl = auth.DefaultStateTTL
	}
	return &oauthStateStore{client: client, ttl: ttl}
}

func (s *oauthStateStore) Set(ctx context.Context, state string, data string) error {
	return s.client.Set(ctx, oauthStateKeyPrefix+state, data, s.ttl).Err()
}

func (s *oauthStateStore) Get(ctx context.Context, state string) (string, error) {
	data, err := s.client.Get(ctx, oauthStateKeyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", auth.ErrInvalidOAuthState
		}
		return "", err
	}
	return data, nil
}

func (s *oauthStateStore) Delete(ctx context.Context, state string) error {
	return s.client.Del(ctx, oauthStateKeyPrefix+state).Err()
}

// Compile-time check
var _ auth.StateStore = (*oauthStateStore)(nil)
