package user

import (
	"context"

	"github.com/uniedit/apiclient/internal/shared/cache"
	"github.com/uniedit/apiclient/internal/shared/metrics"
	"go.uber.org/zap"
)

const cacheName = "users"

// Fetcher loads user records from the remote API.
// Every returned user must carry its own ID.
type Fetcher interface {
	FetchUser(ctx context.Context, id string) (*User, error)
	FetchUsers(ctx context.Context, ids []string) ([]*User, error)
}

// Resolver serves user lookups from a local expiring cache and falls back to the
// remote API for ids that are missing or expired.
//
// Concurrent lookups of the same missing id are not coalesced: each one fetches.
type Resolver struct {
	store   *cache.Store[*User]
	fetcher Fetcher
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver creates a new user resolver. metrics may be nil.
func NewResolver(store *cache.Store[*User], fetcher Fetcher, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		metrics: m,
		logger:  logger,
	}
}

// Resolve returns the user with the given id. A live cached record is returned
// unless force is set; otherwise the user is fetched and cached.
func (r *Resolver) Resolve(ctx context.Context, id string, force bool) (*User, error) {
	if !force && r.store.Has(id) {
		if u, ok := r.store.Get(id); ok {
			r.recordHit()
			return u, nil
		}
	}
	r.recordMiss()

	u, err := r.fetcher.FetchUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	r.store.Set(u.ID, u)
	return u, nil
}

// ResolveMany returns the users for up to MaxBatchSize ids using at most one
// remote call.
//
// The result is NOT in input order. Cached users come first, in the order their
// ids appear in ids, followed by fetched users in the order the remote API
// returned them. Use SortByIDs when input order matters.
//
// Duplicate ids are not collapsed: a cached id yields its user once per
// occurrence and a missing id is requested once per occurrence.
//
// If the remote call fails, the error is returned as is and no users are
// returned, including those found in the cache.
func (r *Resolver) ResolveMany(ctx context.Context, ids []string, force bool) ([]*User, error) {
	if len(ids) > MaxBatchSize {
		return nil, ErrTooManyIDs
	}

	result := make([]*User, 0, len(ids))
	var toFetch []string

	for _, id := range ids {
		if !force {
			if u, ok := r.store.Get(id); ok {
				r.recordHit()
				result = append(result, u)
				continue
			}
		}
		r.recordMiss()
		toFetch = append(toFetch, id)
	}

	if len(toFetch) == 0 {
		return result, nil
	}

	r.logger.Debug("fetching users",
		zap.Int("requested", len(ids)),
		zap.Int("cached", len(result)),
		zap.Int("fetching", len(toFetch)),
	)

	fetched, err := r.fetcher.FetchUsers(ctx, toFetch)
	if err != nil {
		return nil, err
	}

	for _, u := range fetched {
		if u == nil {
			continue
		}
		r.store.Set(u.ID, u)
		result = append(result, u)
	}

	return result, nil
}

// Remember caches a user obtained outside of Resolve, using the default timeout.
func (r *Resolver) Remember(u *User) {
	if u == nil {
		return
	}
	r.store.Set(u.ID, u)
}

// Forget drops the cached record for id.
func (r *Resolver) Forget(id string) {
	r.store.Delete(id)
}

// Purge drops all cached records.
func (r *Resolver) Purge() {
	r.store.Clear()
}

func (r *Resolver) recordHit() {
	if r.metrics != nil {
		r.metrics.RecordCacheHit(cacheName)
	}
}

func (r *Resolver) recordMiss() {
	if r.metrics != nil {
		r.metrics.RecordCacheMiss(cacheName)
	}
}
