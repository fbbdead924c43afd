package helix

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/apiclient/internal/module/user"
	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
	"github.com/uniedit/apiclient/internal/shared/metrics"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, m *metrics.Metrics) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(&Config{
		BaseURL:          srv.URL + "/helix",
		AuthBaseURL:      srv.URL + "/oauth2",
		ClientID:         "client-id",
		TokenSource:      oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "app-token"}),
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	}, srv.Client(), m, nil)
}

func TestClient_FetchUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("sends ids and auth headers", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/helix/users", r.URL.Path)
			assert.Equal(t, []string{"b", "a"}, r.URL.Query()["id"])
			assert.Equal(t, "client-id", r.Header.Get("Client-Id"))
			assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[
				{"id":"a","login":"alice","display_name":"Alice","created_at":"2016-12-14T20:32:28Z"},
				{"id":"b","login":"bob","display_name":"Bob","created_at":"2017-01-02T10:00:00Z"}
			]}`))
		}, nil)

		users, err := client.FetchUsers(ctx, []string{"b", "a"})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "a", users[0].ID)
		assert.Equal(t, "alice", users[0].Login)
		assert.Equal(t, "Bob", users[1].DisplayName)
		assert.Equal(t, 2016, users[0].CreatedAt.Year())
	})

	t.Run("repeats duplicate ids", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, []string{"a", "a"}, r.URL.Query()["id"])
			_, _ = w.Write([]byte(`{"data":[{"id":"a"}]}`))
		}, nil)

		users, err := client.FetchUsers(ctx, []string{"a", "a"})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("drops null entries", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[null,{"id":"a"},null]}`))
		}, nil)

		users, err := client.FetchUsers(ctx, []string{"x", "a", "y"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "a", users[0].ID)
	})

	t.Run("translates error responses", func(t *testing.T) {
		tests := []struct {
			status int
			want   error
		}{
			{http.StatusBadRequest, sharederrors.ErrBadRequest},
			{http.StatusUnauthorized, sharederrors.ErrUnauthorized},
			{http.StatusNotFound, sharederrors.ErrNotFound},
			{http.StatusTooManyRequests, sharederrors.ErrRateLimited},
			{http.StatusServiceUnavailable, sharederrors.ErrUpstream},
		}

		for _, tt := range tests {
			t.Run(http.StatusText(tt.status), func(t *testing.T) {
				client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(`{"error":"Oops","status":0,"message":"something went wrong"}`))
				}, nil)

				_, err := client.FetchUsers(ctx, []string{"a"})
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.want)

				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, "something went wrong", apiErr.Message)
			})
		}
	})

	t.Run("records request metrics", func(t *testing.T) {
		m := metrics.New("test", prometheus.NewRegistry())
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}, m)

		_, err := client.FetchUsers(ctx, []string{"a"})
		require.NoError(t, err)

		assert.Equal(t, float64(1), testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues(endpointUsers, "2xx")))
	})
}

func TestClient_FetchUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the single user", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, []string{"a"}, r.URL.Query()["id"])
			_, _ = w.Write([]byte(`{"data":[{"id":"a","login":"alice"}]}`))
		}, nil)

		u, err := client.FetchUser(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Login)
	})

	t.Run("empty data means not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}, nil)

		_, err := client.FetchUser(ctx, "missing")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.ErrorIs(t, err, sharederrors.ErrNotFound)
	})

	t.Run("uses the user token when given", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":[{"id":"a","email":"a@example.com"}]}`))
		}, nil)

		u, err := client.FetchUserWithToken(ctx, "user-token", "a")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", u.Email)
	})
}

func TestClient_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("returns token info", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth2/validate", r.URL.Path)
			assert.Equal(t, "OAuth user-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"client_id":"client-id","login":"alice","scopes":["user:read:email"],"user_id":"a","expires_in":5520}`))
		}, nil)

		info, err := client.ValidateToken(ctx, "user-token")
		require.NoError(t, err)
		assert.Equal(t, "a", info.UserID)
		assert.Equal(t, "alice", info.Login)
		assert.Equal(t, []string{"user:read:email"}, info.Scopes)
		assert.Equal(t, 5520, info.ExpiresIn)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":401,"message":"invalid access token"}`))
		}, nil)

		_, err := client.ValidateToken(ctx, "bad")
		assert.ErrorIs(t, err, sharederrors.ErrUnauthorized)
	})
}

func TestClient_CircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("opens after consecutive server errors", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}, nil)

		for range 2 {
			_, err := client.FetchUsers(ctx, []string{"a"})
			require.Error(t, err)
		}

		_, err := client.FetchUsers(ctx, []string{"a"})
		assert.ErrorIs(t, err, sharederrors.ErrUpstream)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors do not open the breaker", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}, nil)

		for range 4 {
			_, err := client.FetchUsers(ctx, []string{"a"})
			assert.ErrorIs(t, err, sharederrors.ErrBadRequest)
		}
		assert.Equal(t, int32(4), calls.Load())
	})
}

func TestClient_AppTokenFromClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "secret", r.Form.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer issued-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"a"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := New(&Config{
		BaseURL:      srv.URL + "/helix",
		AuthBaseURL:  srv.URL + "/oauth2",
		ClientID:     "client-id",
		ClientSecret: "secret",
	}, srv.Client(), nil, nil)

	u, err := client.FetchUser(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", u.ID)
}
