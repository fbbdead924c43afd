package helix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/uniedit/apiclient/internal/module/auth"
	"github.com/uniedit/apiclient/internal/module/user"
	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
	"github.com/uniedit/apiclient/internal/shared/metrics"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	endpointUsers    = "users"
	endpointValidate = "validate"
)

// Config holds remote API client configuration.
type Config struct {
	BaseURL      string
	AuthBaseURL  string
	ClientID     string
	ClientSecret string

	// TokenSource provides the app access token. When nil and ClientSecret is set,
	// a client credentials source against AuthBaseURL is used.
	TokenSource oauth2.TokenSource

	FailureThreshold    uint32
	BreakerTimeout      time.Duration
	MaxHalfOpenRequests uint32
}

// Client talks to the remote users API.
type Client struct {
	baseURL     string
	authBaseURL string
	clientID    string
	httpClient  *http.Client
	tokens      oauth2.TokenSource
	breaker     *gobreaker.CircuitBreaker[[]byte]
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// New creates a new API client. httpClient, m and logger may be nil.
func New(cfg *Config, httpClient *http.Client, m *metrics.Metrics, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens := cfg.TokenSource
	if tokens == nil && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimSuffix(cfg.AuthBaseURL, "/") + "/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		tokens = cc.TokenSource(ctx)
	}

	failureThreshold := cfg.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	c := &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		authBaseURL: strings.TrimSuffix(cfg.AuthBaseURL, "/"),
		clientID:    cfg.ClientID,
		httpClient:  httpClient,
		tokens:      tokens,
		metrics:     m,
		logger:      logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "remote-api",
		MaxRequests: cfg.MaxHalfOpenRequests,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// isSuccessful keeps client-side errors from tripping the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// FetchUser fetches a single user with the app access token.
func (c *Client) FetchUser(ctx context.Context, id string) (*user.User, error) {
	return c.fetchOne(ctx, "", id)
}

// FetchUserWithToken fetches a single user on behalf of a user access token.
func (c *Client) FetchUserWithToken(ctx context.Context, accessToken, id string) (*user.User, error) {
	return c.fetchOne(ctx, accessToken, id)
}

// FetchUsers fetches users by id with the app access token.
// Unknown ids are silently omitted by the remote API.
func (c *Client) FetchUsers(ctx context.Context, ids []string) ([]*user.User, error) {
	return c.getUsers(ctx, "", ids)
}

func (c *Client) fetchOne(ctx context.Context, accessToken, id string) (*user.User, error) {
	users, err := c.getUsers(ctx, accessToken, []string{id})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrUserNotFound
	}
	return users[0], nil
}

func (c *Client) getUsers(ctx context.Context, accessToken string, ids []string) ([]*user.User, error) {
	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build users request: %w", err)
	}

	if accessToken == "" {
		accessToken, err = c.appToken()
		if err != nil {
			return nil, err
		}
	}
	req.Header.Set("Client-Id", c.clientID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(endpointUsers, req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []*user.User `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := payload.Data[:0]
	for _, u := range payload.Data {
		if u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// ValidateToken reports the owner and scopes of an access token.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) (*auth.TokenInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authBaseURL+"/validate", nil)
	if err != nil {
		return nil, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+accessToken)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(endpointValidate, req)
	if err != nil {
		return nil, err
	}

	var info auth.TokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode token info: %w", err)
	}
	return &info, nil
}

func (c *Client) appToken() (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: app token: %v", sharederrors.ErrUnauthorized, err)
	}
	return token.AccessToken, nil
}

func (c *Client) do(endpoint string, req *http.Request) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		start := time.Now()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.record(endpoint, 0, start)
			return nil, fmt.Errorf("%s request: %w", endpoint, err)
		}
		defer resp.Body.Close()

		c.record(endpoint, resp.StatusCode, start)

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", endpoint, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(resp.StatusCode, data)
			c.logger.Warn("remote api error",
				zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode),
				zap.String("message", apiErr.Message),
			)
			return nil, apiErr
		}

		return data, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrUpstream, err)
	}
	return body, err
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(endpoint, status, time.Since(start))
	}
}

// Compile-time checks
var (
	_ user.Fetcher = (*Client)(nil)
	_ auth.API     = (*Client)(nil)
)
