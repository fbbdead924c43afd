package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/apiclient/internal/module/auth/oauth"
	"github.com/uniedit/apiclient/internal/module/user"
	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
	"github.com/uniedit/apiclient/internal/shared/metrics"
	"go.uber.org/zap"
)

const loginStateData = "login"

// API is the part of the remote API the auth flows depend on.
type API interface {
	ValidateToken(ctx context.Context, accessToken string) (*TokenInfo, error)
	FetchUserWithToken(ctx context.Context, accessToken, id string) (*user.User, error)
}

// Service runs the authorization code flow and verifies user access tokens.
type Service struct {
	provider   *oauth.Provider
	stateStore StateStore
	api        API
	users      *user.Resolver
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewService creates a new auth service. m may be nil.
func NewService(
	provider *oauth.Provider,
	stateStore StateStore,
	api API,
	users *user.Resolver,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:   provider,
		stateStore: stateStore,
		api:        api,
		users:      users,
		metrics:    m,
		logger:     logger,
	}
}

// --- OAuth Operations ---

// AuthURL builds an authorization URL. A nil scopes slice requests the default scopes.
func (s *Service) AuthURL(state string, scopes []string, forceVerify bool) string {
	return s.provider.GetAuthURL(state, scopes, forceVerify)
}

// InitiateLogin starts the OAuth login flow.
func (s *Service) InitiateLogin(ctx context.Context, scopes []string, forceVerify bool) (*LoginResponse, error) {
	state := uuid.NewString()

	if err := s.stateStore.Set(ctx, state, loginStateData); err != nil {
		return nil, fmt.Errorf("store state: %w", err)
	}

	s.record("login_started")

	return &LoginResponse{
		AuthURL: s.provider.GetAuthURL(state, scopes, forceVerify),
		State:   state,
	}, nil
}

// CompleteLogin completes the OAuth login flow and verifies the issued token.
func (s *Service) CompleteLogin(ctx context.Context, code, state string) (*LoginResult, error) {
	data, err := s.stateStore.Get(ctx, state)
	if err != nil || data != loginStateData {
		s.record("login_failed")
		return nil, ErrInvalidOAuthState
	}
	defer func() {
		if err := s.stateStore.Delete(ctx, state); err != nil {
			s.logger.Warn("failed to delete oauth state", zap.Error(err))
		}
	}()

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.record("login_failed")
		s.logger.Warn("oauth code exchange failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidOAuthCode, err)
	}

	verification, err := s.Verify(ctx, token.AccessToken)
	if err != nil {
		s.record("login_failed")
		return nil, err
	}

	s.record("login_completed")

	return &LoginResult{
		Verification: verification,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// Verify validates a user access token, fetches its owner and caches the user
// record the same way the user resolver does.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Verification, error) {
	info, err := s.api.ValidateToken(ctx, accessToken)
	if err != nil {
		s.record("verify_failed")
		if errors.Is(err, sharederrors.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return nil, err
	}
	if info.UserID == "" {
		s.record("verify_failed")
		return nil, ErrAppToken
	}

	u, err := s.api.FetchUserWithToken(ctx, accessToken, info.UserID)
	if err != nil {
		s.record("verify_failed")
		return nil, err
	}

	s.users.Remember(u)
	s.record("verify_succeeded")

	s.logger.Debug("verified access token",
		zap.String("user_id", u.ID),
		zap.Strings("scopes", info.Scopes),
	)

	return &Verification{
		User:      u,
		Scopes:    info.Scopes,
		ExpiresIn: info.ExpiresIn,
	}, nil
}

func (s *Service) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordAuthEvent(event)
	}
}
