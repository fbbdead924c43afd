package app

import (
	"context"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/uniedit/apiclient/internal/adapter/outbound/helix"
	redisadapter "github.com/uniedit/apiclient/internal/adapter/outbound/redis"
	"github.com/uniedit/apiclient/internal/module/auth"
	"github.com/uniedit/apiclient/internal/module/auth/oauth"
	"github.com/uniedit/apiclient/internal/module/user"
	"github.com/uniedit/apiclient/internal/shared/cache"
	"github.com/uniedit/apiclient/internal/shared/config"
	"github.com/uniedit/apiclient/internal/shared/httpclient"
	"github.com/uniedit/apiclient/internal/shared/logger"
	"github.com/uniedit/apiclient/internal/shared/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideHTTPClient,
	ProvideRedisClient,
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New("apiclient", reg)
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRedisClient creates a Redis client. It returns nil when Redis is not
// configured or unreachable, in which case OAuth state stays in memory.
func ProvideRedisClient(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		log.Warn("redis connection failed, keeping oauth state in memory", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ===== Remote API Providers =====

// APISet provides the remote API client under both interfaces it serves.
var APISet = wire.NewSet(
	ProvideAPIClient,
	wire.Bind(new(user.Fetcher), new(*helix.Client)),
	wire.Bind(new(auth.API), new(*helix.Client)),
)

// ProvideAPIClient creates the remote API client.
func ProvideAPIClient(cfg *config.Config, httpClient *http.Client, m *metrics.Metrics, log *zap.Logger) *helix.Client {
	return helix.New(&helix.Config{
		BaseURL:             cfg.API.BaseURL,
		AuthBaseURL:         cfg.API.AuthBaseURL,
		ClientID:            cfg.API.ClientID,
		ClientSecret:        cfg.API.ClientSecret,
		FailureThreshold:    cfg.Breaker.FailureThreshold,
		BreakerTimeout:      cfg.Breaker.Timeout,
		MaxHalfOpenRequests: cfg.Breaker.MaxHalfOpenRequests,
	}, httpClient, m, log.Named("api"))
}

// ===== User Providers =====

// UserSet provides user lookup dependencies.
var UserSet = wire.NewSet(
	ProvideUserStore,
	ProvideResolver,
	user.NewHandler,
)

// ProvideUserStore creates the expiring user cache.
func ProvideUserStore(cfg *config.Config) *cache.Store[*user.User] {
	return cache.New[*user.User](cfg.Cache.Timeout)
}

// ProvideResolver creates the user resolver.
func ProvideResolver(store *cache.Store[*user.User], fetcher user.Fetcher, m *metrics.Metrics, log *zap.Logger) *user.Resolver {
	return user.NewResolver(store, fetcher, m, log.Named("users"))
}

// ===== Auth Providers =====

// AuthSet provides authorization flow dependencies.
var AuthSet = wire.NewSet(
	ProvideOAuthProvider,
	ProvideStateStore,
	ProvideAuthService,
	auth.NewHandler,
)

// ProvideOAuthProvider creates the OAuth provider.
func ProvideOAuthProvider(cfg *config.Config) *oauth.Provider {
	return oauth.NewProvider(&oauth.Config{
		ClientID:     cfg.API.ClientID,
		ClientSecret: cfg.API.ClientSecret,
		RedirectURL:  cfg.API.RedirectURL,
		Scopes:       cfg.API.Scopes,
		AuthBaseURL:  cfg.API.AuthBaseURL,
	})
}

// ProvideStateStore keeps OAuth state in Redis when available, in memory otherwise.
func ProvideStateStore(redis goredis.UniversalClient) auth.StateStore {
	if redis == nil {
		return auth.NewMemoryStateStore(auth.DefaultStateTTL, nil)
	}
	return redisadapter.NewOAuthStateStore(redis, auth.DefaultStateTTL)
}

// ProvideAuthService creates the auth service.
func ProvideAuthService(
	provider *oauth.Provider,
	stateStore auth.StateStore,
	api auth.API,
	users *user.Resolver,
	m *metrics.Metrics,
	log *zap.Logger,
) *auth.Service {
	return auth.NewService(provider, stateStore, api, users, m, log.Named("auth"))
}
