package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/uniedit/apiclient/internal/module/auth"
	"github.com/uniedit/apiclient/internal/module/user"
	"github.com/uniedit/apiclient/internal/shared/config"
	"github.com/uniedit/apiclient/internal/shared/metrics"
	"github.com/uniedit/apiclient/internal/shared/middleware"
)

// App represents the application.
type App struct {
	config  *config.Config
	router  *gin.Engine
	logger  *zap.Logger
	cleanup func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return nil, err
	}
	app.cleanup = cleanup
	return app, nil
}

func newApp(
	cfg *config.Config,
	log *zap.Logger,
	registry *prometheus.Registry,
	m *metrics.Metrics,
	userHandler *user.Handler,
	authHandler *auth.Handler,
) *App {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestID(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	v1 := r.Group("/api/v1")
	userHandler.RegisterRoutes(v1)
	authHandler.RegisterRoutes(v1)

	return &App{
		config: cfg,
		router: r,
		logger: log,
	}
}

// Router returns the HTTP handler.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stop releases the resources held by the application.
func (a *App) Stop() {
	a.logger.Info("stopping application")
	if a.cleanup != nil {
		a.cleanup()
	}
}
