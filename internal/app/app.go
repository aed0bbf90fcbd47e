package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/exam-prep-accounts/internal/config"
	"github.com/prperemyshlev/exam-prep-accounts/internal/handler"
	"github.com/prperemyshlev/exam-prep-accounts/internal/repository"
	"github.com/prperemyshlev/exam-prep-accounts/internal/service"
	"github.com/prperemyshlev/exam-prep-accounts/internal/utils"
	"github.com/prperemyshlev/exam-prep-accounts/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	serviceName     = "exam-prep-accounts"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	infra   Infrastructure
	config  *config.Config
	manager *service.Manager
	router  *gin.Engine
	server  *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	store := repository.NewStore(infra.SQLite())

	metrics, err := observability.NewAccountMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	manager := service.NewManager(
		store,
		utils.NewPasswordHasher(cfg.Auth.Secret, cfg.Auth.BCryptCost),
		utils.NewSessionTokenIssuer(cfg.Auth.Secret),
		newAttemptLimiter(infra, cfg),
		metrics,
		infra.Logger(),
		service.ManagerConfig{
			SessionTTL:    cfg.Auth.SessionTTL.Duration,
			RememberMeTTL: cfg.Auth.RememberMeTTL.Duration,
		},
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, manager, NewHealthChecker(infra), infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:   infra,
		config:  cfg,
		manager: manager,
		router:  router,
		server:  srv,
	}, nil
}

// newAttemptLimiter keeps login throttling in Redis when one is configured
func newAttemptLimiter(infra Infrastructure, cfg *config.Config) service.AttemptLimiter {
	if redis := infra.Redis(); redis != nil {
		return service.NewRedisAttemptLimiter(redis, cfg.Auth.LoginAttempts, cfg.Auth.LoginAttemptsSpan.Duration)
	}
	return service.NewMemoryAttemptLimiter(cfg.Auth.LoginAttempts, cfg.Auth.LoginAttemptsSpan.Duration)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Manager() *service.Manager {
	return a.manager
}

func setupRoutes(
	router *gin.Engine,
	manager service.AccountManager,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	authHandler := handler.NewAuthHandler(manager)
	accountHandler := handler.NewAccountHandler(manager)
	requireAccount := handler.RequireAccount(manager)

	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/logout-all", requireAccount, authHandler.LogoutAll)
			auth.GET("/me", requireAccount, authHandler.GetMe)
			auth.GET("/snapshot", authHandler.GetSnapshot)
		}

		api.PATCH("/account", requireAccount, accountHandler.UpdateAccount)

		progress := api.Group("/progress", requireAccount)
		{
			progress.GET("", accountHandler.GetProgress)
			progress.PATCH("", accountHandler.UpdateProgress)
			progress.GET("/stats", accountHandler.GetStats)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	if _, err := a.manager.PurgeExpiredSessions(ctx); err != nil {
		a.infra.Logger().Warn("Failed to purge expired sessions", zap.Error(err))
	}

	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("database", a.config.Storage.Path),
			zap.Bool("redis", a.infra.Redis() != nil),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	// stores close only after in-flight requests are done with them
	if err := a.infra.Shutdown(ctx); err != nil {
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
