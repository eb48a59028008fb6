package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyralabs/iamcore/internal/iam/audit"
	httpapi "github.com/kyralabs/iamcore/internal/iam/http"
	"github.com/kyralabs/iamcore/internal/iam/service"
	"github.com/kyralabs/iamcore/internal/iam/session"
	"github.com/kyralabs/iamcore/internal/iam/store"
	"github.com/kyralabs/iamcore/internal/iam/store/drivers/sqlite"
	"github.com/kyralabs/iamcore/pkg/cryptox"
	"github.com/kyralabs/iamcore/pkg/httpx"
	"github.com/kyralabs/iamcore/pkg/slogx"
	"github.com/kyralabs/iamcore/pkg/tokens"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the IAM service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	sessions *session.RedisStore // nil when no redis is configured

	tokenService *tokens.Service
	authService  *service.AuthService
	userService  *service.UserService
	handlers     *httpapi.Handlers

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "iam-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper path for password hashing.
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	tokenCfg, err := loadTokenConfig(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token keys: %w", err)
	}

	app.tokenService, err = tokens.NewService(tokenCfg,
		tokens.WithAccessTTL(cfg.AccessTTL),
		tokens.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	if cfg.RedisAddr != "" {
		app.sessions = session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	app.db = db
	return nil
}

func (app *Application) initServices() {
	auditSink := audit.NewLogger(app.logger)

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
		Audit:  auditSink,
	}
	if app.sessions != nil {
		app.authService.Sessions = app.sessions
	}

	app.userService = &service.UserService{
		Store: app.db,
		Audit: auditSink,
	}
}

func (app *Application) initHTTP() {
	app.handlers = httpapi.NewHandlers(httpapi.FactoryConfig{
		Auth:  app.authService,
		Users: app.userService,
		Roles: app.cfg.Roles,
		RateLimit: httpx.RateLimitConfig{
			RequestsPerWindow: app.cfg.RateLimitRequests,
			Window:            app.cfg.RateLimitWindow,
			Burst:             app.cfg.RateLimitRequests,
		},
	})

	app.router = httpapi.NewRouter(app.handlers, app.db, BuildVersion, app.logger)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("iam service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down iam service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.sessions != nil {
		if err := app.sessions.Close(); err != nil {
			app.logger.Error("error closing session store", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("iam service stopped")
	return nil
}
