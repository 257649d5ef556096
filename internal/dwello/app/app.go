package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/dwello/internal/dwello/http"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/drivers/postgres"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/drivers/sqlite"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	"github.com/aussiebroadwan/dwello/internal/dwello/throttle"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	metrics  *metrics.Metrics
	hasher   *cryptox.PasswordHasher
	limiter  throttle.Limiter
	redis    *throttle.Redis // nil unless REDIS_URL is set
	resolver *service.IdentityResolver

	// Services
	accountService      *service.AccountService
	userService         *service.UserService
	profileService      *service.ProfileService
	dealService         *service.DealService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "dwello",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initThrottle(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeDeps()
		return nil, err
	}

	if err := app.housekeepingService.Seed(context.Background()); err != nil {
		app.closeDeps()
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.housekeepingService.Start(); err != nil {
		return err
	}

	app.logger.Info("dwello starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.DBDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeDeps()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down dwello...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeDeps(); err != nil {
		return err
	}

	app.logger.Info("dwello stopped")
	return nil
}

func (app *Application) closeDeps() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	opts := sqlstore.Options{
		MaxOpenConns:   app.cfg.DBMaxOpenConns,
		AcquireTimeout: app.cfg.DBAcquireTimeout,
	}

	var (
		db  *sqlstore.Store
		err error
	)
	switch app.cfg.DBDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL, opts)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", db.Dialect().Name())
	return nil
}

// initThrottle picks the Redis throttle when REDIS_URL is set
func (app *Application) initThrottle() error {
	cfg := throttle.Config{
		MaxFailures: app.cfg.LoginMaxFailures,
		Window:      app.cfg.LoginFailureWindow,
	}

	if app.cfg.RedisURL == "" {
		app.limiter = throttle.NewMemory(cfg)
		app.logger.Info("login throttle in memory")
		return nil
	}

	r, err := throttle.NewRedisFromURL(app.cfg.RedisURL, cfg)
	if err != nil {
		return err
	}
	app.redis = r
	app.limiter = r
	app.logger.Info("login throttle on redis")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	sessions := &service.SessionManager{
		Store:   app.db,
		Tokens:  app.hasher,
		Metrics: app.metrics,
	}

	accounts, err := service.NewAccountService(app.db, app.hasher, sessions, app.limiter, app.metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize account service: %w", err)
	}
	app.accountService = accounts

	app.resolver = &service.IdentityResolver{Store: app.db}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher, Metrics: app.metrics}
	app.profileService = &service.ProfileService{Store: app.db, Metrics: app.metrics}
	app.dealService = &service.DealService{Store: app.db, Metrics: app.metrics}

	app.housekeepingService = &service.HousekeepingService{
		Store:    app.db,
		Hasher:   app.hasher,
		Metrics:  app.metrics,
		Logger:   app.logger,
		Schedule: app.cfg.HousekeepingSchedule,
		Admin: service.AdminSeed{
			Name:     app.cfg.Admin.Name,
			Email:    app.cfg.Admin.Email,
			Password: app.cfg.Admin.Password,
		},
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	var redisPing httpapi.Pinger
	if app.redis != nil {
		redisPing = app.redis
	}

	router := httpapi.NewRouter(BuildVersion, app.db, redisPing, app.metrics, app.logger)

	// Wire services to router
	router.Resolver = app.resolver
	router.AccountService = app.accountService
	router.UserService = app.userService
	router.ProfileService = app.profileService
	router.DealService = app.dealService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
