// Package app assembles the identity service: config, database, signing
// keys, services, and the HTTP server.
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

	httpapi "github.com/lockhaven/identity/internal/identity/http"
	"github.com/lockhaven/identity/internal/identity/service"
	"github.com/lockhaven/identity/internal/identity/store"
	"github.com/lockhaven/identity/internal/identity/store/drivers/sqlite"
	"github.com/lockhaven/identity/pkg/jwtx"
	"github.com/lockhaven/identity/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the identity service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer jwtx.Signer
	keys   *jwtx.KeySet

	authService        *service.AuthService
	userService        *service.UserService
	applicationService *service.ApplicationService
	roleService        *service.RoleService
	groupService       *service.GroupService
	permissionService  *service.PermissionService
	settingsService    *service.SettingsService
	bootstrapService   *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application from config. The database is migrated and the
// bootstrap admin is seeded before this returns.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, keys, err := initSigningKey(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer = signer
	app.keys = keys

	app.initServices()

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.EnsureBootstrapped(ctx); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains outstanding requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices() {
	app.permissionService = &service.PermissionService{Store: app.db}
	app.settingsService = &service.SettingsService{
		Store:             app.db,
		DefaultAccessTTL:  app.cfg.AccessTokenTTL,
		DefaultRefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.authService = &service.AuthService{
		Store:       app.db,
		Signer:      app.signer,
		Verifier:    jwtx.NewVerifier(app.keys, app.cfg.Issuer, app.signer.Alg()),
		Issuer:      app.cfg.Issuer,
		Permissions: app.permissionService,
		Settings:    app.settingsService,
	}

	app.userService = &service.UserService{Store: app.db}
	app.applicationService = &service.ApplicationService{Store: app.db}
	app.roleService = &service.RoleService{Store: app.db}
	app.groupService = &service.GroupService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminPassword: app.cfg.AdminPassword,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.authService.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplicationService = app.applicationService
	router.RoleService = app.roleService
	router.GroupService = app.groupService
	router.PermissionService = app.permissionService
	router.SettingsService = app.settingsService

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
