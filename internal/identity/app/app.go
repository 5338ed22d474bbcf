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

	httpapi "github.com/venturemesh/identity/internal/identity/http"
	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/internal/identity/store/drivers/sqlite"
	"github.com/venturemesh/identity/pkg/jwtx"
	"github.com/venturemesh/identity/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	keys     *jwtx.KeySet
	verifier jwtx.Verifier

	// Services
	personaService      *service.PersonaService
	ruleService         *service.RuleService
	onboardingService   *service.OnboardingService
	switchService       *service.SwitchService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initVerifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
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
	app.logger.Info("shutting down identity service...")

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

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initVerifier loads the verification keys, preferring the auth service's
// JWKS endpoint over a static PEM file.
func (app *Application) initVerifier() error {
	keys := jwtx.NewKeySet()

	switch {
	case app.cfg.JWKSURL != "":
		if err := keys.FetchJWKS(context.Background(), app.cfg.JWKSURL); err != nil {
			return fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		app.logger.Info("verification keys loaded from JWKS", "url", app.cfg.JWKSURL)

	case app.cfg.PublicKeyFile != "":
		pemBytes, err := os.ReadFile(app.cfg.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read public key file: %w", err)
		}
		if err := keys.AddPEM("static", pemBytes); err != nil {
			return fmt.Errorf("failed to parse public key: %w", err)
		}
		app.logger.Info("verification key loaded from file", "path", app.cfg.PublicKeyFile)
	}

	app.keys = keys
	app.verifier = jwtx.NewVerifier(keys, app.cfg.Issuer, app.cfg.Audience)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.personaService = &service.PersonaService{Store: app.db}
	app.ruleService = &service.RuleService{Store: app.db}
	app.onboardingService = &service.OnboardingService{Store: app.db}
	app.switchService = &service.SwitchService{
		Store:    app.db,
		Personas: app.personaService,
		Rules:    app.ruleService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.HistoryRetention,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.PersonaService = app.personaService
	router.RuleService = app.ruleService
	router.OnboardingService = app.onboardingService
	router.SwitchService = app.switchService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
