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

	httpapi "github.com/cliptube/cliptube/internal/accounts/http"
	"github.com/cliptube/cliptube/internal/accounts/media"
	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/internal/accounts/store"
	"github.com/cliptube/cliptube/internal/accounts/store/drivers/sqlite"
	"github.com/cliptube/cliptube/pkg/cryptox"
	"github.com/cliptube/cliptube/pkg/jwtx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	uploader media.Uploader

	sessionService *service.SessionService
	userService    *service.UserService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.MediaEndpoint == "" {
		return nil, errors.New("MEDIA_ENDPOINT must be set")
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMedia(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down accounts service...")

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

	app.logger.Info("accounts service stopped")
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

// initMedia connects the avatar/cover uploader to the object store.
func (app *Application) initMedia() error {
	uploader, err := media.NewMinioUploader(context.Background(), media.MinioConfig{
		Endpoint:      app.cfg.MediaEndpoint,
		AccessKey:     app.cfg.MediaAccessKey,
		SecretKey:     app.cfg.MediaSecretKey,
		Bucket:        app.cfg.MediaBucket,
		UseSSL:        app.cfg.MediaUseSSL,
		PublicBaseURL: app.cfg.MediaPublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}
	app.uploader = uploader

	app.logger.Info("media storage ready", "bucket", app.cfg.MediaBucket)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	accessSigner, err := jwtx.NewSignerHS256([]byte(app.cfg.AccessTokenSecret))
	if err != nil {
		return err
	}
	refreshSigner, err := jwtx.NewSignerHS256([]byte(app.cfg.RefreshTokenSecret))
	if err != nil {
		return err
	}
	refreshVerifier, err := jwtx.NewVerifierHS256([]byte(app.cfg.RefreshTokenSecret), jwtx.VerifyOptions{
		Issuer: app.cfg.Issuer,
		Leeway: 30 * time.Second,
	})
	if err != nil {
		return err
	}

	hasher := cryptox.NewHasher(app.cfg.PasswordHashCost)

	app.sessionService = &service.SessionService{
		Store:           app.db,
		Hasher:          hasher,
		AccessSigner:    accessSigner,
		RefreshSigner:   refreshSigner,
		RefreshVerifier: refreshVerifier,
		Issuer:          app.cfg.Issuer,
		AccessTTL:       app.cfg.AccessTokenTTL,
		RefreshTTL:      app.cfg.RefreshTokenTTL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: hasher,
	}

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	accessVerifier, _ := jwtx.NewVerifierHS256([]byte(app.cfg.AccessTokenSecret), jwtx.VerifyOptions{
		Issuer: app.cfg.Issuer,
		Leeway: 30 * time.Second,
	})

	router := httpapi.NewRouter(
		accessVerifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.Uploader = app.uploader
	router.CookieSecure = app.cfg.Env != "dev"
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
