package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	adapthttp "babytracker/internal/adapter/http"
	"babytracker/internal/adapter/memory"
	"babytracker/internal/adapter/postgres"
	"babytracker/internal/app"
	"babytracker/internal/config"
	"babytracker/internal/domain"
	"babytracker/internal/interpreter"
	"babytracker/internal/logging"
)

const sessionSweepInterval = time.Hour

// store is everything the services need from a storage backend.
type store interface {
	domain.UserRepository
	domain.BabyRepository
	domain.EventRepository
	domain.VoiceCommandRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(serve(cfg, log))
}

// serve runs the server and returns the process exit code. Deferred cleanup
// in run and the final log flush both happen before the caller exits.
func serve(cfg *config.Config, log *zap.Logger) int {
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, sessions, closeDB, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeDB() }()
	log.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	authSvc := app.NewAuthService(db, sessions, db).
		WithSessionTTL(cfg.SessionDuration()).
		WithBcryptCost(cfg.BcryptCost)
	svcs := adapthttp.Services{
		Auth:    authSvc,
		Events:  app.NewEventService(db, db),
		Voice:   app.NewVoiceService(db, db, db, interpreter.New(), log.Named("voice")),
		Summary: app.NewSummaryService(db),
	}

	if cfg.InitialUser != "" {
		if err := authSvc.CreateInitialUser(ctx, cfg.InitialUser, cfg.InitialPassword); err != nil {
			log.Info("initial user not created", zap.String("username", cfg.InitialUser), zap.Error(err))
		} else {
			log.Info("initial user created", zap.String("username", cfg.InitialUser))
		}
	}

	oidcConfig, err := setupOIDC(ctx, cfg)
	if err != nil {
		return err
	}

	go sweepSessions(ctx, sessions, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(svcs, oidcConfig, log.Named("http"), cfg.WebDir).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("sso", oidcConfig.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(cfg *config.Config) (store, domain.SessionRepository, func() error, error) {
	if cfg.StorageBackend == config.StoragePostgres {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db, postgres.NewSessionRepo(db), db.Close, nil
	}
	db := memory.New()
	return db, db.NewSessionRepo(), func() error { return nil }, nil
}

func setupOIDC(ctx context.Context, cfg *config.Config) (adapthttp.OIDCConfig, error) {
	if !cfg.OIDCEnabled() {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider %s: %w", cfg.OIDCIssuer, err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func sweepSessions(ctx context.Context, sessions domain.SessionRepository, log *zap.Logger) {
	t := time.NewTicker(sessionSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				log.Warn("delete expired sessions", zap.Error(err))
			}
		}
	}
}
