// Package app wires configuration, storage, the LLM provider and the
// tutoring services into a runnable HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/vault/internal/api"
	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/chat"
	"github.com/abhisek/vault/internal/config"
	"github.com/abhisek/vault/internal/content"
	"github.com/abhisek/vault/internal/gatekeeper"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/progress"
	"github.com/abhisek/vault/internal/quiz"
	"github.com/abhisek/vault/internal/store"
	"github.com/abhisek/vault/internal/userlock"
)

// shutdownGrace bounds how long in-flight requests may finish on exit.
const shutdownGrace = 20 * time.Second

// Options are the app's external dependencies.
type Options struct {
	Config  *config.Config
	Store   *store.Store
	Logger  *slog.Logger
	Version string

	// Provider overrides the configured LLM provider.
	Provider llm.Provider
}

// App is a fully wired server.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	handler http.Handler
}

// New builds every service and the HTTP router.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := opts.Provider
	if provider == nil {
		if err := cfg.LLM.Validate(); err != nil {
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		p, err := llm.NewProvider(ctx, cfg.LLM, opts.Store.EventRepo(), logger)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	gen := content.NewGenerator(provider, content.Config{
		MaxTokens:       cfg.Tutor.MaxTokens,
		Timeout:         cfg.Tutor.GenerationTimeout,
		DefaultLanguage: cfg.Tutor.DefaultLanguage,
	})
	locks := userlock.New()
	progressRepo := opts.Store.ProgressRepo()

	svc := api.Services{
		Auth:       auth.NewService(opts.Store.UserRepo(), auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Progress:   progress.NewService(progressRepo, locks),
		Gatekeeper: gatekeeper.NewService(gen, progressRepo, locks, logger),
		Quiz:       quiz.NewOrchestrator(gen, quiz.NewMemoryStore(), progressRepo, locks, nil, logger),
		Chat:       chat.NewService(gen, logger),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(svc, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     opts.Version,
		Logger:      logger,
	})

	return &App{cfg: cfg, logger: logger, handler: router}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr, "env", a.cfg.App.Env, "llm_provider", a.cfg.LLM.Provider)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
