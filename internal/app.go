// Package internal provides the main application initialization and runtime
// logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/duetlabs/duet/internal/api"
	"github.com/duetlabs/duet/internal/credential"
	"github.com/duetlabs/duet/internal/importer"
	"github.com/duetlabs/duet/internal/journal"
	"github.com/duetlabs/duet/internal/mcpserver"
	"github.com/duetlabs/duet/internal/session"
	"github.com/duetlabs/duet/internal/sse"
	"github.com/duetlabs/duet/internal/store"
)

// credentialPersister adapts the SQLite store to the credential package's
// persistence contract.
type credentialPersister struct {
	db *store.DB
}

func (p credentialPersister) Load() (credential.Record, error) {
	row, err := p.db.LoadCredentials()
	if err != nil {
		return credential.Record{}, err
	}
	return credential.Record{
		AuthorPIN:   row.AuthorPIN,
		ViewerPIN:   row.ViewerPIN,
		ViewerLabel: row.ViewerLabel,
	}, nil
}

func (p credentialPersister) Save(rec credential.Record) error {
	return p.db.SaveCredentials(store.CredentialRow{
		AuthorPIN:   rec.AuthorPIN,
		ViewerPIN:   rec.ViewerPIN,
		ViewerLabel: rec.ViewerLabel,
	})
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("drafts_import", cfg.Drafts.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Credential core: store seeded on first boot, resolver, rotation.
	credStore, err := credential.NewStore(credentialPersister{db: db}, credential.Record{
		AuthorPIN:   cfg.Auth.AuthorPIN,
		ViewerPIN:   cfg.Auth.ViewerPIN,
		ViewerLabel: cfg.Auth.ViewerLabel,
	})
	if err != nil {
		return fmt.Errorf("init credentials: %w", err)
	}
	resolver := credential.NewResolver(credStore, logger)
	rotation := credential.NewManager(credStore, resolver, logger)

	// Session boundary.
	sessions := session.NewStore(cfg.Auth.SessionTTL)
	throttle := session.NewThrottle()

	// Live events and journal service.
	broker := sse.NewBroker()
	defer broker.Close()
	svc := journal.NewService(db, broker)

	// Build API router.
	handler := api.NewHandler(svc, resolver, rotation, credStore, sessions, throttle, broker)
	apiRouter := api.NewRouter(handler, sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Drafts importer.
	if cfg.Drafts.Enabled() {
		if err := os.MkdirAll(cfg.Drafts.Path, 0o755); err != nil {
			return fmt.Errorf("create drafts dir: %w", err)
		}
		g.Go(func() error {
			return importer.Watch(gCtx, svc, cfg.Drafts.Path, logger)
		})
	}

	// HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves journal tools over stdio until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// MCP talks JSON-RPC over stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	svc := journal.NewService(db, nil)
	return mcpserver.New(svc).ServeStdio()
}
