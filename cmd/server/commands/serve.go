package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayush/realestate-site/internal/auth"
	"github.com/ayush/realestate-site/internal/config"
	"github.com/ayush/realestate-site/internal/server"
	"github.com/ayush/realestate-site/internal/store"
	"github.com/ayush/realestate-site/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	// ── PostgreSQL ────────────────────────────────────────────
	pool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	pgStore := store.NewPostgresStore(pool)
	if err := pgStore.Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}

	// ── Sessions ─────────────────────────────────────────────
	sessionStore, closeSessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	// ── Images ───────────────────────────────────────────────
	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	views, err := web.Load()
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Logger:         logger,
		Users:          pgStore,
		Properties:     pgStore,
		Images:         images,
		Sessions:       auth.NewSessions(sessionStore),
		Hasher:         auth.NewBcryptHasher(0),
		Views:          views,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr,
			"session_backend", cfg.SessionBackend, "image_backend", cfg.ImageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
