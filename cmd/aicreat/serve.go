package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat/ai"
	"github.com/aicreat/aicreat/auth"
	"github.com/aicreat/aicreat/config"
	apihttp "github.com/aicreat/aicreat/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the AI CREAT HTTP server.

The database schema is created on startup unless --no-migrate is given.`,
	RunE: runServe,
}

var serveNoMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&serveNoMigrate, "no-migrate", false, "skip creating database tables")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, settings, !serveNoMigrate)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	slog.Info("connected to database", "host", settings.Database().Host, "db", settings.Database().Name)

	store, root, err := openStore(settings)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	tokens, err := auth.NewTokens(settings.Auth())
	if err != nil {
		return fmt.Errorf("create token service: %w", err)
	}

	registry := ai.NewRegistry(settings.AI())
	slog.Info("ai providers", "enabled", registry.Enabled(), "default", registry.Default())
	for _, p := range registry.Providers() {
		if p.Enabled {
			slog.Debug("ai provider", "provider", p.Name, "model", p.Model, "rpm", p.RequestsPerMinute)
		}
	}

	handler := apihttp.NewHandler(settings, apihttp.Deps{
		Repo:      db.Repo(),
		Storage:   store,
		Tokens:    tokens,
		Providers: registry,
	})

	server := &http.Server{
		Addr:         settings.Server().Addr(),
		Handler:      handler.Router(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", server.Addr, "env", settings.Server().Env, "prefix", settings.APIPrefix())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
		return err
	}
	return nil
}

