// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emales/gysd/internal/auth"
	authpg "github.com/emales/gysd/internal/auth/postgres"
	"github.com/emales/gysd/internal/config"
	"github.com/emales/gysd/internal/logging"
	"github.com/emales/gysd/internal/observability"
	"github.com/emales/gysd/internal/session"
	"github.com/emales/gysd/internal/store"
	"github.com/emales/gysd/internal/web"
	"github.com/emales/gysd/pkg/errutil"
)

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the GYSD API server: the JSON endpoints the dashboard talks to,
plus a separate observability listener for metrics and health probes.`,
		RunE: runServe,
	}

	cmd.Flags().String("http.addr", "", "API listen address (overrides config)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection string (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("gysd", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		errutil.LogError(logger, "database connect failed", err)
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)
	authSvc, err := auth.NewServiceWithLogger(users, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return err
	}

	sessions := session.NewManager()

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	}, sessions.Len)

	obsErrCh, err := obs.Start()
	if err != nil {
		errutil.LogError(logger, "observability server start failed", err)
		return err
	}

	api := web.New(authSvc, sessions, cfg.Session.MaxAge, cfg.Session.CookieSecure, obs.Metrics(), logger)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	apiErrCh := make(chan error, 1)
	go func() {
		logger.Info("api server started", "addr", cfg.HTTP.Addr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			apiErrCh <- serveErr
		}
	}()

	// Expiry is a predicate, not a background fact: somebody has to sweep.
	go func() {
		ticker := time.NewTicker(cfg.Session.PruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.PruneExpired(cfg.Session.MaxAge); n > 0 {
					logger.Info("pruned expired sessions", "count", n)
				}
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		errutil.LogError(logger, "api server failed", serveErr)
	case obsErr := <-obsErrCh:
		if obsErr != nil {
			errutil.LogError(logger, "observability server failed", obsErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "api server shutdown failed", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}

	logger.Info("server stopped")
	return nil
}
