package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/flockwatch/internal/config"
	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/service"
	"github.com/JonMunkholm/flockwatch/internal/store"
	"github.com/JonMunkholm/flockwatch/internal/web"
)

func main() {
	// Overload lets a local .env win over stale shell variables.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"export_source", exportSource(cfg.Export),
		"run_max_concurrent", cfg.Run.MaxConcurrent,
		"refresh_enabled", cfg.Refresh.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	db := store.New(pool)
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	// The auth id is a bearer secret: only a fingerprint is logged. Operators
	// read the full value with `flockwatch auth-id`.
	authID, err := db.InitializeReportDate(ctx)
	if err != nil {
		slog.Error("failed to initialize report date", "error", err)
		os.Exit(1)
	}
	slog.Info("scraper auth id ready", "auth_id_fingerprint", fingerprint(authID))

	svc, err := service.New(exporter.New(cfg.Export), db, service.Options{
		Persist:       cfg.Run.Persist,
		MaxConcurrent: cfg.Run.MaxConcurrent,
		MaxWait:       cfg.Run.MaxWaitTime,
		Timeout:       cfg.Run.Timeout,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(svc, db, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if cfg.Refresh.Enabled {
		go svc.StartRefreshScheduler(jobCtx, cfg.Refresh.Interval)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := svc.Status(); status.Active > 0 {
			slog.Info("waiting for runs to complete", "active", status.Active)
			if err := svc.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("runs did not complete in time", "error", err)
			} else {
				slog.Info("all runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

func exportSource(cfg config.ExportConfig) string {
	if cfg.FromDir() {
		return "dir"
	}
	return "http"
}

// fingerprint identifies a secret in logs by its last four characters.
func fingerprint(secret string) string {
	const shown = 4
	if len(secret) <= shown*2 {
		return "****"
	}
	return "****" + secret[len(secret)-shown:]
}
