package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tabledef/internal/catalog"
	"github.com/JonMunkholm/tabledef/internal/config"
	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/logging"
	"github.com/JonMunkholm/tabledef/internal/store"
	"github.com/JonMunkholm/tabledef/internal/web"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"tables_dir", cfg.Tables.Dir,
		"servlet", cfg.Tables.Servlet,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"auth_enabled", cfg.Security.AuthEnabled(),
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL, store.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}
	defer backend.Close()
	slog.Info("connected to database", "driver", cfg.Database.Driver)

	cat := catalog.New(cfg.Tables.Dir, slog.Default())
	n, err := cat.Load()
	if err != nil {
		return err
	}
	slog.Info("tables registered", "dir", cat.Dir(), "count", n, "services", cat.Services())

	core.UpdateTimeout = cfg.Tables.UpdateTimeout
	limiter := core.NewUpdateLimiter(cfg.Tables.MaxConcurrentUpdates, cfg.Tables.UpdateWait)
	service := core.NewService(backend, core.WithUpdateLimiter(limiter))
	server := web.NewServer(service, cfg)
	slog.Info("update limits",
		"max_concurrent", limiter.MaxConcurrent(),
		"wait", cfg.Tables.UpdateWait,
		"timeout", cfg.Tables.UpdateTimeout,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	if cfg.Tables.Watch {
		g.Go(func() error { return cat.Watch(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// Handlers cut off by the deadline may still hold a transaction.
		if derr := service.Drain(shutdownCtx); derr != nil {
			slog.Warn("updates still running at shutdown", "error", derr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
