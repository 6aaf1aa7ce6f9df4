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

	"travelaigent.app/agent/common/id"
	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/common/otel"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/core/db"
	agenthttp "travelaigent.app/agent/internal/http"
	"travelaigent.app/agent/internal/queue"
	"travelaigent.app/agent/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		return err
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		return err
	}
	if telemetry != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				slog.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	logger.Setup(cfg)

	if err := id.Init(1); err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	rdb, err := queue.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	stores := store.NewStores(database.Pool())
	producer := queue.NewProducer(rdb, cfg.Redis)
	handler := agenthttp.NewHandler(stores.Briefs(), stores.Deals(), stores.Activities(), producer)
	router := agenthttp.NewRouter(cfg, handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
