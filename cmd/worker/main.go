package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelaigent.app/agent/common/id"
	"travelaigent.app/agent/common/llm"
	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/common/otel"
	"travelaigent.app/agent/core/config"
	"travelaigent.app/agent/core/db"
	"travelaigent.app/agent/internal/agent"
	"travelaigent.app/agent/internal/inventory"
	"travelaigent.app/agent/internal/notify"
	"travelaigent.app/agent/internal/queue"
	"travelaigent.app/agent/internal/scorer"
	"travelaigent.app/agent/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeWorker)
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

	if err := id.Init(2); err != nil {
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
	orchestrator := agent.New(
		cfg.Search,
		cfg.Family,
		stores.Briefs(),
		stores.Deals(),
		stores.Activities(),
		buildSearcher(ctx, cfg),
		buildAnalyzer(cfg),
		buildNotifier(cfg),
	)

	consumer := queue.NewConsumer(rdb, cfg.Redis, func(ctx context.Context, trigger queue.Trigger) error {
		slog.InfoContext(ctx, "manual trigger received",
			"source", trigger.Source, "brief_id", trigger.BriefID)
		err := orchestrator.RunCycle(ctx)
		if errors.Is(err, agent.ErrCycleInFlight) {
			slog.InfoContext(ctx, "trigger ignored, cycle already running")
			return nil
		}
		return err
	})

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(ctx)
	}()

	interval := time.Duration(cfg.Search.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("worker started", "interval", interval, "env", cfg.Env)

	// First cycle runs immediately; after that the ticker takes over.
	runScheduled(ctx, orchestrator)

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down worker")
			return nil
		case err := <-consumerErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case <-ticker.C:
			runScheduled(ctx, orchestrator)
		}
	}
}

func runScheduled(ctx context.Context, orchestrator *agent.Orchestrator) {
	err := orchestrator.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, agent.ErrCycleInFlight):
		slog.InfoContext(ctx, "scheduled cycle skipped, previous cycle still running")
	case errors.Is(err, context.Canceled):
	default:
		slog.ErrorContext(ctx, "scheduled cycle failed", "error", err)
	}
}

// buildSearcher picks the real inventory client when credentials are
// configured, the deterministic mock otherwise.
func buildSearcher(ctx context.Context, cfg config.Config) inventory.Searcher {
	if cfg.Amadeus.Enabled() {
		client, err := inventory.NewClient(ctx, cfg.Amadeus, cfg.Search.MaxDealsPerBrief)
		if err == nil {
			slog.Info("using live inventory provider")
			return client
		}
		slog.Warn("inventory provider unavailable, falling back to mock data", "error", err)
	} else {
		slog.Info("inventory credentials absent, using mock data")
	}
	return inventory.NewMockSearcher(cfg.Family.PreferredAirport)
}

func buildAnalyzer(cfg config.Config) scorer.Analyzer {
	if cfg.Scorer.Enabled() {
		client, err := llm.New(llm.Config{
			Provider: cfg.Scorer.Provider,
			APIKey:   cfg.Scorer.APIKey,
			BaseURL:  cfg.Scorer.BaseURL,
			Model:    cfg.Scorer.Model,
		})
		if err == nil {
			slog.Info("using LLM deal scorer", "provider", cfg.Scorer.Provider, "model", cfg.Scorer.Model)
			return scorer.NewLLMScorer(client, cfg.Scorer, cfg.Family)
		}
		slog.Warn("LLM client unavailable, falling back to rule-based scorer", "error", err)
	} else {
		slog.Info("no LLM configured, using rule-based scorer")
	}
	return scorer.NewMockScorer()
}

func buildNotifier(cfg config.Config) notify.Notifier {
	if cfg.Telegram.Enabled() {
		slog.Info("using telegram notifier")
		return notify.NewTelegram(cfg.Telegram)
	}
	slog.Info("no notifier configured, alerts go to the log")
	return notify.NewLogNotifier()
}
