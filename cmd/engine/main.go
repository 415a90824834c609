package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"bankguard/internal/audit"
	"bankguard/internal/engine"
	"bankguard/internal/platform/config"
	"bankguard/internal/platform/httpserver"
	"bankguard/internal/platform/logger"
	"bankguard/internal/platform/metrics"
	"bankguard/internal/storage/postgres"
	httptransport "bankguard/internal/transport/http"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// The fraud logic lives in internal/engine.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.StoreDSN)
	if err != nil {
		log.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// An unreachable store at startup is a configuration error; mid-run
	// connectivity loss is handled per-tick by the watch loop.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		log.Error("store unreachable at startup", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancel()

	transactions := postgres.NewTransactionStore(db)
	auditTrail := audit.NewService(postgres.NewAuditStore(db))
	m := metrics.New()

	velocity, err := engine.NewVelocityChecker(transactions, cfg.VelocityWindow)
	if err != nil {
		log.Error("build velocity checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	evaluator, err := engine.NewEvaluator(
		engine.AmountRule{Threshold: cfg.AmountThreshold},
		engine.VelocityRule{Counter: velocity, MaxCount: cfg.VelocityCountThreshold},
	)
	if err != nil {
		log.Error("build evaluator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	writer, err := engine.NewWriter(transactions, auditTrail, engine.WithWriterLogger(log))
	if err != nil {
		log.Error("build verdict writer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	worker, err := engine.NewWorker(transactions, evaluator, writer, cfg.PollInterval,
		engine.WithWorkerLogger(log),
		engine.WithWorkerMetrics(m),
	)
	if err != nil {
		log.Error("build worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.NewHandler(db, m))
	srv := httpserver.New(cfg.OpsAddr, router)

	log.Info("starting bankguard engine",
		slog.String("ops_addr", cfg.OpsAddr),
		slog.Duration("poll_interval", cfg.PollInterval),
		slog.String("amount_threshold", cfg.AmountThreshold.String()),
		slog.Duration("velocity_window", cfg.VelocityWindow),
		slog.Int("velocity_count_threshold", cfg.VelocityCountThreshold))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("engine stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("engine stopped")
}
