package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bankguard/internal/domain"
	"bankguard/internal/engine/ports"
	"bankguard/internal/platform/metrics"
)

// Worker is the watch loop: one batch pass per tick, forever, until the
// context is cancelled. A failed fetch abandons the iteration and waits for
// the next tick at the same flat interval.
type Worker struct {
	source    ports.PendingSource
	evaluator *Evaluator
	writer    *Writer
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithWorkerMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(source ports.PendingSource, evaluator *Evaluator, writer *Writer, interval time.Duration, opts ...WorkerOption) (*Worker, error) {
	if source == nil {
		return nil, fmt.Errorf("pending source is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("verdict writer is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	w := &Worker{
		source:    source,
		evaluator: evaluator,
		writer:    writer,
		interval:  interval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes one batch immediately, then one per tick until ctx is
// cancelled. Batch-level failures are logged, never fatal.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "batch abandoned",
				slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessBatch runs one fetch-evaluate-write pass. Exported so tests can step
// the loop without the ticker. Each transaction is an isolated unit of work:
// a failure on one row never rolls back or blocks verdicts already committed
// for earlier rows.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	start := time.Now()

	batch, err := w.source.FetchPending(ctx)
	if err != nil {
		if w.metrics != nil {
			w.metrics.IncrementFetchFailures()
		}
		return fmt.Errorf("fetch pending transactions: %w", err)
	}
	if len(batch) == 0 {
		if w.metrics != nil {
			w.metrics.ObserveBatch(0, time.Since(start))
		}
		return nil
	}

	for _, tx := range batch {
		// Cancellation is honored between transactions, never mid-write.
		if err := ctx.Err(); err != nil {
			return err
		}
		w.processOne(ctx, tx)
	}

	if w.metrics != nil {
		w.metrics.ObserveBatch(len(batch), time.Since(start))
	}
	return nil
}

func (w *Worker) processOne(ctx context.Context, tx domain.Transaction) {
	// The fetch query already filters on PENDING; this guard keeps the
	// at-most-one-verdict invariant even if a source hands us stale rows.
	if !tx.IsPending() {
		return
	}

	outcome, err := w.evaluator.Evaluate(ctx, tx)
	if err != nil {
		// No verdict is written on evaluation failure; the row stays PENDING
		// and is retried on a later tick.
		w.logger.ErrorContext(ctx, "evaluation failed, transaction left pending",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	result, err := w.writer.Write(ctx, tx, outcome)
	if err != nil {
		// Distinct from a never-evaluated PENDING row: this one was evaluated
		// and its verdict failed to land.
		if w.metrics != nil {
			w.metrics.IncrementVerdictWriteErrors()
		}
		w.logger.ErrorContext(ctx, "verdict write failed, transaction left pending",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("verdict", string(verdictStatus(outcome))),
			slog.String("error", err.Error()))
		return
	}
	if result.AlreadyDecided {
		w.logger.WarnContext(ctx, "transaction already decided by another writer",
			slog.String("transaction_id", tx.ID.String()))
		return
	}

	w.record(result, outcome)
	if outcome.Rejection != nil {
		w.logger.InfoContext(ctx, "transaction rejected",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("rule_code", string(outcome.Rejection.Code)),
			slog.Int("risk_score", outcome.Rejection.RiskScore),
			slog.String("detail", outcome.Rejection.Detail))
	} else {
		w.logger.DebugContext(ctx, "transaction approved",
			slog.String("transaction_id", tx.ID.String()))
	}
}

func (w *Worker) record(result WriteResult, outcome Outcome) {
	if w.metrics == nil {
		return
	}
	rule := "none"
	if outcome.Rejection != nil {
		rule = string(outcome.Rejection.Code)
		w.metrics.RecordRejectionScore(outcome.Rejection.RiskScore)
	}
	w.metrics.RecordVerdict(string(result.Status), rule)
	if result.AuditErr != nil {
		w.metrics.IncrementAuditWriteFailures()
	}
}

func verdictStatus(outcome Outcome) domain.TransactionStatus {
	if outcome.Rejection != nil {
		return domain.StatusRejected
	}
	return domain.StatusApproved
}
