package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/domain"
	"bankguard/internal/engine/ports"
)

// Clock lets tests pin audit timestamps.
type Clock func() time.Time

// WriteResult distinguishes the outcomes the caller actually cares about:
// a committed verdict, a claim lost to another writer, and a committed
// rejection whose audit append failed. Only a failed status write surfaces as
// an error from Write.
type WriteResult struct {
	Status domain.TransactionStatus

	// AlreadyDecided is true when the row was no longer PENDING, meaning this
	// writer lost the claim and wrote nothing.
	AlreadyDecided bool

	// AuditErr is non-nil when the verdict committed but the audit record did
	// not. The rejection stands regardless.
	AuditErr error
}

// Writer applies evaluation outcomes as durable state transitions. The status
// write is mandatory; the audit append on rejection is best-effort.
type Writer struct {
	store  ports.VerdictStore
	audit  ports.AuditPort
	clock  Clock
	logger *slog.Logger
}

type WriterOption func(*Writer)

func WithWriterLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithWriterClock(clock Clock) WriterOption {
	return func(w *Writer) {
		if clock != nil {
			w.clock = clock
		}
	}
}

func NewWriter(store ports.VerdictStore, audit ports.AuditPort, opts ...WriterOption) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("verdict store is required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit port is required")
	}
	w := &Writer{
		store:  store,
		audit:  audit,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write commits the verdict for one transaction. The status update runs first
// and is the last durable action downstream readers may assume visible; the
// audit append happens only after a rejection claim succeeds and its failure
// is folded into the result, never returned as the operation's error.
func (w *Writer) Write(ctx context.Context, tx domain.Transaction, outcome Outcome) (WriteResult, error) {
	status := domain.StatusApproved
	if outcome.Rejection != nil {
		status = domain.StatusRejected
	}

	claimed, err := w.store.SetStatus(ctx, tx.ID, status)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write verdict for %s: %w", tx.ID, err)
	}
	if !claimed {
		return WriteResult{Status: status, AlreadyDecided: true}, nil
	}

	result := WriteResult{Status: status}
	if outcome.Rejection == nil {
		return result, nil
	}

	record := domain.AuditRecord{
		ID:            uuid.New(),
		TransactionID: tx.ID,
		RuleCode:      outcome.Rejection.Code,
		RiskScore:     outcome.Rejection.RiskScore,
		Action:        domain.ActionBlock,
		Detail:        outcome.Rejection.Detail,
		CreatedAt:     w.clock(),
	}
	if err := w.audit.Append(ctx, record); err != nil {
		// The verdict already committed; the trail is optional.
		result.AuditErr = err
		w.logger.WarnContext(ctx, "audit append failed after rejection",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("rule_code", string(record.RuleCode)),
			slog.String("error", err.Error()))
	}
	return result, nil
}
