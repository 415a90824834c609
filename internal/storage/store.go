package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/domain"
)

// Stores are interface-driven to keep the engine logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business code.

// TransactionStore is the engine's view of durable transactions. The engine is
// the sole writer of status; producers insert, dashboards only read.
type TransactionStore interface {
	Insert(ctx context.Context, tx domain.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error)

	// FetchPending returns every transaction still awaiting a verdict. An
	// empty batch is a normal result, not an error.
	FetchPending(ctx context.Context) ([]domain.Transaction, error)

	// CountByClientBetween counts a client's transactions with created_at in
	// [from, to], both bounds inclusive, regardless of status.
	CountByClientBetween(ctx context.Context, clientID uuid.UUID, from, to time.Time) (int, error)

	// SetStatus applies a terminal status iff the row is still PENDING and
	// reports whether this caller won the claim. A false return with nil error
	// means another writer already decided the transaction.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error)
}

// ClientStore holds client records. Read-only from the engine's perspective.
type ClientStore interface {
	Save(ctx context.Context, client domain.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Client, error)
}

// AuditStore is append-only. Implementations that cannot accept appends
// (missing table, disabled trail) return ErrAuditUnavailable so callers can
// degrade instead of failing the verdict.
type AuditStore interface {
	Append(ctx context.Context, record domain.AuditRecord) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.AuditRecord, error)
}
