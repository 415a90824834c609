// Package ports defines the narrow interfaces the fraud engine depends on.
// They are declared here rather than in storage to keep the engine decoupled
// from any particular persistence choice.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/domain"
)

// PendingSource lists transactions still awaiting a verdict.
type PendingSource interface {
	FetchPending(ctx context.Context) ([]domain.Transaction, error)
}

// VerdictStore applies a terminal status transition. Implementations must
// guard on the row still being PENDING and report whether the claim was won.
type VerdictStore interface {
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error)
}

// AuditPort appends rejection audit records. Failures are tolerated by the
// caller; losing an audit row is acceptable, losing a verdict is not.
type AuditPort interface {
	Append(ctx context.Context, record domain.AuditRecord) error
}

// VelocityCounter reports how many transactions a client created in the
// trailing window ending at (and including) asOf. Counting is against the
// durable store, never the in-memory batch, so concurrently queued
// transactions across batches stay visible.
type VelocityCounter interface {
	Count(ctx context.Context, clientID uuid.UUID, asOf time.Time) (int, error)
}

// TransactionCounter is the slice of the transaction store the velocity
// checker needs.
type TransactionCounter interface {
	CountByClientBetween(ctx context.Context, clientID uuid.UUID, from, to time.Time) (int, error)
}
