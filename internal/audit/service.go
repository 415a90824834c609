// Package audit keeps the rejection trail. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/domain"
	"bankguard/internal/storage"
)

// Service appends audit records, filling in identity and timestamp defaults
// so callers only describe what happened.
type Service struct {
	store storage.AuditStore
	clock func() time.Time
}

type Option func(*Service)

// WithClock pins timestamps for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store storage.AuditStore, opts ...Option) *Service {
	s := &Service{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Append(ctx context.Context, record domain.AuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock()
	}
	if record.Action == "" {
		record.Action = domain.ActionBlock
	}
	return s.store.Append(ctx, record)
}

func (s *Service) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.AuditRecord, error) {
	return s.store.ListByTransaction(ctx, transactionID)
}
