package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/domain"
)

// In-memory stores back unit tests and local runs. They intentionally favor
// clarity over performance and mirror the PostgreSQL semantics exactly,
// including the conditional PENDING claim.

type InMemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]domain.Transaction
}

func NewInMemoryTransactionStore() *InMemoryTransactionStore {
	return &InMemoryTransactionStore{transactions: make(map[uuid.UUID]domain.Transaction)}
}

func (s *InMemoryTransactionStore) Insert(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = tx
	return nil
}

func (s *InMemoryTransactionStore) FindByID(_ context.Context, id uuid.UUID) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tx, ok := s.transactions[id]; ok {
		return tx, nil
	}
	return domain.Transaction{}, ErrNotFound
}

func (s *InMemoryTransactionStore) FetchPending(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []domain.Transaction
	for _, tx := range s.transactions {
		if tx.Status == domain.StatusPending {
			pending = append(pending, tx)
		}
	}
	return pending, nil
}

func (s *InMemoryTransactionStore) CountByClientBetween(_ context.Context, clientID uuid.UUID, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, tx := range s.transactions {
		if tx.ClientID != clientID {
			continue
		}
		// Inclusive on both ends, matching the SQL BETWEEN semantics.
		if !tx.CreatedAt.Before(from) && !tx.CreatedAt.After(to) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryTransactionStore) SetStatus(_ context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return false, ErrNotFound
	}
	if tx.Status != domain.StatusPending {
		return false, nil
	}
	tx.Status = status
	s.transactions[id] = tx
	return true, nil
}

type InMemoryClientStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]domain.Client
}

func NewInMemoryClientStore() *InMemoryClientStore {
	return &InMemoryClientStore{clients: make(map[uuid.UUID]domain.Client)}
}

func (s *InMemoryClientStore) Save(_ context.Context, client domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = client
	return nil
}

func (s *InMemoryClientStore) FindByID(_ context.Context, id uuid.UUID) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if client, ok := s.clients[id]; ok {
		return client, nil
	}
	return domain.Client{}, ErrNotFound
}

type InMemoryAuditStore struct {
	mu      sync.RWMutex
	records []domain.AuditRecord

	// failWith, when set, makes every Append fail. Tests use it to prove the
	// verdict write survives a broken audit trail.
	failWith error
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *InMemoryAuditStore) Append(_ context.Context, record domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryAuditStore) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.AuditRecord
	for _, record := range s.records {
		if record.TransactionID == transactionID {
			matched = append(matched, record)
		}
	}
	return matched, nil
}
