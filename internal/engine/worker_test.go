package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"bankguard/internal/audit"
	"bankguard/internal/domain"
	"bankguard/internal/platform/metrics"
	"bankguard/internal/storage"
)

// WorkerSuite drives full fetch-evaluate-write passes against in-memory
// stores, exercising the rule pipeline end to end without the ticker.
type WorkerSuite struct {
	suite.Suite
	store      *storage.InMemoryTransactionStore
	auditStore *storage.InMemoryAuditStore
	worker     *Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.store = storage.NewInMemoryTransactionStore()
	s.auditStore = storage.NewInMemoryAuditStore()

	velocity, err := NewVelocityChecker(s.store, 60*time.Second)
	s.Require().NoError(err)
	evaluator, err := NewEvaluator(
		AmountRule{Threshold: decimal.NewFromInt(500_000)},
		VelocityRule{Counter: velocity, MaxCount: 3},
	)
	s.Require().NoError(err)
	writer, err := NewWriter(s.store, audit.NewService(s.auditStore))
	s.Require().NoError(err)

	s.worker, err = NewWorker(s.store, evaluator, writer, 5*time.Second,
		WithWorkerMetrics(metrics.New()))
	s.Require().NoError(err)
}

func (s *WorkerSuite) insert(clientID uuid.UUID, amount string, createdAt time.Time) domain.Transaction {
	tx := domain.Transaction{
		ID:        uuid.New(),
		ClientID:  clientID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "ARS",
		Operation: domain.OperationTransfer,
		CreatedAt: createdAt,
		Status:    domain.StatusPending,
	}
	s.Require().NoError(s.store.Insert(context.Background(), tx))
	return tx
}

func (s *WorkerSuite) statusOf(id uuid.UUID) domain.TransactionStatus {
	tx, err := s.store.FindByID(context.Background(), id)
	s.Require().NoError(err)
	return tx.Status
}

func (s *WorkerSuite) auditsOf(id uuid.UUID) []domain.AuditRecord {
	records, err := s.auditStore.ListByTransaction(context.Background(), id)
	s.Require().NoError(err)
	return records
}

func (s *WorkerSuite) TestConstructorValidation() {
	velocity, err := NewVelocityChecker(s.store, time.Minute)
	s.Require().NoError(err)
	evaluator, err := NewEvaluator(VelocityRule{Counter: velocity, MaxCount: 3})
	s.Require().NoError(err)
	writer, err := NewWriter(s.store, audit.NewService(s.auditStore))
	s.Require().NoError(err)

	_, err = NewWorker(nil, evaluator, writer, time.Second)
	s.Error(err)
	_, err = NewWorker(s.store, nil, writer, time.Second)
	s.Error(err)
	_, err = NewWorker(s.store, evaluator, nil, time.Second)
	s.Error(err)
	_, err = NewWorker(s.store, evaluator, writer, 0)
	s.Error(err)
}

// Lone transaction over the amount limit: rejected with a single AMOUNT_HIGH
// audit record.
func (s *WorkerSuite) TestHighAmountRejected() {
	tx := s.insert(uuid.New(), "600000", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	s.Require().NoError(s.worker.ProcessBatch(context.Background()))

	s.Equal(domain.StatusRejected, s.statusOf(tx.ID))
	records := s.auditsOf(tx.ID)
	s.Require().Len(records, 1)
	s.Equal(domain.RuleAmountHigh, records[0].RuleCode)
	s.Equal(domain.ActionBlock, records[0].Action)
}

// Four small transactions inside one minute: the first two pass, the third
// and fourth trip the velocity rule with window counts of 3 and 4.
func (s *WorkerSuite) TestVelocityBurstRejected() {
	clientID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := s.insert(clientID, "1000", base)
	second := s.insert(clientID, "1000", base.Add(10*time.Second))
	third := s.insert(clientID, "1000", base.Add(20*time.Second))
	fourth := s.insert(clientID, "1000", base.Add(59*time.Second))

	s.Require().NoError(s.worker.ProcessBatch(context.Background()))

	s.Equal(domain.StatusApproved, s.statusOf(first.ID))
	s.Equal(domain.StatusApproved, s.statusOf(second.ID))
	s.Equal(domain.StatusRejected, s.statusOf(third.ID))
	s.Equal(domain.StatusRejected, s.statusOf(fourth.ID))

	s.Empty(s.auditsOf(first.ID))
	s.Empty(s.auditsOf(second.ID))
	thirdRecords := s.auditsOf(third.ID)
	s.Require().Len(thirdRecords, 1)
	s.Equal(domain.RuleVelocityHigh, thirdRecords[0].RuleCode)
	s.Equal(95, thirdRecords[0].RiskScore)
	fourthRecords := s.auditsOf(fourth.ID)
	s.Require().Len(fourthRecords, 1)
	s.Equal(domain.RuleVelocityHigh, fourthRecords[0].RuleCode)
}

// A transaction failing the amount rule must never also carry a velocity
// audit record: the first matching rule owns the rejection.
func (s *WorkerSuite) TestSingleCauseRejection() {
	clientID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.insert(clientID, "1000", base.Add(time.Duration(i)*time.Second))
	}
	big := s.insert(clientID, "900000", base.Add(5*time.Second))

	s.Require().NoError(s.worker.ProcessBatch(context.Background()))

	records := s.auditsOf(big.ID)
	s.Require().Len(records, 1)
	s.Equal(domain.RuleAmountHigh, records[0].RuleCode)
}

// Clean transaction with no history: approved, no audit trail.
func (s *WorkerSuite) TestCleanTransactionApproved() {
	tx := s.insert(uuid.New(), "50000", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	s.Require().NoError(s.worker.ProcessBatch(context.Background()))

	s.Equal(domain.StatusApproved, s.statusOf(tx.ID))
	s.Empty(s.auditsOf(tx.ID))
}

func (s *WorkerSuite) TestEmptyBatchIsANoOp() {
	s.NoError(s.worker.ProcessBatch(context.Background()))
}

// Re-running the worker must not touch transactions that already carry a
// verdict: they are no longer fetched, and their audit trail stays as is.
func (s *WorkerSuite) TestRerunIsIdempotent() {
	ctx := context.Background()
	tx := s.insert(uuid.New(), "600000", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	s.Require().NoError(s.worker.ProcessBatch(ctx))
	s.Require().NoError(s.worker.ProcessBatch(ctx))
	s.Require().NoError(s.worker.ProcessBatch(ctx))

	s.Equal(domain.StatusRejected, s.statusOf(tx.ID))
	s.Len(s.auditsOf(tx.ID), 1, "re-runs must not accumulate audit records")
}

// A broken audit sink must not stop verdicts from landing.
func (s *WorkerSuite) TestAuditOutageStillWritesVerdicts() {
	s.auditStore.FailWith(storage.ErrAuditUnavailable)
	tx := s.insert(uuid.New(), "600000", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	s.Require().NoError(s.worker.ProcessBatch(context.Background()))

	s.Equal(domain.StatusRejected, s.statusOf(tx.ID))
	s.Empty(s.auditsOf(tx.ID))
}

type failingSource struct{}

func (failingSource) FetchPending(context.Context) ([]domain.Transaction, error) {
	return nil, errors.New("store unreachable")
}

// A fetch failure abandons the iteration; nothing is evaluated or written.
func (s *WorkerSuite) TestFetchFailureAbandonsIteration() {
	velocity, err := NewVelocityChecker(s.store, time.Minute)
	s.Require().NoError(err)
	evaluator, err := NewEvaluator(VelocityRule{Counter: velocity, MaxCount: 3})
	s.Require().NoError(err)
	writer, err := NewWriter(s.store, audit.NewService(s.auditStore))
	s.Require().NoError(err)
	worker, err := NewWorker(failingSource{}, evaluator, writer, time.Second)
	s.Require().NoError(err)

	err = worker.ProcessBatch(context.Background())
	s.Error(err)
	s.Contains(err.Error(), "store unreachable")
}

// Run exits promptly on cancellation and reports the context's error.
func (s *WorkerSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.worker.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		s.Fail("worker did not stop after cancellation")
	}
}
