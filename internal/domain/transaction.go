package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus enumerates the transaction state machine:
// PENDING -> APPROVED | REJECTED. The terminal states never transition again,
// so the engine must treat anything not PENDING as out of scope.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
)

// OperationType is the closed set of supported operations.
type OperationType string

const (
	OperationPurchase       OperationType = "PURCHASE"
	OperationTransfer       OperationType = "TRANSFER"
	OperationWithdrawal     OperationType = "WITHDRAWAL"
	OperationServicePayment OperationType = "SERVICE_PAYMENT"
)

// Transaction is a financial transaction awaiting (or holding) a verdict.
// Amounts are decimal in the stated currency; no FX conversion happens anywhere
// in the engine.
type Transaction struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	Amount             decimal.Decimal
	Currency           string
	Operation          OperationType
	DestinationAccount string
	OriginIP           string
	CreatedAt          time.Time
	Status             TransactionStatus
}

// IsPending reports whether the engine is still allowed to write a verdict.
func (t Transaction) IsPending() bool {
	return t.Status == StatusPending
}
