package domain

import (
	"time"

	"github.com/google/uuid"
)

// RuleCode identifies the rule that condemned a transaction. The set is closed
// but extensible: adding a rule means adding a code here.
type RuleCode string

const (
	RuleAmountHigh   RuleCode = "AMOUNT_HIGH"
	RuleVelocityHigh RuleCode = "VELOCITY_HIGH"
)

// AuditAction is what the engine did in response to a triggered rule.
type AuditAction string

const ActionBlock AuditAction = "BLOCK"

// AuditRecord explains one rejection. Records are append-only and exist only
// for rejected transactions; approvals leave no trail. Keep it
// transport-agnostic so stores and sinks can fan out.
type AuditRecord struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	RuleCode      RuleCode
	RiskScore     int
	Action        AuditAction
	Detail        string
	CreatedAt     time.Time
}
