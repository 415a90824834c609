package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bankguard/internal/domain"
	"bankguard/internal/engine/ports"
)

// Rejection is a rule verdict against a transaction: exactly one rule code,
// one risk score, one human-readable cause.
type Rejection struct {
	Code      domain.RuleCode
	RiskScore int
	Detail    string
}

// Rule is a deterministic predicate plus reason code. Returning a nil
// *Rejection means the rule did not fire. Rules do no I/O beyond what their
// injected collaborators provide.
type Rule interface {
	Code() domain.RuleCode
	Evaluate(ctx context.Context, tx domain.Transaction) (*Rejection, error)
}

// Rule risk scores. The amount score comes from the original BankGuard rule
// set; velocity bursts are scored as the more suspicious signal.
const (
	amountRiskScore   = 90
	velocityRiskScore = 95
)

// AmountRule rejects transactions strictly above the threshold in the
// transaction's stated currency. An amount exactly equal to the threshold
// passes.
type AmountRule struct {
	Threshold decimal.Decimal
}

func (r AmountRule) Code() domain.RuleCode {
	return domain.RuleAmountHigh
}

func (r AmountRule) Evaluate(_ context.Context, tx domain.Transaction) (*Rejection, error) {
	if !tx.Amount.GreaterThan(r.Threshold) {
		return nil, nil
	}
	return &Rejection{
		Code:      domain.RuleAmountHigh,
		RiskScore: amountRiskScore,
		Detail:    fmt.Sprintf("amount %s %s exceeds limit %s", tx.Amount.StringFixed(2), tx.Currency, r.Threshold.StringFixed(2)),
	}, nil
}

// VelocityRule rejects a transaction when the client's count of transactions
// inside the trailing window, the current transaction included, reaches
// MaxCount. The window is anchored on the transaction's own timestamp, not the
// wall clock, so the check is reproducible against historical data.
type VelocityRule struct {
	Counter  ports.VelocityCounter
	MaxCount int
}

func (r VelocityRule) Code() domain.RuleCode {
	return domain.RuleVelocityHigh
}

func (r VelocityRule) Evaluate(ctx context.Context, tx domain.Transaction) (*Rejection, error) {
	count, err := r.Counter.Count(ctx, tx.ClientID, tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("count recent transactions: %w", err)
	}
	if count < r.MaxCount {
		return nil, nil
	}
	return &Rejection{
		Code:      domain.RuleVelocityHigh,
		RiskScore: velocityRiskScore,
		Detail:    fmt.Sprintf("burst of %d transactions within the velocity window", count),
	}, nil
}
