// Package engine holds the fraud evaluation core: the ordered rule chain, the
// verdict writer, and the watch loop that drives them.
package engine

import (
	"context"
	"fmt"

	"bankguard/internal/domain"
)

// Outcome is the evaluator's decision for one transaction. Exactly one of
// Approved or Rejection is set.
type Outcome struct {
	Approved  bool
	Rejection *Rejection
}

// Evaluator runs rules in a fixed order and short-circuits on the first match,
// so a rejection always carries exactly one cause and rules later in the chain
// never pay their cost (the velocity rule's store round-trip in particular)
// for transactions already condemned.
type Evaluator struct {
	rules []Rule
}

func NewEvaluator(rules ...Rule) (*Evaluator, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}
	return &Evaluator{rules: rules}, nil
}

// Evaluate decides one transaction. A rule error aborts the evaluation; the
// caller must not write any verdict for the transaction in that case.
func (e *Evaluator) Evaluate(ctx context.Context, tx domain.Transaction) (Outcome, error) {
	for _, rule := range e.rules {
		rejection, err := rule.Evaluate(ctx, tx)
		if err != nil {
			return Outcome{}, fmt.Errorf("rule %s: %w", rule.Code(), err)
		}
		if rejection != nil {
			return Outcome{Rejection: rejection}, nil
		}
	}
	return Outcome{Approved: true}, nil
}
