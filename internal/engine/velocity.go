package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bankguard/internal/engine/ports"
)

// VelocityChecker counts a client's transactions in a trailing window against
// the durable store. Stateless aside from the query.
type VelocityChecker struct {
	counter ports.TransactionCounter
	window  time.Duration
}

func NewVelocityChecker(counter ports.TransactionCounter, window time.Duration) (*VelocityChecker, error) {
	if counter == nil {
		return nil, fmt.Errorf("transaction counter is required")
	}
	if window <= 0 {
		return nil, fmt.Errorf("velocity window must be positive, got %s", window)
	}
	return &VelocityChecker{counter: counter, window: window}, nil
}

// Count returns the number of the client's transactions in [asOf-window, asOf],
// both bounds inclusive.
func (c *VelocityChecker) Count(ctx context.Context, clientID uuid.UUID, asOf time.Time) (int, error) {
	return c.counter.CountByClientBetween(ctx, clientID, asOf.Add(-c.window), asOf)
}
