package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankguard/internal/domain"
	"bankguard/internal/storage"
)

func TestNewVelocityChecker(t *testing.T) {
	store := storage.NewInMemoryTransactionStore()

	t.Run("nil counter returns error", func(t *testing.T) {
		_, err := NewVelocityChecker(nil, time.Minute)
		require.Error(t, err)
	})

	t.Run("non-positive window returns error", func(t *testing.T) {
		_, err := NewVelocityChecker(store, 0)
		require.Error(t, err)
	})
}

func TestVelocityCheckerWindow(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemoryTransactionStore()
	clientID := uuid.New()
	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	insert := func(offset time.Duration) {
		require.NoError(t, store.Insert(ctx, domain.Transaction{
			ID:        uuid.New(),
			ClientID:  clientID,
			Amount:    decimal.NewFromInt(1000),
			Currency:  "ARS",
			Operation: domain.OperationPurchase,
			CreatedAt: asOf.Add(offset),
			Status:    domain.StatusPending,
		}))
	}

	insert(-61 * time.Second) // just outside the window
	insert(-60 * time.Second) // lower bound, inclusive
	insert(-30 * time.Second)
	insert(0)                // upper bound: the transaction itself
	insert(1 * time.Second)  // in the future relative to asOf

	checker, err := NewVelocityChecker(store, 60*time.Second)
	require.NoError(t, err)

	count, err := checker.Count(ctx, clientID, asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	t.Run("other clients are invisible", func(t *testing.T) {
		count, err := checker.Count(ctx, uuid.New(), asOf)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
