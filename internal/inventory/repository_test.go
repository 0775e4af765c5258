package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrementIfAvailableGuard(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	locationID := uuid.New()
	require.NoError(t, repo.SetQuantity(ctx, productID, locationID, 5))

	// exact boundary succeeds
	ok, err := repo.DecrementIfAvailable(ctx, productID, locationID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	qty, exists, err := repo.Quantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 0, qty)

	// zero stock rejects any further decrement
	ok, err = repo.DecrementIfAvailable(ctx, productID, locationID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	qty, _, err = repo.Quantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, 0, qty, "rejected decrement must not change the cell")
}

func TestDecrementIfAvailableMissingRow(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)

	ok, err := repo.DecrementIfAvailable(context.Background(), uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetQuantityOverwritesExistingCell(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	locationID := uuid.New()
	require.NoError(t, repo.SetQuantity(ctx, productID, locationID, 3))
	require.NoError(t, repo.SetQuantity(ctx, productID, locationID, 9))

	qty, _, err := repo.Quantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, 9, qty)

	var count int64
	require.NoError(t, conn.Table("stock_levels").Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must not create a second row")
}

func TestSetQuantityRejectsNegative(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)

	err := repo.SetQuantity(context.Background(), uuid.New(), uuid.New(), -4)
	require.Error(t, err)
}

func TestIncrementOrCreateAccumulates(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	locationID := uuid.New()
	require.NoError(t, repo.IncrementOrCreate(ctx, productID, locationID, 4))
	require.NoError(t, repo.IncrementOrCreate(ctx, productID, locationID, 6))

	qty, _, err := repo.Quantity(ctx, productID, locationID)
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
}

func TestLevelWithMostStockOrdering(t *testing.T) {
	conn := setupLedgerTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	locA := uuid.New()
	locB := uuid.New()
	require.NoError(t, repo.SetQuantity(ctx, productID, locA, 3))
	require.NoError(t, repo.SetQuantity(ctx, productID, locB, 8))

	level, err := repo.LevelWithMostStock(ctx, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, locB, level.LocationID)
	assert.Equal(t, 8, level.Quantity)
}
