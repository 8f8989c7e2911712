package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
	"sim-dashboard/internal/storage/postgres"
)

func TestAnalyticsStore_Executions(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewAnalyticsStore(pool)
	ctx := context.Background()

	err := store.InsertExecutions(ctx, []*domain.ExecutionRecord{
		{ExeID: "e2", StrategyType: "PTS", Assets: []string{"ETH", "USDT"}, Status: domain.StatusTerminated, Timestamp: 2},
		{ExeID: "e1", StrategyType: "FTS", Assets: []string{"BTC", "USDT"}, Status: domain.StatusTerminated,
			Props: map[string]string{"window": "60", "threshold": "0.02"}, Timestamp: 1},
		{ExeID: "e3", StrategyType: "FTS", Assets: []string{"USDT"}, Status: domain.StatusPaused, Timestamp: 3},
	})
	require.NoError(t, err)

	recs, err := store.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "e2", recs[0].ExeID, "insertion order")
	assert.Equal(t, []string{"BTC", "USDT"}, recs[1].Assets)
	assert.Equal(t, map[string]string{"window": "60", "threshold": "0.02"}, recs[1].Props)
	assert.Empty(t, recs[0].Props)

	t.Run("duplicate rolls back whole batch", func(t *testing.T) {
		err := store.InsertExecutions(ctx, []*domain.ExecutionRecord{
			{ExeID: "e4", StrategyType: "DTS", Assets: []string{"USDT"}, Status: domain.StatusTerminated, Timestamp: 4},
			{ExeID: "e1", StrategyType: "FTS", Assets: []string{"USDT"}, Status: domain.StatusTerminated, Timestamp: 5},
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		recs, err := store.QueryExecutions(ctx, domain.StatusTerminated)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})
}

func TestAnalyticsStore_WalletAndOperations(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewAnalyticsStore(pool)
	ctx := context.Background()

	snaps := []*domain.WalletSnapshot{
		{
			ExeID: "e1", Timestamp: 20, WalletValue: decimal.RequireFromString("250.125"),
			AssetStatuses: map[string]domain.AssetStatus{
				"BTC":  {Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(150)},
				"USDT": {Amount: decimal.RequireFromString("100.125"), Price: decimal.NewFromInt(1)},
			},
		},
		{
			ExeID: "e1", Timestamp: 10, WalletValue: decimal.NewFromInt(200),
			AssetStatuses: map[string]domain.AssetStatus{
				"BTC":  {Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)},
				"USDT": {Amount: decimal.NewFromInt(100), Price: decimal.NewFromInt(1)},
			},
		},
	}
	require.NoError(t, store.InsertWalletSnapshots(ctx, snaps))

	got, err := store.QueryWallet(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(20), got[0].Timestamp)
	assert.True(t, got[0].WalletValue.Equal(decimal.RequireFromString("250.125")))
	assert.True(t, got[0].AssetStatuses["USDT"].Amount.Equal(decimal.RequireFromString("100.125")))

	none, err := store.QueryWallet(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, store.InsertOperations(ctx, []*domain.OperationEvent{
		{ExeID: "e1", Timestamp: 15, Base: "BTC", Quote: "USDT", Side: domain.SideSell,
			Amount: decimal.NewFromInt(20), AmountSide: domain.QuoteAmount, Price: decimal.NewFromInt(10)},
	}))

	ops, err := store.QueryOperations(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, domain.QuoteAmount, ops[0].AmountSide)
	assert.True(t, ops[0].Price.Equal(decimal.NewFromInt(10)))
}
