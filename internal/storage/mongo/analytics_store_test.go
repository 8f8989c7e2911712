package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// setupTestStore starts a MongoDB container and returns a connected store.
func setupTestStore(t *testing.T) (*AnalyticsStore, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err, "failed to start mongo container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.URI = uri
	cfg.Database = "test"
	cfg.ConnectTimeout = 30 * time.Second

	client, err := Connect(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, client.EnsureIndexes(ctx))

	store := NewAnalyticsStore(client)
	cleanup := func() {
		_ = store.Close(ctx)
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return store, cleanup
}

func TestAnalyticsStore_Integration(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{
		{ExeID: "e1", StrategyType: "FTS", Assets: []string{"BTC", "USDT"}, Status: domain.StatusTerminated, Props: map[string]string{"window": "60"}, Timestamp: 1},
		{ExeID: "e2", StrategyType: "PTS", Assets: []string{"ETH", "USDT"}, Status: domain.StatusActive, Timestamp: 2},
	}))

	require.NoError(t, store.InsertWalletSnapshots(ctx, []*domain.WalletSnapshot{
		{
			ExeID: "e1", Timestamp: 10, WalletValue: decimal.NewFromInt(200),
			AssetStatuses: map[string]domain.AssetStatus{
				"BTC":  {Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)},
				"USDT": {Amount: decimal.NewFromInt(100), Price: decimal.NewFromInt(1)},
			},
		},
	}))

	require.NoError(t, store.InsertOperations(ctx, []*domain.OperationEvent{
		{ExeID: "e1", Timestamp: 11, Base: "BTC", Quote: "USDT", Side: domain.SideBuy,
			Amount: decimal.RequireFromString("0.5"), AmountSide: domain.BaseAmount, Price: decimal.NewFromInt(100)},
	}))

	t.Run("executions filtered by status", func(t *testing.T) {
		recs, err := store.QueryExecutions(ctx, domain.StatusTerminated)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "e1", recs[0].ExeID)
		assert.Equal(t, map[string]string{"window": "60"}, recs[0].Props)
	})

	t.Run("wallet by run", func(t *testing.T) {
		snaps, err := store.QueryWallet(ctx, "e1")
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.True(t, snaps[0].AssetStatuses["BTC"].Price.Equal(decimal.NewFromInt(100)))

		none, err := store.QueryWallet(ctx, "e2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("operations by run", func(t *testing.T) {
		ops, err := store.QueryOperations(ctx, "e1")
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, domain.SideBuy, ops[0].Side)
		assert.True(t, ops[0].Amount.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("duplicate execution id", func(t *testing.T) {
		err := store.InsertExecutions(ctx, []*domain.ExecutionRecord{
			{ExeID: "e1", StrategyType: "FTS", Assets: []string{"USDT"}, Status: domain.StatusTerminated, Timestamp: 3},
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("numeric stored as double and non-numeric", func(t *testing.T) {
		_, err := store.coll.InsertOne(ctx, bson.D{
			{Key: "analyticsType", Value: "wallet-analytics"},
			{Key: "exeId", Value: "e3"},
			{Key: "timestamp", Value: int64(5)},
			{Key: "walletValue", Value: 150.5},
			{Key: "assetStatuses", Value: bson.D{{Key: "USDT", Value: bson.D{{Key: "amount", Value: 150.5}, {Key: "price", Value: int32(1)}}}}},
		})
		require.NoError(t, err)

		snaps, err := store.QueryWallet(ctx, "e3")
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, 150.5, snaps[0].WalletValue.InexactFloat64())

		_, err = store.coll.InsertOne(ctx, bson.D{
			{Key: "analyticsType", Value: "wallet-analytics"},
			{Key: "exeId", Value: "e4"},
			{Key: "timestamp", Value: int64(5)},
			{Key: "walletValue", Value: "lots"},
		})
		require.NoError(t, err)

		_, err = store.QueryWallet(ctx, "e4")
		assert.ErrorIs(t, err, domain.ErrDataIntegrity)
	})
}
