package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

func execution(id, strategy string, status domain.ExecutionStatus) *domain.ExecutionRecord {
	return &domain.ExecutionRecord{
		ExeID:        id,
		StrategyType: strategy,
		Assets:       []string{"BTC", "USDT"},
		Status:       status,
		Props:        map[string]string{"buyThreshold": "0.02"},
		Timestamp:    1_700_000_000_000_000,
	}
}

func TestAnalyticsStore_QueryExecutionsByStatus(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()

	require.NoError(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{
		execution("e1", "FTS", domain.StatusTerminated),
		execution("e2", "PTS", domain.StatusActive),
		execution("e3", "DTS", domain.StatusTerminated),
	}))

	got, err := store.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ExeID)
	assert.Equal(t, "e3", got[1].ExeID)
}

func TestAnalyticsStore_DuplicateExecution(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()

	require.NoError(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{execution("e1", "FTS", domain.StatusTerminated)}))

	err := store.InsertExecutions(ctx, []*domain.ExecutionRecord{execution("e1", "FTS", domain.StatusTerminated)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate rejects the whole batch
	err = store.InsertExecutions(ctx, []*domain.ExecutionRecord{
		execution("e2", "FTS", domain.StatusTerminated),
		execution("e2", "FTS", domain.StatusTerminated),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAnalyticsStore_InvalidInput(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{nil}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertWalletSnapshots(ctx, []*domain.WalletSnapshot{{}}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertOperations(ctx, []*domain.OperationEvent{{}}), storage.ErrInvalidInput)
}

func TestAnalyticsStore_WalletAndOperationsByRun(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()

	require.NoError(t, store.InsertWalletSnapshots(ctx, []*domain.WalletSnapshot{
		{ExeID: "e1", Timestamp: 2, WalletValue: decimal.NewFromInt(200)},
		{ExeID: "e2", Timestamp: 1, WalletValue: decimal.NewFromInt(50)},
		{ExeID: "e1", Timestamp: 1, WalletValue: decimal.NewFromInt(100)},
	}))
	require.NoError(t, store.InsertOperations(ctx, []*domain.OperationEvent{
		{ExeID: "e1", Timestamp: 1, Base: "BTC", Side: domain.SideBuy},
	}))

	wallet, err := store.QueryWallet(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, wallet, 2)
	assert.Equal(t, int64(2), wallet[0].Timestamp)

	ops, err := store.QueryOperations(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, ops, 1)

	empty, err := store.QueryWallet(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAnalyticsStore_ReturnsCopies(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()

	require.NoError(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{execution("e1", "FTS", domain.StatusTerminated)}))

	got, err := store.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	got[0].Assets[0] = "ETH"
	got[0].Props["buyThreshold"] = "changed"

	again, err := store.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	assert.Equal(t, "BTC", again[0].Assets[0])
	assert.Equal(t, "0.02", again[0].Props["buyThreshold"])
}

func TestAnalyticsStore_ConcurrentReads(t *testing.T) {
	store := NewAnalyticsStore()
	ctx := context.Background()
	require.NoError(t, store.InsertExecutions(ctx, []*domain.ExecutionRecord{execution("e1", "FTS", domain.StatusTerminated)}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.QueryExecutions(ctx, domain.StatusTerminated)
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	wg.Wait()
}
