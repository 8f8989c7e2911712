package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
	"sim-dashboard/internal/storage/memory"
)

func TestValidatingStore_PassesWellFormedRecords(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewAnalyticsStore()
	require.NoError(t, inner.InsertExecutions(ctx, []*domain.ExecutionRecord{{
		ExeID: "e1", StrategyType: "FTS", Assets: []string{"BTC", "USDT"}, Status: domain.StatusTerminated,
	}}))
	require.NoError(t, inner.InsertWalletSnapshots(ctx, []*domain.WalletSnapshot{{
		ExeID: "e1", Timestamp: 1, WalletValue: decimal.NewFromInt(1),
		AssetStatuses: map[string]domain.AssetStatus{"USDT": {Amount: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}},
	}}))

	s := storage.NewValidatingStore(inner)

	execs, err := s.QueryExecutions(ctx, domain.StatusTerminated)
	require.NoError(t, err)
	assert.Len(t, execs, 1)

	wallet, err := s.QueryWallet(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, wallet, 1)
}

func TestValidatingStore_RejectsMalformedOperation(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewAnalyticsStore()
	require.NoError(t, inner.InsertOperations(ctx, []*domain.OperationEvent{{
		ExeID: "e1", Timestamp: 1, Base: "BTC", Side: "HOLD", AmountSide: domain.BaseAmount,
	}}))

	_, err := storage.NewValidatingStore(inner).QueryOperations(ctx, "e1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataIntegrity))

	var ie *domain.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "side", ie.Field)
	assert.Equal(t, "e1", ie.ExeID)
}

func TestValidatingStore_RejectsEmptyAssetStatuses(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewAnalyticsStore()
	require.NoError(t, inner.InsertWalletSnapshots(ctx, []*domain.WalletSnapshot{{ExeID: "e1", Timestamp: 5}}))

	_, err := storage.NewValidatingStore(inner).QueryWallet(ctx, "e1")

	var ie *domain.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "assetStatuses", ie.Field)
}

func TestValidatingStore_RejectsInvalidExecution(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewAnalyticsStore()
	require.NoError(t, inner.InsertExecutions(ctx, []*domain.ExecutionRecord{{
		ExeID: "e1", StrategyType: "FTS", Assets: []string{"BTC", "BTC"}, Status: domain.StatusTerminated,
	}}))

	_, err := storage.NewValidatingStore(inner).QueryExecutions(ctx, domain.StatusTerminated)

	var ie *domain.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "assets", ie.Field)
}
