package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/series"
)

func walletTable() *series.WalletTable {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &series.WalletTable{
		ExeID:  "run-1",
		Assets: []string{"BTC", "USDT"},
		Quote:  "USDT",
		Rows: []series.WalletRow{
			{Timestamp: t0, Amounts: []float64{1, 100.9}, Prices: []float64{100, 1}, WalletValue: 200.9, Baseline: 200.9},
			{Timestamp: t0.Add(time.Hour), Amounts: []float64{0.5, 180.2}, Prices: []float64{160.5, 1}, WalletValue: 260.45, Baseline: 261.4},
		},
	}
}

func opsTable(rows ...series.OperationRow) *series.OperationTable {
	return &series.OperationTable{ExeID: "run-1", Rows: rows}
}

func TestEndpointSummary(t *testing.T) {
	wt := walletTable()

	initial, err := EndpointSummary(wt, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), initial.TotalValue)
	assert.Equal(t, []Position{{"BTC", 1, 100}, {"USDT", 100.9, 1}}, initial.Positions)

	final, err := EndpointSummary(wt, wt.Len()-1)
	require.NoError(t, err)
	assert.Equal(t, int64(260), final.TotalValue)
	assert.Equal(t, 1, final.Index)
}

func TestEndpointSummary_OutOfRange(t *testing.T) {
	_, err := EndpointSummary(walletTable(), 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = EndpointSummary(walletTable(), -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestComputeTradeStats_BuyAndQuoteSell(t *testing.T) {
	ops := opsTable(
		series.OperationRow{Base: "BTC", Side: domain.SideBuy, Amount: 2, Price: 10},
		series.OperationRow{Base: "BTC", Side: domain.SideSell, Amount: -2, Price: 10},
	)

	stats := ComputeTradeStats(ops, "BTC")
	assert.Equal(t, 1, stats.BuyCount)
	assert.Equal(t, 1, stats.SellCount)
	require.NotNil(t, stats.VWAPBuy)
	require.NotNil(t, stats.VWAPSell)
	assert.Equal(t, 10.0, *stats.VWAPBuy)
	assert.Equal(t, 10.0, *stats.VWAPSell)
}

func TestComputeTradeStats_NoSells(t *testing.T) {
	ops := opsTable(series.OperationRow{Base: "BTC", Side: domain.SideBuy, Amount: 1, Price: 42})

	stats := ComputeTradeStats(ops, "BTC")
	assert.Equal(t, 0, stats.SellCount)
	assert.Nil(t, stats.VWAPSell)
	require.NotNil(t, stats.VWAPBuy)
	assert.Equal(t, 42.0, *stats.VWAPBuy)
}

func TestComputeTradeStats_NoTradesForAsset(t *testing.T) {
	stats := ComputeTradeStats(opsTable(), "ETH")
	assert.Equal(t, TradeStats{Asset: "ETH"}, stats)
}

func TestComputeTradeStats_VWAPWithinPriceRange(t *testing.T) {
	ops := opsTable(
		series.OperationRow{Base: "ETH", Side: domain.SideBuy, Amount: 1, Price: 90},
		series.OperationRow{Base: "ETH", Side: domain.SideBuy, Amount: 3, Price: 110},
		series.OperationRow{Base: "ETH", Side: domain.SideSell, Amount: -0.5, Price: 120},
		series.OperationRow{Base: "ETH", Side: domain.SideSell, Amount: -1.5, Price: 100},
		series.OperationRow{Base: "BTC", Side: domain.SideSell, Amount: -7, Price: 5000},
	)

	stats := ComputeTradeStats(ops, "ETH")
	require.NotNil(t, stats.VWAPBuy)
	require.NotNil(t, stats.VWAPSell)

	assert.InDelta(t, 105.0, *stats.VWAPBuy, 1e-9)
	assert.InDelta(t, 105.0, *stats.VWAPSell, 1e-9)
	assert.GreaterOrEqual(t, *stats.VWAPBuy, 90.0)
	assert.LessOrEqual(t, *stats.VWAPBuy, 110.0)
	assert.GreaterOrEqual(t, *stats.VWAPSell, 100.0)
	assert.LessOrEqual(t, *stats.VWAPSell, 120.0)
	assert.Equal(t, 2, stats.SellCount)
}

func TestBuild(t *testing.T) {
	ops := opsTable(series.OperationRow{Base: "BTC", Side: domain.SideSell, Amount: -0.5, Price: 160})

	s, err := Build(walletTable(), ops, []string{"BTC"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", s.ExeID)
	assert.Equal(t, 0, s.Initial.Index)
	assert.Equal(t, 1, s.Final.Index)
	require.Len(t, s.Trades, 1)
	assert.Equal(t, 1, s.Trades[0].SellCount)
	assert.Nil(t, s.Trades[0].VWAPBuy)
}

func TestBuild_EmptyWallet(t *testing.T) {
	_, err := Build(&series.WalletTable{ExeID: "run-1"}, opsTable(), nil)
	assert.ErrorIs(t, err, ErrEmptyWallet)
}
