// Package summary computes the headline statistics of a run: holdings and
// total value at the start and end, and per-asset trade counts and VWAPs.
package summary

import (
	"errors"
	"fmt"
	"math"
	"time"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/series"
)

// ErrIndexOutOfRange is returned when an endpoint index is outside the table.
var ErrIndexOutOfRange = errors.New("row index out of range")

// ErrEmptyWallet is returned when a summary is requested for a run without
// wallet rows.
var ErrEmptyWallet = errors.New("wallet table is empty")

// Position is the holding of one asset at one endpoint.
type Position struct {
	Asset  string  `json:"asset"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
}

// Endpoint summarizes one wallet row.
type Endpoint struct {
	Index      int        `json:"index"`
	Timestamp  time.Time  `json:"timestamp"`
	Positions  []Position `json:"positions"`
	TotalValue int64      `json:"totalValue"` // floor of Σ price*amount over all assets
}

// TradeStats are the trade counts and volume-weighted prices of one asset.
// A nil VWAP means no trades on that side.
type TradeStats struct {
	Asset     string   `json:"asset"`
	BuyCount  int      `json:"buyCount"`
	SellCount int      `json:"sellCount"`
	VWAPBuy   *float64 `json:"vwapBuy"`
	VWAPSell  *float64 `json:"vwapSell"`
}

// RunSummary holds both endpoints and the trade stats of every crypto asset.
type RunSummary struct {
	ExeID   string       `json:"exeId"`
	Initial Endpoint     `json:"initial"`
	Final   Endpoint     `json:"final"`
	Trades  []TradeStats `json:"trades"`
}

// EndpointSummary reports per-asset holdings and the floored total value at
// row index of the wallet table.
func EndpointSummary(t *series.WalletTable, index int) (Endpoint, error) {
	if index < 0 || index >= t.Len() {
		return Endpoint{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, t.Len())
	}

	row := t.Rows[index]
	ep := Endpoint{
		Index:     index,
		Timestamp: row.Timestamp,
		Positions: make([]Position, len(t.Assets)),
	}

	var total float64
	for i, a := range t.Assets {
		ep.Positions[i] = Position{Asset: a, Amount: row.Amounts[i], Price: row.Prices[i]}
		total += row.Amounts[i] * row.Prices[i]
	}
	ep.TotalValue = int64(math.Floor(total))

	return ep, nil
}

// ComputeTradeStats partitions the trades of asset by side. Amounts are
// weighted by magnitude so the sell sign does not cancel.
func ComputeTradeStats(t *series.OperationTable, asset string) TradeStats {
	stats := TradeStats{Asset: asset}

	var buyNotional, buyVolume, sellNotional, sellVolume float64
	for _, r := range t.Rows {
		if r.Base != asset {
			continue
		}
		qty := math.Abs(r.Amount)
		if r.Side == domain.SideSell {
			stats.SellCount++
			sellNotional += qty * r.Price
			sellVolume += qty
		} else {
			stats.BuyCount++
			buyNotional += qty * r.Price
			buyVolume += qty
		}
	}

	stats.VWAPBuy = vwap(buyNotional, buyVolume)
	stats.VWAPSell = vwap(sellNotional, sellVolume)
	return stats
}

func vwap(notional, volume float64) *float64 {
	if volume == 0 {
		return nil
	}
	v := notional / volume
	return &v
}

// Build assembles the summary of a run from its derived tables. cryptoAssets
// lists the assets trade stats are reported for, in display order.
func Build(wallet *series.WalletTable, ops *series.OperationTable, cryptoAssets []string) (*RunSummary, error) {
	if wallet.Len() == 0 {
		return nil, ErrEmptyWallet
	}

	initial, err := EndpointSummary(wallet, 0)
	if err != nil {
		return nil, err
	}
	final, err := EndpointSummary(wallet, wallet.Len()-1)
	if err != nil {
		return nil, err
	}

	s := &RunSummary{
		ExeID:   wallet.ExeID,
		Initial: initial,
		Final:   final,
		Trades:  make([]TradeStats, 0, len(cryptoAssets)),
	}
	for _, a := range cryptoAssets {
		s.Trades = append(s.Trades, ComputeTradeStats(ops, a))
	}
	return s, nil
}
