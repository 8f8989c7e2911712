// Package fixtures generates and loads synthetic simulation analytics so the
// dashboard can run without a simulator database.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// Dataset is a set of analytics records for one or more runs.
type Dataset struct {
	Executions []*domain.ExecutionRecord `json:"executions"`
	Wallet     []*domain.WalletSnapshot  `json:"wallet"`
	Operations []*domain.OperationEvent  `json:"operations"`
}

// Merge appends the records of other.
func (d *Dataset) Merge(other *Dataset) {
	d.Executions = append(d.Executions, other.Executions...)
	d.Wallet = append(d.Wallet, other.Wallet...)
	d.Operations = append(d.Operations, other.Operations...)
}

// RunSpec describes one synthetic run.
type RunSpec struct {
	ExeID        string
	Strategy     string
	Crypto       []string
	Quote        string
	Status       domain.ExecutionStatus
	Props        map[string]string
	Start        time.Time
	Interval     time.Duration
	Steps        int
	TradeEvery   int
	InitialQuote float64
	Seed         int64
}

// Generate produces a deterministic run: a random walk of prices, periodic
// alternating trades and one wallet snapshot per step. Wallet values are
// consistent with holdings, so the first snapshot equals its baseline.
func Generate(spec RunSpec) *Dataset {
	if spec.Steps <= 0 {
		spec.Steps = 1
	}
	if spec.TradeEvery <= 0 {
		spec.TradeEvery = 4
	}
	if spec.Interval <= 0 {
		spec.Interval = time.Hour
	}
	if spec.Status == "" {
		spec.Status = domain.StatusTerminated
	}
	if spec.Start.IsZero() {
		spec.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	rng := rand.New(rand.NewSource(spec.Seed))

	assets := append(append([]string{}, spec.Crypto...), spec.Quote)
	prices := make(map[string]float64, len(assets))
	holdings := make(map[string]float64, len(assets))

	prices[spec.Quote] = 1
	holdings[spec.Quote] = spec.InitialQuote
	if n := len(spec.Crypto); n > 0 {
		holdings[spec.Quote] = spec.InitialQuote / 2
		for i, c := range spec.Crypto {
			prices[c] = 50*float64(i+1) + rng.Float64()*50
			holdings[c] = spec.InitialQuote / 2 / float64(n) / prices[c]
		}
	}

	ds := &Dataset{
		Executions: []*domain.ExecutionRecord{{
			ExeID:        spec.ExeID,
			StrategyType: spec.Strategy,
			Assets:       assets,
			Status:       spec.Status,
			Props:        spec.Props,
			Timestamp:    spec.Start.UnixMicro(),
		}},
	}

	for step := 0; step < spec.Steps; step++ {
		ts := spec.Start.Add(time.Duration(step) * spec.Interval)

		if step > 0 {
			for _, c := range spec.Crypto {
				prices[c] *= 1 + (rng.Float64()-0.5)*0.04
			}
		}

		if step > 0 && step%spec.TradeEvery == 0 && len(spec.Crypto) > 0 {
			n := step / spec.TradeEvery
			asset := spec.Crypto[n%len(spec.Crypto)]
			if op := trade(spec, asset, n, prices, holdings); op != nil {
				op.Timestamp = ts.Add(-spec.Interval / 2).UnixMicro()
				ds.Operations = append(ds.Operations, op)
			}
		}

		ds.Wallet = append(ds.Wallet, snapshot(spec.ExeID, ts, assets, prices, holdings))
	}

	return ds
}

// trade executes the n-th trade against holdings. Odd trades buy with a
// quarter of the quote balance, even trades sell 30% of the asset. Every third
// trade is denominated in the quote currency.
func trade(spec RunSpec, asset string, n int, prices, holdings map[string]float64) *domain.OperationEvent {
	price := round(prices[asset], 4)
	side := domain.SideSell
	base := holdings[asset] * 0.3
	if n%2 == 1 {
		side = domain.SideBuy
		base = holdings[spec.Quote] * 0.25 / price
	}
	base = round(base, 8)
	if base <= 0 {
		return nil
	}

	notional := base * price
	if side == domain.SideBuy {
		holdings[spec.Quote] -= notional
		holdings[asset] += base
	} else {
		holdings[spec.Quote] += notional
		holdings[asset] -= base
	}

	op := &domain.OperationEvent{
		ExeID:      spec.ExeID,
		Base:       asset,
		Quote:      spec.Quote,
		Side:       side,
		Amount:     decimal.NewFromFloat(base),
		AmountSide: domain.BaseAmount,
		Price:      decimal.NewFromFloat(price),
	}
	if n%3 == 0 {
		op.Amount = decimal.NewFromFloat(base).Mul(op.Price)
		op.AmountSide = domain.QuoteAmount
	}
	return op
}

func snapshot(exeID string, ts time.Time, assets []string, prices, holdings map[string]float64) *domain.WalletSnapshot {
	s := &domain.WalletSnapshot{
		ExeID:         exeID,
		Timestamp:     ts.UnixMicro(),
		AssetStatuses: make(map[string]domain.AssetStatus, len(assets)),
	}
	total := decimal.Zero
	for _, a := range assets {
		amount := decimal.NewFromFloat(round(holdings[a], 8))
		price := decimal.NewFromFloat(round(prices[a], 4))
		s.AssetStatuses[a] = domain.AssetStatus{Amount: amount, Price: price}
		total = total.Add(amount.Mul(price))
	}
	s.WalletValue = total
	return s
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Demo returns a small dataset with terminated runs for two strategies and one
// active run that must not be selectable.
func Demo() *Dataset {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ds := Generate(RunSpec{
		ExeID: "demo-fts-1", Strategy: "FTS", Crypto: []string{"BTC", "ETH"}, Quote: "USDT",
		Props: map[string]string{"buyThreshold": "0.02", "sellThreshold": "0.03", "missProfitThreshold": "0.05"},
		Start: start, Interval: time.Hour, Steps: 96, TradeEvery: 6, InitialQuote: 1000, Seed: 1,
	})
	ds.Merge(Generate(RunSpec{
		ExeID: "demo-fts-2", Strategy: "FTS", Crypto: []string{"BNB"}, Quote: "USDT",
		Props: map[string]string{"buyThreshold": "0.01", "sellThreshold": "0.015"},
		Start: start.Add(96 * time.Hour), Interval: time.Hour, Steps: 72, TradeEvery: 4, InitialQuote: 500, Seed: 2,
	}))
	ds.Merge(Generate(RunSpec{
		ExeID: "demo-pts-1", Strategy: "PTS", Crypto: []string{"ETH"}, Quote: "USDT",
		Props: map[string]string{"window": "24", "stddevMultiplier": "2"},
		Start: start, Interval: 30 * time.Minute, Steps: 120, TradeEvery: 10, InitialQuote: 2000, Seed: 3,
	}))
	ds.Merge(Generate(RunSpec{
		ExeID: "demo-dts-active", Strategy: "DTS", Crypto: []string{"BTC"}, Quote: "USDT",
		Status: domain.StatusActive, Start: start, Steps: 12, InitialQuote: 100, Seed: 4,
	}))
	return ds
}

// ReadFile decodes a JSON dataset.
func ReadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &ds, nil
}

// Load writes every record of ds through w.
func Load(ctx context.Context, w storage.AnalyticsWriter, ds *Dataset) error {
	if err := w.InsertExecutions(ctx, ds.Executions); err != nil {
		return fmt.Errorf("load executions: %w", err)
	}
	if err := w.InsertWalletSnapshots(ctx, ds.Wallet); err != nil {
		return fmt.Errorf("load wallet snapshots: %w", err)
	}
	if err := w.InsertOperations(ctx, ds.Operations); err != nil {
		return fmt.Errorf("load operations: %w", err)
	}
	return nil
}
