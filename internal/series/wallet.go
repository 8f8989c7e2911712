package series

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"sim-dashboard/internal/domain"
)

// WalletRow is one snapshot of a run's holdings. Amounts and Prices are
// aligned with WalletTable.Assets.
type WalletRow struct {
	Timestamp    time.Time
	Amounts      []float64
	Prices       []float64
	WalletValue  float64
	Baseline     float64
	RelativeGain float64 // percent
}

// WalletTable is the ascending wallet series of a run.
type WalletTable struct {
	ExeID  string
	Assets []string
	Quote  string
	Rows   []WalletRow
}

// Len returns the number of rows.
func (t *WalletTable) Len() int {
	return len(t.Rows)
}

// Columns returns the column names in a fixed order: timestamp, then
// {asset}_amount and {asset}_price per asset in run order, then walletValue,
// baseline and relativeGain(%).
func (t *WalletTable) Columns() []string {
	cols := make([]string, 0, 2*len(t.Assets)+4)
	cols = append(cols, "timestamp")
	for _, a := range t.Assets {
		cols = append(cols, a+"_amount", a+"_price")
	}
	return append(cols, "walletValue", "baseline", "relativeGain(%)")
}

// AssetIndex returns the column position of asset.
func (t *WalletTable) AssetIndex(asset string) (int, bool) {
	i := slices.Index(t.Assets, asset)
	return i, i >= 0
}

// PriceSeries returns the price of asset at every row.
func (t *WalletTable) PriceSeries(asset string) []float64 {
	idx, ok := t.AssetIndex(asset)
	if !ok {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Prices[idx]
	}
	return out
}

// Timestamps returns the row timestamps.
func (t *WalletTable) Timestamps() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Timestamp
	}
	return out
}

// Wallet builds the wallet table of one run. assets is the run's ordered asset
// list and must contain the quote currency. Every snapshot must carry a status
// for every asset. The input slice is not modified.
func (b *Builder) Wallet(exeID string, assets []string, snaps []*domain.WalletSnapshot) (*WalletTable, error) {
	quoteIdx := slices.Index(assets, b.quote)
	if quoteIdx < 0 {
		return nil, domain.NewIntegrityError(exeID, "assets", -1,
			fmt.Errorf("quote currency %s not among run assets %v", b.quote, assets))
	}

	sorted := slices.Clone(snaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	table := &WalletTable{
		ExeID:  exeID,
		Assets: slices.Clone(assets),
		Quote:  b.quote,
		Rows:   make([]WalletRow, len(sorted)),
	}

	for i, s := range sorted {
		row := WalletRow{
			Timestamp:   b.WallClock(s.Timestamp),
			Amounts:     make([]float64, len(assets)),
			Prices:      make([]float64, len(assets)),
			WalletValue: s.WalletValue.InexactFloat64(),
		}
		for j, a := range assets {
			st, ok := s.AssetStatuses[a]
			if !ok {
				return nil, domain.NewIntegrityError(exeID, "assetStatuses."+a, i,
					errors.New("asset missing from snapshot"))
			}
			row.Amounts[j] = st.Amount.InexactFloat64()
			row.Prices[j] = st.Price.InexactFloat64()
		}
		table.Rows[i] = row
	}

	if len(table.Rows) == 0 {
		return table, nil
	}

	if bad := firstUnordered(func(i int) time.Time { return table.Rows[i].Timestamp }, len(table.Rows)); bad >= 0 {
		return nil, domain.NewIntegrityError(exeID, "timestamp", bad, ErrUnordered)
	}

	// Holdings of row 0 are frozen and revalued at each row's prices.
	initial := table.Rows[0]
	for i := range table.Rows {
		row := &table.Rows[i]
		baseline := initial.Amounts[quoteIdx]
		for j := range assets {
			if j == quoteIdx {
				continue
			}
			baseline += initial.Amounts[j] * row.Prices[j]
		}
		if baseline == 0 {
			return nil, domain.NewIntegrityError(exeID, "baseline", i, errors.New("zero baseline"))
		}
		row.Baseline = baseline
		row.RelativeGain = (row.WalletValue - baseline) / baseline * 100
	}

	return table, nil
}
