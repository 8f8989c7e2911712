package series

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"sim-dashboard/internal/domain"
)

// OperationRow is one executed trade. Amount is denominated in the base asset
// and is negative for sells.
type OperationRow struct {
	Timestamp time.Time   `json:"timestamp"`
	Base      string      `json:"base"`
	Quote     string      `json:"quote,omitempty"`
	Side      domain.Side `json:"side"`
	Amount    float64     `json:"amount"`
	Price     float64     `json:"price"`
}

// OperationTable is the ascending trade series of a run.
type OperationTable struct {
	ExeID string
	Rows  []OperationRow
}

// Len returns the number of rows.
func (t *OperationTable) Len() int {
	return len(t.Rows)
}

// Columns returns the column names in output order.
func (t *OperationTable) Columns() []string {
	return []string{"timestamp", "base", "side", "amount", "price"}
}

// ForAsset returns the rows whose base is asset, preserving order.
func (t *OperationTable) ForAsset(asset string) []OperationRow {
	out := make([]OperationRow, 0)
	for _, r := range t.Rows {
		if r.Base == asset {
			out = append(out, r)
		}
	}
	return out
}

// Operations builds the operation table of one run. Quote-denominated amounts
// are converted to base units at the execution price and sells are negated.
// The input slice is not modified.
func (b *Builder) Operations(exeID string, events []*domain.OperationEvent) (*OperationTable, error) {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	table := &OperationTable{ExeID: exeID, Rows: make([]OperationRow, len(sorted))}

	for i, ev := range sorted {
		amount := ev.Amount.InexactFloat64()
		price := ev.Price.InexactFloat64()

		if amount <= 0 {
			return nil, domain.NewIntegrityError(exeID, "amount", i,
				fmt.Errorf("non-positive trade amount %s", ev.Amount))
		}
		if price < 0 {
			return nil, domain.NewIntegrityError(exeID, "price", i,
				fmt.Errorf("negative price %s", ev.Price))
		}

		switch ev.AmountSide {
		case domain.BaseAmount:
		case domain.QuoteAmount:
			if price == 0 {
				return nil, domain.NewIntegrityError(exeID, "price", i,
					errors.New("zero price on quote-denominated amount"))
			}
			amount /= price
		default:
			return nil, domain.NewIntegrityError(exeID, "amountSide", i,
				fmt.Errorf("unknown amount side %q", ev.AmountSide))
		}

		switch ev.Side {
		case domain.SideBuy:
		case domain.SideSell:
			amount = -amount
		default:
			return nil, domain.NewIntegrityError(exeID, "side", i,
				fmt.Errorf("unknown side %q", ev.Side))
		}

		table.Rows[i] = OperationRow{
			Timestamp: b.WallClock(ev.Timestamp),
			Base:      ev.Base,
			Quote:     ev.Quote,
			Side:      ev.Side,
			Amount:    amount,
			Price:     price,
		}
	}

	if bad := firstUnordered(func(i int) time.Time { return table.Rows[i].Timestamp }, len(table.Rows)); bad >= 0 {
		return nil, domain.NewIntegrityError(exeID, "timestamp", bad, ErrUnordered)
	}

	return table, nil
}
