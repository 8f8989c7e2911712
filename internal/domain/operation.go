package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Side is the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a known value.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// AmountSide tells which leg of the pair a trade amount is denominated in.
type AmountSide string

const (
	BaseAmount  AmountSide = "BASE_AMOUNT"
	QuoteAmount AmountSide = "QUOTE_AMOUNT"
)

// String returns the string representation of AmountSide.
func (s AmountSide) String() string {
	return string(s)
}

// IsValid checks if the amount side is a known value.
func (s AmountSide) IsValid() bool {
	return s == BaseAmount || s == QuoteAmount
}

// OperationEvent is one executed trade of a run, as stored.
type OperationEvent struct {
	ExeID      string          `json:"exeId"`
	Timestamp  int64           `json:"timestamp"` // µs epoch
	Base       string          `json:"base"`
	Quote      string          `json:"quote,omitempty"`
	Side       Side            `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	AmountSide AmountSide      `json:"amountSide"`
	Price      decimal.Decimal `json:"price"`
}

// Validate checks the event shape. Returned errors are *IntegrityError.
func (o *OperationEvent) Validate() error {
	if o.ExeID == "" {
		return NewIntegrityError("", "exeId", -1, errors.New("empty execution id"))
	}
	if o.Timestamp <= 0 {
		return NewIntegrityError(o.ExeID, "timestamp", -1, fmt.Errorf("invalid timestamp %d", o.Timestamp))
	}
	if o.Base == "" {
		return NewIntegrityError(o.ExeID, "base", -1, errors.New("empty base asset"))
	}
	if !o.Side.IsValid() {
		return NewIntegrityError(o.ExeID, "side", -1, fmt.Errorf("unknown side %q", o.Side))
	}
	if !o.AmountSide.IsValid() {
		return NewIntegrityError(o.ExeID, "amountSide", -1, fmt.Errorf("unknown amount side %q", o.AmountSide))
	}
	return nil
}
