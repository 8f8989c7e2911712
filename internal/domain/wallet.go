package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// AssetStatus is the held quantity and quote price of one asset at one instant.
type AssetStatus struct {
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

// WalletSnapshot is one point-in-time state of a run's holdings.
type WalletSnapshot struct {
	ExeID         string                 `json:"exeId"`
	Timestamp     int64                  `json:"timestamp"` // µs epoch
	WalletValue   decimal.Decimal        `json:"walletValue"`
	AssetStatuses map[string]AssetStatus `json:"assetStatuses"`
}

// Validate checks the snapshot shape. Returned errors are *IntegrityError.
func (w *WalletSnapshot) Validate() error {
	if w.ExeID == "" {
		return NewIntegrityError("", "exeId", -1, errors.New("empty execution id"))
	}
	if w.Timestamp <= 0 {
		return NewIntegrityError(w.ExeID, "timestamp", -1, fmt.Errorf("invalid timestamp %d", w.Timestamp))
	}
	if len(w.AssetStatuses) == 0 {
		return NewIntegrityError(w.ExeID, "assetStatuses", -1, errors.New("no asset statuses"))
	}
	return nil
}
