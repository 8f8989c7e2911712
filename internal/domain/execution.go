package domain

import (
	"errors"
	"fmt"
)

// ExecutionStatus is the lifecycle tag of a simulation run.
type ExecutionStatus string

const (
	StatusActive     ExecutionStatus = "EXE_ACTIVE"
	StatusPaused     ExecutionStatus = "EXE_PAUSED"
	StatusTerminated ExecutionStatus = "EXE_TERMINATED"
)

// String returns the string representation of ExecutionStatus.
func (s ExecutionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s ExecutionStatus) IsValid() bool {
	return s == StatusActive || s == StatusPaused || s == StatusTerminated
}

// ExecutionRecord describes one simulation run: its strategy, traded assets
// and display-only strategy parameters.
type ExecutionRecord struct {
	ExeID        string            `json:"exeId"`
	StrategyType string            `json:"strategyType"`
	Assets       []string          `json:"assets"` // includes the quote currency
	Status       ExecutionStatus   `json:"status"`
	Props        map[string]string `json:"props,omitempty"`
	Timestamp    int64             `json:"timestamp"` // µs epoch
}

// Validate checks the record shape. Returned errors are *IntegrityError.
func (e *ExecutionRecord) Validate() error {
	if e.ExeID == "" {
		return NewIntegrityError("", "exeId", -1, errors.New("empty execution id"))
	}
	if e.StrategyType == "" {
		return NewIntegrityError(e.ExeID, "strategyType", -1, errors.New("empty strategy type"))
	}
	if !e.Status.IsValid() {
		return NewIntegrityError(e.ExeID, "status", -1, fmt.Errorf("unknown status %q", e.Status))
	}
	if len(e.Assets) == 0 {
		return NewIntegrityError(e.ExeID, "assets", -1, errors.New("no assets"))
	}
	seen := make(map[string]struct{}, len(e.Assets))
	for _, a := range e.Assets {
		if a == "" {
			return NewIntegrityError(e.ExeID, "assets", -1, errors.New("empty asset symbol"))
		}
		if _, dup := seen[a]; dup {
			return NewIntegrityError(e.ExeID, "assets", -1, fmt.Errorf("duplicate asset %s", a))
		}
		seen[a] = struct{}{}
	}
	return nil
}

// CryptoAssets returns the run's assets without the quote currency, in order.
func (e *ExecutionRecord) CryptoAssets(quote string) []string {
	return CryptoAssets(e.Assets, quote)
}

// CryptoAssets filters the quote currency out of an asset list, keeping order.
func CryptoAssets(assets []string, quote string) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		if a != quote {
			out = append(out, a)
		}
	}
	return out
}
