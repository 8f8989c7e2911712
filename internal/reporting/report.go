package reporting

import (
	"time"

	"sim-dashboard/internal/summary"
)

// Report is the printable summary of one terminated run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	ExeID       string
	Strategy    string
	Label       string
	Quote       string
	Assets      []string

	// Parameters as aligned "key: value" lines
	Parameters []string

	// Period covered by the wallet table
	Period PeriodSection

	// Holdings at the first and last wallet rows
	Initial summary.Endpoint
	Final   summary.Endpoint

	// Per crypto asset, in run asset order
	Trades []summary.TradeStats

	// Relative gain (%) at the last wallet row
	FinalGain float64
}

// PeriodSection describes the time span and size of the run.
type PeriodSection struct {
	Start      time.Time
	End        time.Time
	Snapshots  int
	Operations int
}
