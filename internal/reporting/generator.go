package reporting

import (
	"context"
	"fmt"
	"time"

	"sim-dashboard/internal/dashboard"
)

// RunLoader loads the view of one run.
type RunLoader interface {
	Load(ctx context.Context, exeID string) (*dashboard.RunView, error)
}

// Generator produces run reports from freshly loaded views.
type Generator struct {
	loader RunLoader
	now    func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(loader RunLoader) *Generator {
	return &Generator{
		loader: loader,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads exeID and builds its report.
func (g *Generator) Generate(ctx context.Context, exeID string) (*Report, error) {
	rv, err := g.loader.Load(ctx, exeID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", exeID, err)
	}
	return g.FromView(rv), nil
}

// FromView builds a report from an already loaded view.
func (g *Generator) FromView(rv *dashboard.RunView) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		ExeID:       rv.ExeID,
		Strategy:    rv.Strategy,
		Label:       rv.Label,
		Quote:       rv.Quote,
		Assets:      rv.Assets,
		Parameters:  rv.Props,
		FinalGain:   rv.FinalGain,
	}
	if rv.Summary != nil {
		r.Initial = rv.Summary.Initial
		r.Final = rv.Summary.Final
		r.Trades = rv.Summary.Trades
	}
	if rv.Wallet != nil && rv.Wallet.Len() > 0 {
		r.Period.Start = rv.Wallet.Rows[0].Timestamp
		r.Period.End = rv.Wallet.Rows[rv.Wallet.Len()-1].Timestamp
		r.Period.Snapshots = rv.Wallet.Len()
	}
	r.Period.Operations = len(rv.Operations)
	return r
}
