// Package dashboard runs the analytics pipeline for one user selection:
// store reads, table building, summarizing and chart assembly. A Service
// keeps no state between calls; every call reads the store afresh.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/observability"
	"sim-dashboard/internal/selector"
	"sim-dashboard/internal/series"
	"sim-dashboard/internal/storage"
	"sim-dashboard/internal/summary"
	"sim-dashboard/internal/view"
)

// ErrRunNotFound is returned when a run is not among the terminated
// executions or has no wallet snapshots.
var ErrRunNotFound = errors.New("no data for this run")

// RunView is everything the presentation layer needs for one run.
type RunView struct {
	ExeID        string                 `json:"exeId"`
	Strategy     string                 `json:"strategy"`
	Label        string                 `json:"label"`
	Assets       []string               `json:"assets"`
	Quote        string                 `json:"quote"`
	Props        []string               `json:"props"`
	Summary      *summary.RunSummary    `json:"summary"`
	FinalGain    float64                `json:"finalRelativeGain"`
	PriceCharts  []view.Chart           `json:"priceCharts"`
	WalletChart  view.Chart             `json:"walletChart"`
	GainChart    view.Chart             `json:"gainChart"`
	Operations   []series.OperationRow  `json:"operations"`
	Wallet       *series.WalletTable    `json:"-"`
	OperationSet *series.OperationTable `json:"-"`
}

// Options configures a Service.
type Options struct {
	Store    storage.AnalyticsStore
	Quote    string
	Location *time.Location
	Logger   zerolog.Logger
}

// Service computes strategy lists, run lists and run views.
type Service struct {
	store   storage.AnalyticsStore
	builder *series.Builder
	quote   string
	logger  zerolog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	return &Service{
		store:   opts.Store,
		builder: series.NewBuilder(opts.Quote, opts.Location),
		quote:   opts.Quote,
		logger:  opts.Logger.With().Str("component", "dashboard").Logger(),
	}
}

// Strategies returns the distinct strategy types of terminated runs.
func (s *Service) Strategies(ctx context.Context) ([]string, error) {
	records, err := s.store.QueryExecutions(ctx, domain.StatusTerminated)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	return selector.DistinctStrategies(records), nil
}

// Runs returns the terminated runs of strategy.
func (s *Service) Runs(ctx context.Context, strategy string) ([]selector.RunOption, error) {
	records, err := s.store.QueryExecutions(ctx, domain.StatusTerminated)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	return selector.RunsForStrategy(records, strategy), nil
}

// Load runs the full pipeline for one run.
func (s *Service) Load(ctx context.Context, exeID string) (*RunView, error) {
	start := time.Now()
	rv, err := s.load(ctx, exeID)
	elapsed := time.Since(start)

	outcome := Classify(err)
	observability.RecordRunLoad(outcome.Kind, elapsed.Seconds())

	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Warn().Err(err)
		var ie *domain.IntegrityError
		if errors.As(err, &ie) {
			observability.RecordIntegrityError(ie.Field)
			ev = ev.Str("field", ie.Field).Int("row", ie.Row)
		}
	}
	ev.Str("exe_id", exeID).
		Str("outcome", outcome.Kind).
		Dur("duration", elapsed).
		Msg("run loaded")

	return rv, err
}

func (s *Service) load(ctx context.Context, exeID string) (*RunView, error) {
	records, err := s.store.QueryExecutions(ctx, domain.StatusTerminated)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	rec, ok := selector.FindRun(records, exeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, exeID)
	}

	snaps, err := s.store.QueryWallet(ctx, exeID)
	if err != nil {
		return nil, fmt.Errorf("query wallet: %w", err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: %s has no wallet snapshots", ErrRunNotFound, exeID)
	}

	events, err := s.store.QueryOperations(ctx, exeID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}

	wallet, err := s.builder.Wallet(exeID, rec.Assets, snaps)
	if err != nil {
		return nil, err
	}
	ops, err := s.builder.Operations(exeID, events)
	if err != nil {
		return nil, err
	}

	crypto := rec.CryptoAssets(s.quote)
	sum, err := summary.Build(wallet, ops, crypto)
	if err != nil {
		return nil, err
	}

	rv := &RunView{
		ExeID:        rec.ExeID,
		Strategy:     rec.StrategyType,
		Label:        selector.Label(rec.ExeID, rec.Assets),
		Assets:       rec.Assets,
		Quote:        s.quote,
		Props:        view.PropLines(rec.Props),
		Summary:      sum,
		FinalGain:    wallet.Rows[wallet.Len()-1].RelativeGain,
		PriceCharts:  make([]view.Chart, 0, len(crypto)),
		WalletChart:  view.WalletChart(wallet),
		GainChart:    view.GainChart(wallet),
		Operations:   ops.Rows,
		Wallet:       wallet,
		OperationSet: ops,
	}
	for _, asset := range crypto {
		rv.PriceCharts = append(rv.PriceCharts, view.PriceChart(wallet, ops, asset))
	}
	return rv, nil
}

// Outcome is the transport-facing classification of a pipeline error.
type Outcome struct {
	Kind   string
	Status int
	Field  string
}

// Classify maps a pipeline error to an outcome kind and HTTP status.
func Classify(err error) Outcome {
	var ie *domain.IntegrityError
	switch {
	case err == nil:
		return Outcome{Kind: "ok", Status: http.StatusOK}
	case errors.Is(err, ErrRunNotFound):
		return Outcome{Kind: "not_found", Status: http.StatusNotFound}
	case errors.As(err, &ie):
		return Outcome{Kind: "integrity", Status: http.StatusUnprocessableEntity, Field: ie.Field}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Outcome{Kind: "timeout", Status: http.StatusGatewayTimeout}
	default:
		return Outcome{Kind: "error", Status: http.StatusInternalServerError}
	}
}
