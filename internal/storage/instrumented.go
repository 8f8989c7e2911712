package storage

import (
	"context"
	"time"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/observability"
)

// InstrumentedStore records query latency and errors per backend.
type InstrumentedStore struct {
	inner   AnalyticsStore
	backend string
}

// NewInstrumentedStore wraps inner with Prometheus query metrics labelled by backend.
func NewInstrumentedStore(inner AnalyticsStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, backend: backend}
}

// Compile-time interface check.
var _ AnalyticsStore = (*InstrumentedStore)(nil)

func (s *InstrumentedStore) QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	start := time.Now()
	records, err := s.inner.QueryExecutions(ctx, status)
	observability.RecordStoreQuery(s.backend, "query_executions", time.Since(start).Seconds(), err)
	return records, err
}

func (s *InstrumentedStore) QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	start := time.Now()
	snapshots, err := s.inner.QueryWallet(ctx, exeID)
	observability.RecordStoreQuery(s.backend, "query_wallet", time.Since(start).Seconds(), err)
	return snapshots, err
}

func (s *InstrumentedStore) QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error) {
	start := time.Now()
	events, err := s.inner.QueryOperations(ctx, exeID)
	observability.RecordStoreQuery(s.backend, "query_operations", time.Since(start).Seconds(), err)
	return events, err
}
