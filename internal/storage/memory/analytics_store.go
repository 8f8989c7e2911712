package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// AnalyticsStore is an in-memory implementation of storage.Backend.
type AnalyticsStore struct {
	mu         sync.RWMutex
	executions map[string]*domain.ExecutionRecord // keyed by exe_id
	order      []string                           // exe_id insertion order
	wallets    map[string][]*domain.WalletSnapshot
	operations map[string][]*domain.OperationEvent
}

// NewAnalyticsStore creates a new in-memory analytics store.
func NewAnalyticsStore() *AnalyticsStore {
	return &AnalyticsStore{
		executions: make(map[string]*domain.ExecutionRecord),
		wallets:    make(map[string][]*domain.WalletSnapshot),
		operations: make(map[string][]*domain.OperationEvent),
	}
}

var _ storage.Backend = (*AnalyticsStore)(nil)

// InsertExecutions adds execution records. Fails entire batch on any duplicate exe_id.
func (s *AnalyticsStore) InsertExecutions(_ context.Context, records []*domain.ExecutionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ExeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.executions[r.ExeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.ExeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.ExeID] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		s.executions[r.ExeID] = cloneExecution(r)
		s.order = append(s.order, r.ExeID)
	}
	return nil
}

// InsertWalletSnapshots appends wallet snapshots.
func (s *AnalyticsStore) InsertWalletSnapshots(_ context.Context, snapshots []*domain.WalletSnapshot) error {
	for _, w := range snapshots {
		if w == nil || w.ExeID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range snapshots {
		s.wallets[w.ExeID] = append(s.wallets[w.ExeID], cloneSnapshot(w))
	}
	return nil
}

// InsertOperations appends operation events.
func (s *AnalyticsStore) InsertOperations(_ context.Context, events []*domain.OperationEvent) error {
	for _, o := range events {
		if o == nil || o.ExeID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range events {
		copy := *o
		s.operations[o.ExeID] = append(s.operations[o.ExeID], &copy)
	}
	return nil
}

// QueryExecutions retrieves all execution records with the given status, in insertion order.
func (s *AnalyticsStore) QueryExecutions(_ context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ExecutionRecord
	for _, id := range s.order {
		r := s.executions[id]
		if r.Status == status {
			result = append(result, cloneExecution(r))
		}
	}
	return result, nil
}

// QueryWallet retrieves all wallet snapshots of a run, in insertion order.
func (s *AnalyticsStore) QueryWallet(_ context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.wallets[exeID]
	result := make([]*domain.WalletSnapshot, 0, len(stored))
	for _, w := range stored {
		result = append(result, cloneSnapshot(w))
	}
	return result, nil
}

// QueryOperations retrieves all operation events of a run, in insertion order.
func (s *AnalyticsStore) QueryOperations(_ context.Context, exeID string) ([]*domain.OperationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.operations[exeID]
	result := make([]*domain.OperationEvent, 0, len(stored))
	for _, o := range stored {
		copy := *o
		result = append(result, &copy)
	}
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *AnalyticsStore) Close(_ context.Context) error {
	return nil
}

func cloneExecution(r *domain.ExecutionRecord) *domain.ExecutionRecord {
	copy := *r
	copy.Assets = slices.Clone(r.Assets)
	copy.Props = maps.Clone(r.Props)
	return &copy
}

func cloneSnapshot(w *domain.WalletSnapshot) *domain.WalletSnapshot {
	copy := *w
	copy.AssetStatuses = maps.Clone(w.AssetStatuses)
	return &copy
}
