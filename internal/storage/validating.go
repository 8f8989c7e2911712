package storage

import (
	"context"
	"errors"
	"fmt"

	"sim-dashboard/internal/domain"
)

// ValidatingStore rejects malformed records at the gateway boundary so that
// the transformation pipeline never sees them.
type ValidatingStore struct {
	inner AnalyticsStore
}

// NewValidatingStore wraps inner with record validation.
func NewValidatingStore(inner AnalyticsStore) *ValidatingStore {
	return &ValidatingStore{inner: inner}
}

// Compile-time interface check.
var _ AnalyticsStore = (*ValidatingStore)(nil)

// QueryExecutions validates every record and its status.
func (s *ValidatingStore) QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	records, err := s.inner.QueryExecutions(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r == nil {
			return nil, domain.NewIntegrityError("", "execution", -1, errors.New("nil record"))
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.Status != status {
			return nil, domain.NewIntegrityError(r.ExeID, "status",
				-1, fmt.Errorf("queried %s, got %s", status, r.Status))
		}
	}
	return records, nil
}

// QueryWallet validates every snapshot and that it belongs to exeID.
func (s *ValidatingStore) QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	snapshots, err := s.inner.QueryWallet(ctx, exeID)
	if err != nil {
		return nil, err
	}
	for _, w := range snapshots {
		if w == nil {
			return nil, domain.NewIntegrityError(exeID, "wallet", -1, errors.New("nil snapshot"))
		}
		if err := w.Validate(); err != nil {
			return nil, withExeID(err, exeID)
		}
		if w.ExeID != exeID {
			return nil, domain.NewIntegrityError(exeID, "exeId", -1, fmt.Errorf("snapshot belongs to %s", w.ExeID))
		}
	}
	return snapshots, nil
}

// QueryOperations validates every event and that it belongs to exeID.
func (s *ValidatingStore) QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error) {
	events, err := s.inner.QueryOperations(ctx, exeID)
	if err != nil {
		return nil, err
	}
	for _, o := range events {
		if o == nil {
			return nil, domain.NewIntegrityError(exeID, "operation", -1, errors.New("nil event"))
		}
		if err := o.Validate(); err != nil {
			return nil, withExeID(err, exeID)
		}
		if o.ExeID != exeID {
			return nil, domain.NewIntegrityError(exeID, "exeId", -1, fmt.Errorf("operation belongs to %s", o.ExeID))
		}
	}
	return events, nil
}

// withExeID fills in the run id of an integrity error raised on a record
// whose own id was empty.
func withExeID(err error, exeID string) error {
	var ie *domain.IntegrityError
	if errors.As(err, &ie) && ie.ExeID == "" {
		ie.ExeID = exeID
	}
	return err
}
