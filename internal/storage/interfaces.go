package storage

import (
	"context"

	"sim-dashboard/internal/domain"
)

// AnalyticsStore provides read-only access to the simulation analytics records.
// Implementations return records in no guaranteed order.
type AnalyticsStore interface {
	// QueryExecutions retrieves all execution records with the given status.
	QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error)

	// QueryWallet retrieves all wallet snapshots of a run.
	QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error)

	// QueryOperations retrieves all operation events of a run.
	QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error)
}

// AnalyticsWriter appends analytics records. Used for seeding and tests;
// the dashboard itself never writes.
type AnalyticsWriter interface {
	// InsertExecutions adds execution records. Returns ErrDuplicateKey if an exeId exists.
	InsertExecutions(ctx context.Context, records []*domain.ExecutionRecord) error

	// InsertWalletSnapshots adds wallet snapshots.
	InsertWalletSnapshots(ctx context.Context, snapshots []*domain.WalletSnapshot) error

	// InsertOperations adds operation events.
	InsertOperations(ctx context.Context, events []*domain.OperationEvent) error
}

// Backend is a store that can both read and write and owns a connection.
type Backend interface {
	AnalyticsStore
	AnalyticsWriter

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
