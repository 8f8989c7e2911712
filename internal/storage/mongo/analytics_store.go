package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// AnalyticsStore implements storage.Backend over a single analytics collection
// whose documents are discriminated by analyticsType.
type AnalyticsStore struct {
	client *Client
	coll   *mongo.Collection
}

// NewAnalyticsStore creates a new AnalyticsStore. The store owns client and
// disconnects it on Close.
func NewAnalyticsStore(client *Client) *AnalyticsStore {
	return &AnalyticsStore{client: client, coll: client.Collection()}
}

// Compile-time interface check.
var _ storage.Backend = (*AnalyticsStore)(nil)

// QueryExecutions returns the execution records with the given status in
// insertion order.
func (s *AnalyticsStore) QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	filter := bson.D{
		{Key: "analyticsType", Value: domain.AnalyticsExecution.String()},
		{Key: "status", Value: status.String()},
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*domain.ExecutionRecord, 0)
	for row := 0; cur.Next(ctx); row++ {
		var doc executionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.NewIntegrityError("", "execution", row, err)
		}
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return result, nil
}

// QueryWallet returns the wallet snapshots of one run in stored order.
func (s *AnalyticsStore) QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	cur, err := s.find(ctx, domain.AnalyticsWallet, exeID)
	if err != nil {
		return nil, fmt.Errorf("query wallet: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*domain.WalletSnapshot, 0)
	for row := 0; cur.Next(ctx); row++ {
		var doc walletDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.NewIntegrityError(exeID, "wallet", row, err)
		}
		result = append(result, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet: %w", err)
	}
	return result, nil
}

// QueryOperations returns the operations of one run in stored order.
func (s *AnalyticsStore) QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error) {
	cur, err := s.find(ctx, domain.AnalyticsOperation, exeID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*domain.OperationEvent, 0)
	for row := 0; cur.Next(ctx); row++ {
		var doc operationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, domain.NewIntegrityError(exeID, "operation", row, err)
		}
		result = append(result, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return result, nil
}

func (s *AnalyticsStore) find(ctx context.Context, kind domain.AnalyticsType, exeID string) (*mongo.Cursor, error) {
	filter := bson.D{
		{Key: "analyticsType", Value: kind.String()},
		{Key: "exeId", Value: exeID},
	}
	return s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// InsertExecutions adds execution records. Returns ErrDuplicateKey if an
// exeId already exists (requires EnsureIndexes).
func (s *AnalyticsStore) InsertExecutions(ctx context.Context, records []*domain.ExecutionRecord) error {
	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		if r == nil || r.ExeID == "" {
			return storage.ErrInvalidInput
		}
		docs = append(docs, fromExecution(r))
	}
	return s.insertMany(ctx, "executions", docs)
}

// InsertWalletSnapshots adds wallet snapshots.
func (s *AnalyticsStore) InsertWalletSnapshots(ctx context.Context, snaps []*domain.WalletSnapshot) error {
	docs := make([]interface{}, 0, len(snaps))
	for _, w := range snaps {
		if w == nil || w.ExeID == "" {
			return storage.ErrInvalidInput
		}
		docs = append(docs, fromWallet(w))
	}
	return s.insertMany(ctx, "wallet snapshots", docs)
}

// InsertOperations adds operation events.
func (s *AnalyticsStore) InsertOperations(ctx context.Context, ops []*domain.OperationEvent) error {
	docs := make([]interface{}, 0, len(ops))
	for _, o := range ops {
		if o == nil || o.ExeID == "" {
			return storage.ErrInvalidInput
		}
		docs = append(docs, fromOperation(o))
	}
	return s.insertMany(ctx, "operations", docs)
}

func (s *AnalyticsStore) insertMany(ctx context.Context, what string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *AnalyticsStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
