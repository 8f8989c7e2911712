package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// AnalyticsStore implements storage.Backend using PostgreSQL.
type AnalyticsStore struct {
	pool *Pool
}

// NewAnalyticsStore creates a new AnalyticsStore. The store owns pool and
// closes it on Close.
func NewAnalyticsStore(pool *Pool) *AnalyticsStore {
	return &AnalyticsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.Backend = (*AnalyticsStore)(nil)

// InsertExecutions adds execution records atomically. Returns ErrDuplicateKey
// if any exeId exists.
func (s *AnalyticsStore) InsertExecutions(ctx context.Context, records []*domain.ExecutionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO executions (exe_id, strategy_type, assets, status, props, timestamp_us)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`

	for _, r := range records {
		if r == nil || r.ExeID == "" {
			return storage.ErrInvalidInput
		}
		props, err := json.Marshal(nonNilProps(r.Props))
		if err != nil {
			return fmt.Errorf("encode props: %w", err)
		}
		_, err = tx.Exec(ctx, query,
			r.ExeID,
			r.StrategyType,
			r.Assets,
			r.Status.String(),
			string(props),
			r.Timestamp,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert execution: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InsertWalletSnapshots adds wallet snapshots atomically.
func (s *AnalyticsStore) InsertWalletSnapshots(ctx context.Context, snapshots []*domain.WalletSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, w := range snapshots {
		if w == nil || w.ExeID == "" {
			return storage.ErrInvalidInput
		}
		statuses, err := json.Marshal(w.AssetStatuses)
		if err != nil {
			return fmt.Errorf("encode asset statuses: %w", err)
		}
		batch.Queue(`
			INSERT INTO wallet_snapshots (exe_id, timestamp_us, wallet_value, asset_statuses)
			VALUES ($1, $2, $3::numeric, $4::jsonb)
		`, w.ExeID, w.Timestamp, w.WalletValue.String(), string(statuses))
	}

	return s.sendBatch(ctx, batch, "wallet snapshot")
}

// InsertOperations adds operation events atomically.
func (s *AnalyticsStore) InsertOperations(ctx context.Context, events []*domain.OperationEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, o := range events {
		if o == nil || o.ExeID == "" {
			return storage.ErrInvalidInput
		}
		batch.Queue(`
			INSERT INTO operations (exe_id, timestamp_us, base, quote, side, amount, amount_side, price)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric)
		`, o.ExeID, o.Timestamp, o.Base, o.Quote, o.Side.String(),
			o.Amount.String(), o.AmountSide.String(), o.Price.String())
	}

	return s.sendBatch(ctx, batch, "operation")
}

func (s *AnalyticsStore) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %s batch: %w", what, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// QueryExecutions retrieves execution records with the given status in
// insertion order.
func (s *AnalyticsStore) QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	query := `
		SELECT exe_id, strategy_type, assets, status, props, timestamp_us
		FROM executions
		WHERE status = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, status.String())
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.ExecutionRecord, 0)
	for rows.Next() {
		var (
			r        domain.ExecutionRecord
			st       string
			rawProps []byte
		)
		if err := rows.Scan(&r.ExeID, &r.StrategyType, &r.Assets, &st, &rawProps, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		r.Status = domain.ExecutionStatus(st)

		var loose map[string]interface{}
		if err := json.Unmarshal(rawProps, &loose); err != nil {
			return nil, domain.NewIntegrityError(r.ExeID, "props", -1, err)
		}
		if r.Props, err = storage.DecodeProps(loose); err != nil {
			return nil, domain.NewIntegrityError(r.ExeID, "props", -1, err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return result, nil
}

// QueryWallet retrieves the wallet snapshots of a run in insertion order.
func (s *AnalyticsStore) QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	query := `
		SELECT exe_id, timestamp_us, wallet_value::text, asset_statuses
		FROM wallet_snapshots
		WHERE exe_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, exeID)
	if err != nil {
		return nil, fmt.Errorf("query wallet: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.WalletSnapshot, 0)
	for row := 0; rows.Next(); row++ {
		var (
			w           domain.WalletSnapshot
			walletValue string
			rawStatuses []byte
		)
		if err := rows.Scan(&w.ExeID, &w.Timestamp, &walletValue, &rawStatuses); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		if w.WalletValue, err = decimal.NewFromString(walletValue); err != nil {
			return nil, domain.NewIntegrityError(exeID, "walletValue", row, err)
		}
		if err := json.Unmarshal(rawStatuses, &w.AssetStatuses); err != nil {
			return nil, domain.NewIntegrityError(exeID, "assetStatuses", row, err)
		}
		result = append(result, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet: %w", err)
	}
	return result, nil
}

// QueryOperations retrieves the operation events of a run in insertion order.
func (s *AnalyticsStore) QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error) {
	query := `
		SELECT exe_id, timestamp_us, base, quote, side, amount::text, amount_side, price::text
		FROM operations
		WHERE exe_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, exeID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.OperationEvent, 0)
	for row := 0; rows.Next(); row++ {
		var (
			o                domain.OperationEvent
			side, amountSide string
			amount, price    string
		)
		if err := rows.Scan(&o.ExeID, &o.Timestamp, &o.Base, &o.Quote, &side, &amount, &amountSide, &price); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		o.Side = domain.Side(side)
		o.AmountSide = domain.AmountSide(amountSide)
		if o.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, domain.NewIntegrityError(exeID, "amount", row, err)
		}
		if o.Price, err = decimal.NewFromString(price); err != nil {
			return nil, domain.NewIntegrityError(exeID, "price", row, err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return result, nil
}

// Close closes the connection pool.
func (s *AnalyticsStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func nonNilProps(p map[string]string) map[string]string {
	if p == nil {
		return map[string]string{}
	}
	return p
}
