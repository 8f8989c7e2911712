package clickhouse

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

// AnalyticsStore implements storage.Backend using ClickHouse. Wallet snapshots
// are stored flattened, one row per asset.
type AnalyticsStore struct {
	conn *Conn
}

// NewAnalyticsStore creates a new AnalyticsStore. The store owns conn and
// closes it on Close.
func NewAnalyticsStore(conn *Conn) *AnalyticsStore {
	return &AnalyticsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.Backend = (*AnalyticsStore)(nil)

// InsertExecutions adds execution records. MergeTree does not enforce
// uniqueness, so existing ids are checked before the batch is sent.
func (s *AnalyticsStore) InsertExecutions(ctx context.Context, records []*domain.ExecutionRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ExeID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[r.ExeID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[r.ExeID] = struct{}{}
	}

	for id := range seen {
		exists, err := s.executionExists(ctx, id)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO execution_analytics (
			exe_id, strategy_type, assets, status, prop_keys, prop_values, timestamp_us
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		keys, values := splitProps(r.Props)
		if err := batch.Append(r.ExeID, r.StrategyType, r.Assets, r.Status.String(), keys, values, r.Timestamp); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertWalletSnapshots adds wallet snapshots, one row per asset status.
// Every snapshot gets its own snapshot_seq, continuing the run's existing
// sequence, so snapshots sharing a timestamp stay distinct.
func (s *AnalyticsStore) InsertWalletSnapshots(ctx context.Context, snapshots []*domain.WalletSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	for _, w := range snapshots {
		if w == nil || w.ExeID == "" || len(w.AssetStatuses) == 0 {
			return storage.ErrInvalidInput
		}
	}

	next, err := s.nextSeqs(ctx, "wallet_analytics", "snapshot_seq", walletRunIDs(snapshots))
	if err != nil {
		return err
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_analytics (exe_id, timestamp_us, snapshot_seq, wallet_value, asset, amount, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, w := range snapshots {
		seq := next[w.ExeID]
		next[w.ExeID]++
		for asset, st := range w.AssetStatuses {
			err := batch.Append(w.ExeID, w.Timestamp, seq, w.WalletValue.String(), asset, st.Amount.String(), st.Price.String())
			if err != nil {
				_ = batch.Abort()
				return fmt.Errorf("append to batch: %w", err)
			}
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertOperations adds operation events. seq continues the run's existing
// sequence and keeps insertion order among events sharing a timestamp.
func (s *AnalyticsStore) InsertOperations(ctx context.Context, events []*domain.OperationEvent) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, 0, len(events))
	for _, o := range events {
		if o == nil || o.ExeID == "" {
			return storage.ErrInvalidInput
		}
		ids = append(ids, o.ExeID)
	}

	next, err := s.nextSeqs(ctx, "operation_analytics", "seq", ids)
	if err != nil {
		return err
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO operation_analytics (
			exe_id, timestamp_us, seq, base, quote, side, amount, amount_side, price
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range events {
		seq := next[o.ExeID]
		next[o.ExeID]++
		err := batch.Append(o.ExeID, o.Timestamp, seq, o.Base, o.Quote, o.Side.String(),
			o.Amount.String(), o.AmountSide.String(), o.Price.String())
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// nextSeqs returns, per run id, the first unused value of column in table.
func (s *AnalyticsStore) nextSeqs(ctx context.Context, table, column string, exeIDs []string) (map[string]uint64, error) {
	query := fmt.Sprintf(`SELECT if(count() = 0, 0, max(%s) + 1) FROM %s WHERE exe_id = ?`, column, table)

	next := make(map[string]uint64, len(exeIDs))
	for _, id := range exeIDs {
		if _, ok := next[id]; ok {
			continue
		}
		var seq uint64
		if err := s.conn.QueryRow(ctx, query, id).Scan(&seq); err != nil {
			return nil, fmt.Errorf("next %s for %s: %w", column, id, err)
		}
		next[id] = seq
	}
	return next, nil
}

func walletRunIDs(snapshots []*domain.WalletSnapshot) []string {
	ids := make([]string, len(snapshots))
	for i, w := range snapshots {
		ids[i] = w.ExeID
	}
	return ids
}

// QueryExecutions retrieves execution records with the given status in
// insertion order.
func (s *AnalyticsStore) QueryExecutions(ctx context.Context, status domain.ExecutionStatus) ([]*domain.ExecutionRecord, error) {
	query := `
		SELECT exe_id, strategy_type, assets, status, prop_keys, prop_values, timestamp_us
		FROM execution_analytics
		WHERE status = ?
		ORDER BY inserted_at ASC, exe_id ASC
	`

	rows, err := s.conn.Query(ctx, query, status.String())
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	return scanExecutions(rows)
}

// QueryWallet retrieves the wallet snapshots of a run, reassembled from the
// per-asset rows and ordered by timestamp.
func (s *AnalyticsStore) QueryWallet(ctx context.Context, exeID string) ([]*domain.WalletSnapshot, error) {
	query := `
		SELECT exe_id, timestamp_us, snapshot_seq, wallet_value, asset, amount, price
		FROM wallet_analytics
		WHERE exe_id = ?
		ORDER BY timestamp_us ASC, snapshot_seq ASC, asset ASC
	`

	rows, err := s.conn.Query(ctx, query, exeID)
	if err != nil {
		return nil, fmt.Errorf("query wallet: %w", err)
	}
	defer rows.Close()

	return scanWallet(exeID, rows)
}

// QueryOperations retrieves the operation events of a run ordered by timestamp.
func (s *AnalyticsStore) QueryOperations(ctx context.Context, exeID string) ([]*domain.OperationEvent, error) {
	query := `
		SELECT exe_id, timestamp_us, base, quote, side, amount, amount_side, price
		FROM operation_analytics
		WHERE exe_id = ?
		ORDER BY timestamp_us ASC, seq ASC
	`

	rows, err := s.conn.Query(ctx, query, exeID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	return scanOperations(exeID, rows)
}

// Close closes the connection.
func (s *AnalyticsStore) Close(_ context.Context) error {
	return s.conn.Close()
}

func (s *AnalyticsStore) executionExists(ctx context.Context, exeID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM execution_analytics WHERE exe_id = ?`, exeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func splitProps(props map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = props[k]
	}
	return keys, values
}

func scanExecutions(rows chRows) ([]*domain.ExecutionRecord, error) {
	result := make([]*domain.ExecutionRecord, 0)
	for rows.Next() {
		var (
			r            domain.ExecutionRecord
			status       string
			keys, values []string
		)
		if err := rows.Scan(&r.ExeID, &r.StrategyType, &r.Assets, &status, &keys, &values, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan execution row: %w", err)
		}
		if len(keys) != len(values) {
			return nil, domain.NewIntegrityError(r.ExeID, "props", -1,
				fmt.Errorf("%d keys for %d values", len(keys), len(values)))
		}
		r.Status = domain.ExecutionStatus(status)
		r.Props = make(map[string]string, len(keys))
		for i, k := range keys {
			r.Props[k] = values[i]
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return result, nil
}

// scanWallet folds consecutive rows of the same snapshot (timestamp and
// snapshot_seq) into one snapshot.
func scanWallet(exeID string, rows chRows) ([]*domain.WalletSnapshot, error) {
	result := make([]*domain.WalletSnapshot, 0)
	var (
		current    *domain.WalletSnapshot
		currentSeq uint64
	)

	for rows.Next() {
		var (
			id, walletValue, asset, amount, price string
			ts                                    int64
			seq                                   uint64
		)
		if err := rows.Scan(&id, &ts, &seq, &walletValue, &asset, &amount, &price); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}

		if current == nil || current.Timestamp != ts || currentSeq != seq {
			wv, err := decimal.NewFromString(walletValue)
			if err != nil {
				return nil, domain.NewIntegrityError(exeID, "walletValue", len(result), err)
			}
			current = &domain.WalletSnapshot{
				ExeID:         id,
				Timestamp:     ts,
				WalletValue:   wv,
				AssetStatuses: make(map[string]domain.AssetStatus),
			}
			currentSeq = seq
			result = append(result, current)
		}

		row := len(result) - 1
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, domain.NewIntegrityError(exeID, "assetStatuses."+asset+".amount", row, err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, domain.NewIntegrityError(exeID, "assetStatuses."+asset+".price", row, err)
		}
		current.AssetStatuses[asset] = domain.AssetStatus{Amount: a, Price: p}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet: %w", err)
	}
	return result, nil
}

func scanOperations(exeID string, rows chRows) ([]*domain.OperationEvent, error) {
	result := make([]*domain.OperationEvent, 0)
	for row := 0; rows.Next(); row++ {
		var (
			o                               domain.OperationEvent
			side, amountSide, amount, price string
		)
		if err := rows.Scan(&o.ExeID, &o.Timestamp, &o.Base, &o.Quote, &side, &amount, &amountSide, &price); err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		o.Side = domain.Side(side)
		o.AmountSide = domain.AmountSide(amountSide)

		var err error
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
