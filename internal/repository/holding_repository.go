package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// HoldingRepository provides data access methods for the holding and sync_run tables.
// Holdings are stored exactly as the upstream folio API delivered them.
type HoldingRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db, now: time.Now}
}

// FetchHoldings returns the user's holdings in the order they were synced.
// Returns apperrors.ErrHoldingsNotFound when the user has never been synced.
func (r *HoldingRepository) FetchHoldings(ctx context.Context, userID string) ([]model.HoldingRecord, error) {
	stored, err := r.GetStoredHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(stored) == 0 {
		synced, err := r.hasSynced(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !synced {
			return nil, apperrors.ErrHoldingsNotFound
		}
	}

	records := make([]model.HoldingRecord, len(stored))
	for i, h := range stored {
		records[i] = h.Record
	}
	return records, nil
}

// GetStoredHoldings returns the user's holding rows including their metadata.
func (r *HoldingRepository) GetStoredHoldings(ctx context.Context, userID string) ([]model.StoredHolding, error) {
	query := `
		SELECT id, user_id, fund_name, scheme_code, folio_number, purchase_amount,
		       current_value, bought_date, units_allocated, synced_at
		FROM holding
		WHERE user_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.StoredHolding{}
	for rows.Next() {
		var h model.StoredHolding
		var syncedAt string

		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Record.FundName,
			&h.Record.SchemeCode,
			&h.Record.FolioNumber,
			&h.Record.PurchaseAmount,
			&h.Record.CurrentValue,
			&h.Record.PurchaseDate,
			&h.Record.UnitsAllocated,
			&syncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		h.SyncedAt, err = ParseTime(syncedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse synced_at: %w", err)
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// ReplaceHoldings swaps the user's stored holdings for records in a single transaction
// and returns the number of rows written.
func (r *HoldingRepository) ReplaceHoldings(ctx context.Context, userID string, records []model.HoldingRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM holding WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("failed to clear holdings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO holding (
			id, user_id, position, fund_name, scheme_code, folio_number,
			purchase_amount, current_value, bought_date, units_allocated, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare holding insert: %w", err)
	}
	defer stmt.Close()

	syncedAt := r.now().UTC().Format(time.RFC3339)
	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			userID,
			i,
			rec.FundName,
			rec.SchemeCode,
			rec.FolioNumber,
			rec.PurchaseAmount,
			rec.CurrentValue,
			rec.PurchaseDate,
			rec.UnitsAllocated,
			syncedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert holding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit holdings: %w", err)
	}

	return len(records), nil
}

// ListUserIDs returns every user with stored holdings or a recorded sync.
func (r *HoldingRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id FROM holding
		UNION
		SELECT user_id FROM sync_run
		ORDER BY user_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user IDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user IDs: %w", err)
	}

	return ids, nil
}

// RecordSyncRun stores the outcome of one user sync.
func (r *HoldingRepository) RecordSyncRun(ctx context.Context, run model.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_run (id, user_id, started_at, finished_at, record_count, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.UserID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.RecordCount,
		run.Status,
		run.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}
	return nil
}

// LastSyncRun returns the most recent sync for the user, or nil when there is none.
func (r *HoldingRepository) LastSyncRun(ctx context.Context, userID string) (*model.SyncRun, error) {
	query := `
		SELECT id, user_id, started_at, finished_at, record_count, status, message
		FROM sync_run
		WHERE user_id = ?
		ORDER BY finished_at DESC, started_at DESC, rowid DESC
		LIMIT 1
	`

	var run model.SyncRun
	var startedAt, finishedAt string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&run.ID,
		&run.UserID,
		&startedAt,
		&finishedAt,
		&run.RecordCount,
		&run.Status,
		&run.Message,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run: %w", err)
	}

	if run.StartedAt, err = ParseTime(startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if run.FinishedAt, err = ParseTime(finishedAt); err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}

	return &run, nil
}

// hasSynced reports whether a sync for the user ever completed. Failed runs do not count.
func (r *HoldingRepository) hasSynced(ctx context.Context, userID string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sync_run
		WHERE user_id = ? AND status IN (?, ?)
	`

	var n int
	err := r.db.QueryRowContext(ctx, query, userID, model.SyncStatusOK, model.SyncStatusEmpty).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count sync runs: %w", err)
	}
	return n > 0, nil
}
