package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const syncHistoryTable = "sync_history"

var (
	ErrSyncHistoryFinalized = errors.New("sync history already finalized")
	ErrTenantIDRequired     = errors.New("tenant ID is required")
)

var syncHistoryColumns = []string{
	"id", "tenant_id", "connection_id", "provider", "status", "started_at", "finished_at", "duration_ms",
	"accounts", "accounts_failed", "campaigns", "ad_groups", "ads", "changes", "skipped",
	"error_category", "error_message",
}

type SyncHistoryRepository interface {
	Create(ctx context.Context, history *domain.SyncHistory) error
	Finalize(ctx context.Context, history *domain.SyncHistory) error
	ListRecent(ctx context.Context, tenantID string, limit uint64) ([]*domain.SyncHistory, error)
}

type syncHistoryRepository struct {
	conn postgres.Conn
}

func NewSyncHistoryRepository(conn postgres.Conn) SyncHistoryRepository {
	return &syncHistoryRepository{
		conn: conn,
	}
}

// Create grava o histórico com status running.
func (r *syncHistoryRepository) Create(ctx context.Context, history *domain.SyncHistory) error {
	if history.ID == "" {
		history.ID = uuid.New().String()
	}
	history.Status = domain.SyncStatusRunning

	return execSqlizer(ctx, r.conn, squirrel.
		Insert(syncHistoryTable).
		Columns("id", "tenant_id", "connection_id", "provider", "status", "started_at").
		Values(history.ID, history.TenantID, history.ConnectionID, history.Provider, history.Status, history.StartedAt).
		PlaceholderFormat(squirrel.Dollar))
}

// Finalize só atualiza históricos ainda em running. Uma segunda chamada
// devolve ErrSyncHistoryFinalized.
func (r *syncHistoryRepository) Finalize(ctx context.Context, history *domain.SyncHistory) error {
	query, args, err := squirrel.
		Update(syncHistoryTable).
		SetMap(map[string]any{
			"status":          history.Status,
			"finished_at":     history.FinishedAt,
			"duration_ms":     history.DurationMs,
			"accounts":        history.Counts.Accounts,
			"accounts_failed": history.Counts.AccountsFailed,
			"campaigns":       history.Counts.Campaigns,
			"ad_groups":       history.Counts.AdGroups,
			"ads":             history.Counts.Ads,
			"changes":         history.Counts.Changes,
			"skipped":         history.Counts.Skipped,
			"error_category":  nullString(history.ErrorCategory),
			"error_message":   nullString(history.ErrorMessage),
		}).
		Where(squirrel.Eq{"id": history.ID, "tenant_id": history.TenantID, "status": domain.SyncStatusRunning}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSyncHistoryFinalized
	}

	return nil
}

func (r *syncHistoryRepository) ListRecent(ctx context.Context, tenantID string, limit uint64) ([]*domain.SyncHistory, error) {
	if tenantID == "" {
		return nil, ErrTenantIDRequired
	}

	query, args, err := squirrel.
		Select(syncHistoryColumns...).
		From(syncHistoryTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("started_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	histories := make([]*domain.SyncHistory, 0)
	for rows.Next() {
		h := &domain.SyncHistory{}
		var finishedAt sql.NullTime
		var durationMs sql.NullInt64
		var errorCategory, errorMessage sql.NullString

		if err := rows.Scan(
			&h.ID,
			&h.TenantID,
			&h.ConnectionID,
			&h.Provider,
			&h.Status,
			&h.StartedAt,
			&finishedAt,
			&durationMs,
			&h.Counts.Accounts,
			&h.Counts.AccountsFailed,
			&h.Counts.Campaigns,
			&h.Counts.AdGroups,
			&h.Counts.Ads,
			&h.Counts.Changes,
			&h.Counts.Skipped,
			&errorCategory,
			&errorMessage,
		); err != nil {
			return nil, err
		}

		h.FinishedAt = nullTime(finishedAt)
		h.DurationMs = durationMs.Int64
		h.ErrorCategory = errorCategory.String
		h.ErrorMessage = errorMessage.String
		histories = append(histories, h)
	}

	return histories, rows.Err()
}
