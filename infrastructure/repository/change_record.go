package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/metrics"
)

const changeRecordsTable = "change_records"

var changeRecordColumns = []string{
	"id", "tenant_id", "entity_type", "entity_id", "external_id", "change_type", "changed_at",
	"fields", "before", "after", "sync_history_id", "reason", "created_at",
}

// ChangeRecordRepository não tem update nem delete: a tabela é só de inserção.
type ChangeRecordRepository interface {
	Append(ctx context.Context, rec *domain.ChangeRecord) error
	AppendTx(ctx context.Context, q postgres.Queryer, rec *domain.ChangeRecord) error
	ListByEntity(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) ([]*domain.ChangeRecord, error)
	ListInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.ChangeRecord, error)
}

type changeRecordRepository struct {
	conn postgres.Conn
}

func NewChangeRecordRepository(conn postgres.Conn) ChangeRecordRepository {
	return &changeRecordRepository{
		conn: conn,
	}
}

func (r *changeRecordRepository) Append(ctx context.Context, rec *domain.ChangeRecord) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		return r.AppendTx(ctx, tx, rec)
	})
}

// AppendTx grava o registro usando a transação do chamador. O lock
// transacional serializa os appends da mesma entidade para que o horário
// nunca fique antes do último registro.
func (r *changeRecordRepository) AppendTx(ctx context.Context, q postgres.Queryer, rec *domain.ChangeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	lockKey := fmt.Sprintf("%s:%s:%s", rec.TenantID, rec.EntityType, rec.EntityID)
	if _, err := q.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", lockKey); err != nil {
		return wrapDBError(err)
	}

	last, err := r.lastChangedAt(ctx, q, rec.TenantID, rec.EntityType, rec.EntityID)
	if err != nil {
		return err
	}

	requested := rec.ChangedAt
	if rec.ClampTo(last) {
		metrics.ClockSkewClamps.Inc()
		logrus.WithFields(logrus.Fields{
			"tenant_id":   rec.TenantID,
			"entity_type": rec.EntityType,
			"entity_id":   rec.EntityID,
			"error": (&domain.LedgerError{
				Err:       domain.ErrClockSkew,
				EntityID:  rec.EntityID,
				Requested: requested,
				Applied:   rec.ChangedAt,
			}).Error(),
		}).Warn("ledger: change timestamp clamped to last record")
	}

	fields, err := jsonColumn(rec.Fields)
	if err != nil {
		return fmt.Errorf("encoding fields: %w", err)
	}
	before, err := jsonColumn(rec.Before)
	if err != nil {
		return fmt.Errorf("encoding before: %w", err)
	}
	after, err := jsonColumn(rec.After)
	if err != nil {
		return fmt.Errorf("encoding after: %w", err)
	}

	return execSqlizer(ctx, q, squirrel.
		Insert(changeRecordsTable).
		Columns(changeRecordColumns...).
		Values(rec.ID, rec.TenantID, rec.EntityType, rec.EntityID, rec.ExternalID, rec.ChangeType, rec.ChangedAt,
			fields, before, after, nullString(rec.SyncHistoryID), nullString(rec.Reason), rec.CreatedAt).
		PlaceholderFormat(squirrel.Dollar))
}

func (r *changeRecordRepository) lastChangedAt(ctx context.Context, q postgres.Queryer, tenantID string, entityType domain.EntityType, entityID string) (time.Time, error) {
	query, args, err := squirrel.
		Select("MAX(changed_at)").
		From(changeRecordsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "entity_type": entityType, "entity_id": entityID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build query: %w", err)
	}

	var last sql.NullTime
	if err := q.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return time.Time{}, wrapDBError(err)
	}

	return last.Time, nil
}

func (r *changeRecordRepository) ListByEntity(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) ([]*domain.ChangeRecord, error) {
	return r.list(ctx, squirrel.Eq{"tenant_id": tenantID, "entity_type": entityType, "entity_id": entityID})
}

// ListInWindow devolve os registros com changed_at em [start, end).
func (r *changeRecordRepository) ListInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.ChangeRecord, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"tenant_id": tenantID},
		squirrel.GtOrEq{"changed_at": start},
		squirrel.Lt{"changed_at": end},
	})
}

func (r *changeRecordRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domain.ChangeRecord, error) {
	query, args, err := squirrel.
		Select(changeRecordColumns...).
		From(changeRecordsTable).
		Where(where).
		OrderBy("changed_at ASC", "created_at ASC", "id ASC").
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

	records := make([]*domain.ChangeRecord, 0)
	for rows.Next() {
		rec, err := scanChangeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanChangeRecord(row rowScanner) (*domain.ChangeRecord, error) {
	rec := &domain.ChangeRecord{}
	var fields, before, after []byte
	var syncHistoryID, reason sql.NullString

	if err := row.Scan(
		&rec.ID,
		&rec.TenantID,
		&rec.EntityType,
		&rec.EntityID,
		&rec.ExternalID,
		&rec.ChangeType,
		&rec.ChangedAt,
		&fields,
		&before,
		&after,
		&syncHistoryID,
		&reason,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := decodeJSON(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decoding fields of change %s: %w", rec.ID, err)
	}
	if err := decodeJSON(before, &rec.Before); err != nil {
		return nil, fmt.Errorf("decoding before of change %s: %w", rec.ID, err)
	}
	if err := decodeJSON(after, &rec.After); err != nil {
		return nil, fmt.Errorf("decoding after of change %s: %w", rec.ID, err)
	}
	rec.SyncHistoryID = syncHistoryID.String
	rec.Reason = reason.String

	return rec, nil
}
