package lease

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const leasesTable = "connection_leases"

type PostgresLocker struct {
	conn postgres.Conn
	now  func() time.Time
}

func NewPostgresLocker(conn postgres.Conn) *PostgresLocker {
	return &PostgresLocker{
		conn: conn,
		now:  time.Now,
	}
}

// Acquire insere a trava ou toma uma trava vencida. Se a linha existe e
// ainda vale, o upsert não devolve nada.
func (l *PostgresLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*domain.Lease, error) {
	now := l.now().UTC()
	lease := &domain.Lease{
		Key:        key,
		Holder:     newHolder(),
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	query, args, err := squirrel.
		Insert(leasesTable).
		Columns("connection_id", "holder", "acquired_at", "expires_at").
		Values(lease.Key, lease.Holder, lease.AcquiredAt, lease.ExpiresAt).
		Suffix(`
			ON CONFLICT (connection_id) DO UPDATE SET
				holder = EXCLUDED.holder,
				acquired_at = EXCLUDED.acquired_at,
				expires_at = EXCLUDED.expires_at
			WHERE connection_leases.expires_at <= EXCLUDED.acquired_at
			RETURNING holder
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var holder string
	if err := l.conn.QueryRowContext(ctx, query, args...).Scan(&holder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaseHeld
		}
		return nil, fmt.Errorf("lease: acquiring %s: %w", key, err)
	}

	return lease, nil
}

func (l *PostgresLocker) Extend(ctx context.Context, lease *domain.Lease, ttl time.Duration) error {
	expiresAt := l.now().UTC().Add(ttl)

	query, args, err := squirrel.
		Update(leasesTable).
		Set("expires_at", expiresAt).
		Where(squirrel.Eq{"connection_id": lease.Key, "holder": lease.Holder}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := l.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("lease: extending %s: %w", lease.Key, err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return ErrLeaseLost
	}

	lease.ExpiresAt = expiresAt
	return nil
}

func (l *PostgresLocker) Release(ctx context.Context, lease *domain.Lease) error {
	query, args, err := squirrel.
		Delete(leasesTable).
		Where(squirrel.Eq{"connection_id": lease.Key, "holder": lease.Holder}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := l.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("lease: releasing %s: %w", lease.Key, err)
	}

	return nil
}
