package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/secret"
)

const (
	tenantsTable     = "tenants"
	connectionsTable = "connections"
)

var connectionColumns = []string{
	"id", "tenant_id", "provider", "status", "credentials", "metadata",
	"credentials_updated_at", "metadata_updated_at", "last_sync_at", "created_at", "updated_at",
}

type ConnectionRepository interface {
	TenantExists(ctx context.Context, tenantID string) (bool, error)
	ListTenantsWithActiveConnections(ctx context.Context) ([]string, error)
	ListActiveConnections(ctx context.Context, tenantID string) ([]*domain.Connection, error)
	GetConnection(ctx context.Context, tenantID, connectionID string) (*domain.Connection, error)
	UpdateConnectionStatus(ctx context.Context, tenantID, connectionID string, status domain.ConnectionStatus) (bool, error)
	TouchLastSync(ctx context.Context, tenantID, connectionID string, at time.Time) error
}

type connectionRepository struct {
	conn postgres.Conn
	box  *secret.Box
}

func NewConnectionRepository(conn postgres.Conn, box *secret.Box) ConnectionRepository {
	if box == nil {
		box = secret.NewBox("")
	}
	return &connectionRepository{
		conn: conn,
		box:  box,
	}
}

func (r *connectionRepository) TenantExists(ctx context.Context, tenantID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(tenantsTable).
		Where(squirrel.Eq{"id": tenantID}).
		Prefix("SELECT EXISTS(").
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, wrapDBError(err)
	}

	return exists, nil
}

func (r *connectionRepository) ListTenantsWithActiveConnections(ctx context.Context) ([]string, error) {
	query, args, err := squirrel.
		Select("DISTINCT tenant_id").
		From(connectionsTable).
		Where(squirrel.Eq{"status": domain.ActiveConnectionStatuses}).
		OrderBy("tenant_id ASC").
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

	tenants := make([]string, 0)
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenantID)
	}

	return tenants, rows.Err()
}

func (r *connectionRepository) ListActiveConnections(ctx context.Context, tenantID string) ([]*domain.Connection, error) {
	query, args, err := squirrel.
		Select(connectionColumns...).
		From(connectionsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "status": domain.ActiveConnectionStatuses}).
		OrderBy("provider ASC", "id ASC").
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

	connections := make([]*domain.Connection, 0)
	for rows.Next() {
		c, err := r.scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, c)
	}

	return connections, rows.Err()
}

func (r *connectionRepository) GetConnection(ctx context.Context, tenantID, connectionID string) (*domain.Connection, error) {
	query, args, err := squirrel.
		Select(connectionColumns...).
		From(connectionsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	c, err := r.scanConnection(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return c, nil
}

// UpdateConnectionStatus só altera quando o status é diferente, então a
// transição acontece uma vez mesmo com várias contas falhando juntas.
func (r *connectionRepository) UpdateConnectionStatus(ctx context.Context, tenantID, connectionID string, status domain.ConnectionStatus) (bool, error) {
	query, args, err := squirrel.
		Update(connectionsTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": connectionID}).
		Where(squirrel.NotEq{"status": status}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrapDBError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *connectionRepository) TouchLastSync(ctx context.Context, tenantID, connectionID string, at time.Time) error {
	query, args, err := squirrel.
		Update(connectionsTable).
		Set("last_sync_at", at).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (r *connectionRepository) scanConnection(row rowScanner) (*domain.Connection, error) {
	c := &domain.Connection{}
	var credentials, metadata []byte
	var credentialsUpdatedAt, metadataUpdatedAt, lastSyncAt sql.NullTime

	if err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.Provider,
		&c.Status,
		&credentials,
		&metadata,
		&credentialsUpdatedAt,
		&metadataUpdatedAt,
		&lastSyncAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// uma credencial ilegível falha só a própria conexão, na resolução
	opened, err := r.box.Open(credentials)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id":     c.TenantID,
			"connection_id": c.ID,
			"error":         err.Error(),
		}).Error("connection: stored credentials could not be opened")
		c.CredentialsErr = fmt.Errorf("opening credentials of connection %s: %w", c.ID, err)
	} else {
		c.Credentials = opened
	}

	c.Metadata = metadata
	c.CredentialsUpdatedAt = nullTime(credentialsUpdatedAt)
	c.MetadataUpdatedAt = nullTime(metadataUpdatedAt)
	c.LastSyncAt = nullTime(lastSyncAt)

	return c, nil
}
