package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

const adAccountsTable = "ad_accounts"

type AdAccountRepository interface {
	GetAdAccountByExternalID(ctx context.Context, tenantID, externalID string) (*domain.AdAccount, error)
	SaveAdAccount(ctx context.Context, account *domain.AdAccount) error
}

type adAccountRepository struct {
	conn postgres.Conn
}

func NewAdAccountRepository(conn postgres.Conn) AdAccountRepository {
	return &adAccountRepository{
		conn: conn,
	}
}

func (r *adAccountRepository) GetAdAccountByExternalID(ctx context.Context, tenantID, externalID string) (*domain.AdAccount, error) {
	query, args, err := squirrel.
		Select("id, tenant_id, connection_id, external_id, name, currency, status, created_at, updated_at").
		From(adAccountsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	acc := &domain.AdAccount{}
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&acc.ID,
		&acc.TenantID,
		&acc.ConnectionID,
		&acc.ExternalID,
		&acc.Name,
		&acc.Currency,
		&acc.Status,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapDBError(err)
	}

	return acc, nil
}

// SaveAdAccount faz upsert pela chave (tenant_id, external_id) e preenche o
// ID com o valor que ficou no banco.
func (r *adAccountRepository) SaveAdAccount(ctx context.Context, account *domain.AdAccount) error {
	id := account.ID
	if id == "" {
		generated, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("generating ad account id: %w", err)
		}
		id = generated
	}

	query, args, err := squirrel.
		Insert(adAccountsTable).
		Columns("id", "tenant_id", "connection_id", "external_id", "name", "currency", "status", "created_at", "updated_at").
		Values(id, account.TenantID, account.ConnectionID, account.ExternalID, account.Name, account.Currency, account.Status, account.CreatedAt, account.UpdatedAt).
		Suffix(`
			ON CONFLICT (tenant_id, external_id) DO UPDATE SET
				connection_id = EXCLUDED.connection_id,
				name = EXCLUDED.name,
				currency = EXCLUDED.currency,
				status = EXCLUDED.status,
				updated_at = EXCLUDED.updated_at
			RETURNING id
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&account.ID); err != nil {
		return wrapDBError(err)
	}

	return nil
}
