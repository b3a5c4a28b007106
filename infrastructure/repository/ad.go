package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/utils"
)

const adsTable = "ads"

var adColumns = []string{
	"id", "tenant_id", "ad_account_id", "ad_group_id", "external_id", "ad_group_external_id", "name", "status",
	"creative", "metadata", "created_at", "updated_at",
}

type AdRepository interface {
	ListAdsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.Ad, error)
	SaveAd(ctx context.Context, ad *domain.Ad, change *domain.ChangeRecord) error
}

type adRepository struct {
	conn    postgres.Conn
	changes ChangeRecordRepository
}

func NewAdRepository(conn postgres.Conn, changes ChangeRecordRepository) AdRepository {
	return &adRepository{
		conn:    conn,
		changes: changes,
	}
}

func (r *adRepository) ListAdsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.Ad, error) {
	ads := make(map[string]*domain.Ad)
	if len(externalIDs) == 0 {
		return ads, nil
	}

	query, args, err := squirrel.
		Select(adColumns...).
		From(adsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "external_id": externalIDs}).
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

	for rows.Next() {
		ad := &domain.Ad{}
		var creative, metadata []byte

		if err := rows.Scan(
			&ad.ID,
			&ad.TenantID,
			&ad.AdAccountID,
			&ad.AdGroupID,
			&ad.ExternalID,
			&ad.AdGroupExternalID,
			&ad.Name,
			&ad.Status,
			&creative,
			&metadata,
			&ad.CreatedAt,
			&ad.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if len(creative) > 0 {
			ad.Creative = &domain.Creative{}
			if err := decodeJSON(creative, ad.Creative); err != nil {
				return nil, fmt.Errorf("decoding creative of ad %s: %w", ad.ID, err)
			}
		}
		if err := decodeJSON(metadata, &ad.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of ad %s: %w", ad.ID, err)
		}

		ads[ad.ExternalID] = ad
	}

	return ads, rows.Err()
}

func (r *adRepository) SaveAd(ctx context.Context, ad *domain.Ad, change *domain.ChangeRecord) error {
	isNew := ad.ID == ""

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		creative, err := jsonColumn(ad.Creative)
		if err != nil {
			return fmt.Errorf("encoding creative: %w", err)
		}
		metadata, err := jsonColumn(ad.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		var builder squirrel.Sqlizer
		if isNew {
			id, err := utils.GenerateID()
			if err != nil {
				return fmt.Errorf("generating ad id: %w", err)
			}
			ad.ID = id

			builder = squirrel.
				Insert(adsTable).
				Columns(adColumns...).
				Values(ad.ID, ad.TenantID, ad.AdAccountID, ad.AdGroupID, ad.ExternalID, ad.AdGroupExternalID,
					ad.Name, ad.Status, creative, metadata, ad.CreatedAt, ad.UpdatedAt).
				PlaceholderFormat(squirrel.Dollar)
		} else {
			builder = squirrel.
				Update(adsTable).
				SetMap(map[string]any{
					"ad_group_id":          ad.AdGroupID,
					"ad_group_external_id": ad.AdGroupExternalID,
					"name":                 ad.Name,
					"status":               ad.Status,
					"creative":             creative,
					"metadata":             metadata,
					"updated_at":           ad.UpdatedAt,
				}).
				Where(squirrel.Eq{"tenant_id": ad.TenantID, "id": ad.ID}).
				PlaceholderFormat(squirrel.Dollar)
		}

		if err := execSqlizer(ctx, tx, builder); err != nil {
			return err
		}

		if change == nil {
			return nil
		}
		change.EntityID = ad.ID
		return r.changes.AppendTx(ctx, tx, change)
	})
	if err != nil && isNew {
		ad.ID = ""
	}

	return err
}
