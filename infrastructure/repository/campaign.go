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

const campaignsTable = "campaigns"

var campaignColumns = []string{
	"id", "tenant_id", "ad_account_id", "external_id", "name", "status", "objective",
	"daily_budget", "lifetime_budget", "bid_strategy", "metadata", "created_at", "updated_at",
}

type CampaignRepository interface {
	ListCampaignsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.Campaign, error)
	SaveCampaign(ctx context.Context, campaign *domain.Campaign, change *domain.ChangeRecord) error
}

type campaignRepository struct {
	conn    postgres.Conn
	changes ChangeRecordRepository
}

func NewCampaignRepository(conn postgres.Conn, changes ChangeRecordRepository) CampaignRepository {
	return &campaignRepository{
		conn:    conn,
		changes: changes,
	}
}

func (r *campaignRepository) ListCampaignsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.Campaign, error) {
	campaigns := make(map[string]*domain.Campaign)
	if len(externalIDs) == 0 {
		return campaigns, nil
	}

	query, args, err := squirrel.
		Select(campaignColumns...).
		From(campaignsTable).
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
		c := &domain.Campaign{}
		var dailyBudget, lifetimeBudget sql.NullInt64
		var bidStrategy sql.NullString
		var metadata []byte

		if err := rows.Scan(
			&c.ID,
			&c.TenantID,
			&c.AdAccountID,
			&c.ExternalID,
			&c.Name,
			&c.Status,
			&c.Objective,
			&dailyBudget,
			&lifetimeBudget,
			&bidStrategy,
			&metadata,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		c.DailyBudget = nullInt64(dailyBudget)
		c.LifetimeBudget = nullInt64(lifetimeBudget)
		c.BidStrategy = bidStrategy.String
		if err := decodeJSON(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of campaign %s: %w", c.ID, err)
		}

		campaigns[c.ExternalID] = c
	}

	return campaigns, rows.Err()
}

// SaveCampaign grava a campanha e, quando houver, o registro de mudança na
// mesma transação.
func (r *campaignRepository) SaveCampaign(ctx context.Context, campaign *domain.Campaign, change *domain.ChangeRecord) error {
	isNew := campaign.ID == ""

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		metadata, err := jsonColumn(campaign.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		var builder squirrel.Sqlizer
		if isNew {
			id, err := utils.GenerateID()
			if err != nil {
				return fmt.Errorf("generating campaign id: %w", err)
			}
			campaign.ID = id

			builder = squirrel.
				Insert(campaignsTable).
				Columns(campaignColumns...).
				Values(campaign.ID, campaign.TenantID, campaign.AdAccountID, campaign.ExternalID, campaign.Name, campaign.Status,
					campaign.Objective, campaign.DailyBudget, campaign.LifetimeBudget, nullString(campaign.BidStrategy), metadata,
					campaign.CreatedAt, campaign.UpdatedAt).
				PlaceholderFormat(squirrel.Dollar)
		} else {
			builder = squirrel.
				Update(campaignsTable).
				SetMap(map[string]any{
					"name":            campaign.Name,
					"status":          campaign.Status,
					"objective":       campaign.Objective,
					"daily_budget":    campaign.DailyBudget,
					"lifetime_budget": campaign.LifetimeBudget,
					"bid_strategy":    nullString(campaign.BidStrategy),
					"metadata":        metadata,
					"updated_at":      campaign.UpdatedAt,
				}).
				Where(squirrel.Eq{"tenant_id": campaign.TenantID, "id": campaign.ID}).
				PlaceholderFormat(squirrel.Dollar)
		}

		if err := execSqlizer(ctx, tx, builder); err != nil {
			return err
		}

		if change == nil {
			return nil
		}
		change.EntityID = campaign.ID
		return r.changes.AppendTx(ctx, tx, change)
	})
	if err != nil && isNew {
		campaign.ID = ""
	}

	return err
}
