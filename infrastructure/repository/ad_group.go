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

const adGroupsTable = "ad_groups"

var adGroupColumns = []string{
	"id", "tenant_id", "ad_account_id", "campaign_id", "external_id", "campaign_external_id", "name", "status",
	"daily_budget", "lifetime_budget", "bid_amount", "bid_strategy", "optimization_goal", "billing_event",
	"metadata", "created_at", "updated_at",
}

type AdGroupRepository interface {
	ListAdGroupsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.AdGroup, error)
	SaveAdGroup(ctx context.Context, adGroup *domain.AdGroup, change *domain.ChangeRecord) error
}

type adGroupRepository struct {
	conn    postgres.Conn
	changes ChangeRecordRepository
}

func NewAdGroupRepository(conn postgres.Conn, changes ChangeRecordRepository) AdGroupRepository {
	return &adGroupRepository{
		conn:    conn,
		changes: changes,
	}
}

func (r *adGroupRepository) ListAdGroupsByExternalIDs(ctx context.Context, tenantID string, externalIDs []string) (map[string]*domain.AdGroup, error) {
	adGroups := make(map[string]*domain.AdGroup)
	if len(externalIDs) == 0 {
		return adGroups, nil
	}

	query, args, err := squirrel.
		Select(adGroupColumns...).
		From(adGroupsTable).
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
		g := &domain.AdGroup{}
		var dailyBudget, lifetimeBudget, bidAmount sql.NullInt64
		var bidStrategy, optimizationGoal, billingEvent sql.NullString
		var metadata []byte

		if err := rows.Scan(
			&g.ID,
			&g.TenantID,
			&g.AdAccountID,
			&g.CampaignID,
			&g.ExternalID,
			&g.CampaignExternalID,
			&g.Name,
			&g.Status,
			&dailyBudget,
			&lifetimeBudget,
			&bidAmount,
			&bidStrategy,
			&optimizationGoal,
			&billingEvent,
			&metadata,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, err
		}

		g.DailyBudget = nullInt64(dailyBudget)
		g.LifetimeBudget = nullInt64(lifetimeBudget)
		g.BidAmount = nullInt64(bidAmount)
		g.BidStrategy = bidStrategy.String
		g.OptimizationGoal = optimizationGoal.String
		g.BillingEvent = billingEvent.String
		if err := decodeJSON(metadata, &g.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of ad group %s: %w", g.ID, err)
		}

		adGroups[g.ExternalID] = g
	}

	return adGroups, rows.Err()
}

func (r *adGroupRepository) SaveAdGroup(ctx context.Context, adGroup *domain.AdGroup, change *domain.ChangeRecord) error {
	isNew := adGroup.ID == ""

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		metadata, err := jsonColumn(adGroup.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}

		var builder squirrel.Sqlizer
		if isNew {
			id, err := utils.GenerateID()
			if err != nil {
				return fmt.Errorf("generating ad group id: %w", err)
			}
			adGroup.ID = id

			builder = squirrel.
				Insert(adGroupsTable).
				Columns(adGroupColumns...).
				Values(adGroup.ID, adGroup.TenantID, adGroup.AdAccountID, adGroup.CampaignID, adGroup.ExternalID,
					adGroup.CampaignExternalID, adGroup.Name, adGroup.Status, adGroup.DailyBudget, adGroup.LifetimeBudget,
					adGroup.BidAmount, nullString(adGroup.BidStrategy), nullString(adGroup.OptimizationGoal),
					nullString(adGroup.BillingEvent), metadata, adGroup.CreatedAt, adGroup.UpdatedAt).
				PlaceholderFormat(squirrel.Dollar)
		} else {
			builder = squirrel.
				Update(adGroupsTable).
				SetMap(map[string]any{
					"campaign_id":          adGroup.CampaignID,
					"campaign_external_id": adGroup.CampaignExternalID,
					"name":                 adGroup.Name,
					"status":               adGroup.Status,
					"daily_budget":         adGroup.DailyBudget,
					"lifetime_budget":      adGroup.LifetimeBudget,
					"bid_amount":           adGroup.BidAmount,
					"bid_strategy":         nullString(adGroup.BidStrategy),
					"optimization_goal":    nullString(adGroup.OptimizationGoal),
					"billing_event":        nullString(adGroup.BillingEvent),
					"metadata":             metadata,
					"updated_at":           adGroup.UpdatedAt,
				}).
				Where(squirrel.Eq{"tenant_id": adGroup.TenantID, "id": adGroup.ID}).
				PlaceholderFormat(squirrel.Dollar)
		}

		if err := execSqlizer(ctx, tx, builder); err != nil {
			return err
		}

		if change == nil {
			return nil
		}
		change.EntityID = adGroup.ID
		return r.changes.AppendTx(ctx, tx, change)
	})
	if err != nil && isNew {
		adGroup.ID = ""
	}

	return err
}
