package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

const insightPointsTable = "insight_points"

// limite de linhas por INSERT para ficar longe do máximo de parâmetros do postgres
const insightBatchSize = 500

type InsightRepository interface {
	UpsertPoints(ctx context.Context, tenantID string, points []domain.InsightPoint) error
	ListSeries(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string, start, end time.Time) ([]domain.InsightPoint, error)
}

type insightRepository struct {
	conn postgres.Conn
}

func NewInsightRepository(conn postgres.Conn) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

// UpsertPoints grava apenas pontos com EntityID resolvido.
func (r *insightRepository) UpsertPoints(ctx context.Context, tenantID string, points []domain.InsightPoint) error {
	resolved := make([]domain.InsightPoint, 0, len(points))
	for _, p := range points {
		if p.EntityID != "" {
			resolved = append(resolved, p)
		}
	}

	for start := 0; start < len(resolved); start += insightBatchSize {
		end := min(start+insightBatchSize, len(resolved))

		builder := squirrel.
			Insert(insightPointsTable).
			Columns("tenant_id", "entity_type", "entity_id", "date", "impressions", "clicks", "spend", "conversions").
			PlaceholderFormat(squirrel.Dollar)

		for _, p := range resolved[start:end] {
			builder = builder.Values(tenantID, p.EntityType, p.EntityID, p.Date.Format(time.DateOnly),
				p.Impressions, p.Clicks, p.Spend, p.Conversions)
		}

		builder = builder.Suffix(`
			ON CONFLICT (tenant_id, entity_type, entity_id, date) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				conversions = EXCLUDED.conversions
		`)

		if err := execSqlizer(ctx, r.conn, builder); err != nil {
			return err
		}
	}

	return nil
}

// ListSeries devolve os pontos diários com data em [start, end), em ordem.
func (r *insightRepository) ListSeries(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string, start, end time.Time) ([]domain.InsightPoint, error) {
	query, args, err := squirrel.
		Select("entity_type", "entity_id", "date", "impressions", "clicks", "spend", "conversions").
		From(insightPointsTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "entity_type": entityType, "entity_id": entityID}).
		Where(squirrel.GtOrEq{"date": start.Format(time.DateOnly)}).
		Where(squirrel.Lt{"date": end.Format(time.DateOnly)}).
		OrderBy("date ASC").
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

	points := make([]domain.InsightPoint, 0)
	for rows.Next() {
		p := domain.InsightPoint{TenantID: tenantID}
		if err := rows.Scan(
			&p.EntityType,
			&p.EntityID,
			&p.Date,
			&p.Impressions,
			&p.Clicks,
			&p.Spend,
			&p.Conversions,
		); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}
