package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func TestInsightRepository_UpsertPointsSkipsUnresolved(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewInsightRepository(conn)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []domain.InsightPoint{
		{EntityType: domain.EntityTypeAd, EntityID: "ad-1", EntityExternalID: "a1", Date: day, Impressions: 10, Clicks: 1, Spend: 2.5},
		{EntityType: domain.EntityTypeAd, EntityExternalID: "a2", Date: day, Impressions: 99},
	}

	mock.ExpectExec("INSERT INTO insight_points (.+) ON CONFLICT").
		WithArgs("tenant-1", "ad", "ad-1", "2024-03-01", int64(10), int64(1), 2.5, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpsertPoints(context.Background(), "tenant-1", points))
}

func TestInsightRepository_UpsertNothingToWrite(t *testing.T) {
	conn, _ := newMockConn(t)
	repo := NewInsightRepository(conn)

	require.NoError(t, repo.UpsertPoints(context.Background(), "tenant-1", nil))
}

func TestInsightRepository_ListSeries(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewInsightRepository(conn)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	mock.ExpectQuery("FROM insight_points WHERE").
		WithArgs("ad-1", "ad", "tenant-1", "2024-03-01", "2024-03-08").
		WillReturnRows(sqlmock.NewRows([]string{"entity_type", "entity_id", "date", "impressions", "clicks", "spend", "conversions"}).
			AddRow("ad", "ad-1", start, int64(100), int64(5), 10.0, 1.0))

	points, err := repo.ListSeries(context.Background(), "tenant-1", domain.EntityTypeAd, "ad-1", start, end)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "tenant-1", points[0].TenantID)
	assert.EqualValues(t, 100, points[0].Impressions)
}
