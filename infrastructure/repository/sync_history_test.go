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

func TestSyncHistoryRepository_CreateAndFinalizeOnce(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewSyncHistoryRepository(conn)
	ctx := context.Background()

	history := &domain.SyncHistory{
		TenantID:     "tenant-1",
		ConnectionID: "conn-1",
		Provider:     domain.ProviderMeta,
		StartedAt:    time.Now(),
	}

	mock.ExpectExec("INSERT INTO sync_history").
		WithArgs(sqlmock.AnyArg(), "tenant-1", "conn-1", "meta", "running", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE sync_history SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sync_history SET").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Create(ctx, history))
	assert.NotEmpty(t, history.ID)
	assert.Equal(t, domain.SyncStatusRunning, history.Status)

	finished := time.Now()
	history.Status = domain.SyncStatusPartial
	history.FinishedAt = &finished

	require.NoError(t, repo.Finalize(ctx, history))
	assert.ErrorIs(t, repo.Finalize(ctx, history), ErrSyncHistoryFinalized)
}

func TestSyncHistoryRepository_ListRecent(t *testing.T) {
	t.Run("filtra pelo tenant", func(t *testing.T) {
		conn, mock := newMockConn(t)
		repo := NewSyncHistoryRepository(conn)

		started := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows(syncHistoryColumns).
			AddRow("hist-1", "tenant-1", "conn-1", "meta", "partial", started, started.Add(time.Minute), int64(60000),
				3, 1, 4, 2, 6, 5, 0, "unavailable", "act_2: service unavailable")

		mock.ExpectQuery("SELECT (.+) FROM sync_history WHERE tenant_id = \\$1 ORDER BY started_at DESC LIMIT 20").
			WithArgs("tenant-1").
			WillReturnRows(rows)

		histories, err := repo.ListRecent(context.Background(), "tenant-1", 20)

		require.NoError(t, err)
		require.Len(t, histories, 1)
		assert.Equal(t, domain.SyncStatusPartial, histories[0].Status)
		assert.Equal(t, 3, histories[0].Counts.Accounts)
		assert.Equal(t, "unavailable", histories[0].ErrorCategory)
		require.NotNil(t, histories[0].FinishedAt)
	})

	t.Run("sem tenant não consulta o banco", func(t *testing.T) {
		conn, _ := newMockConn(t)
		repo := NewSyncHistoryRepository(conn)

		histories, err := repo.ListRecent(context.Background(), "", 20)

		assert.Nil(t, histories)
		assert.ErrorIs(t, err, ErrTenantIDRequired)
	})
}
