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

func newChange(changedAt time.Time) *domain.ChangeRecord {
	return &domain.ChangeRecord{
		TenantID:   "tenant-1",
		EntityType: domain.EntityTypeCampaign,
		EntityID:   "cmp-1",
		ExternalID: "c1",
		ChangeType: domain.ChangeTypeUpdated,
		ChangedAt:  changedAt,
		Fields: map[string]domain.FieldChange{
			"status": {Old: "ACTIVE", New: "PAUSED"},
		},
	}
}

func TestChangeRecordRepository_Append(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewChangeRecordRepository(conn)

	changedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := newChange(changedAt)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("tenant-1:campaign:cmp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT MAX\\(changed_at\\) FROM change_records").
		WithArgs("cmp-1", "campaign", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectExec("INSERT INTO change_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Append(context.Background(), rec)

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, changedAt, rec.ChangedAt)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestChangeRecordRepository_AppendClampsToLastRecord(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewChangeRecordRepository(conn)

	last := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := newChange(last.Add(-time.Minute))

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT MAX\\(changed_at\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(last))
	mock.ExpectExec("INSERT INTO change_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Append(context.Background(), rec)

	require.NoError(t, err)
	assert.True(t, rec.ChangedAt.Equal(last))
}

func TestChangeRecordRepository_AppendRollsBackOnInsertError(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewChangeRecordRepository(conn)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT MAX\\(changed_at\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectExec("INSERT INTO change_records").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Append(context.Background(), newChange(time.Now()))

	assert.ErrorIs(t, err, assert.AnError)
}

func TestChangeRecordRepository_ListByEntity(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewChangeRecordRepository(conn)

	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	mock.ExpectQuery("FROM change_records WHERE (.+) ORDER BY changed_at ASC").
		WithArgs("cmp-1", "campaign", "tenant-1").
		WillReturnRows(sqlmock.NewRows(changeRecordColumns).
			AddRow("r1", "tenant-1", "campaign", "cmp-1", "c1", "created", first,
				[]byte(`{"name":{"old":null,"new":"A"}}`), nil, []byte(`{"name":"A"}`), "h1", nil, first).
			AddRow("r2", "tenant-1", "campaign", "cmp-1", "c1", "updated", second,
				[]byte(`{"name":{"old":"A","new":"B"}}`), []byte(`{"name":"A"}`), []byte(`{"name":"B"}`), "h2", nil, second))

	records, err := repo.ListByEntity(context.Background(), "tenant-1", domain.EntityTypeCampaign, "cmp-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.ChangeTypeCreated, records[0].ChangeType)
	assert.Nil(t, records[0].Fields["name"].Old)
	assert.Equal(t, "B", records[1].Fields["name"].New)
	assert.Equal(t, "h2", records[1].SyncHistoryID)
	assert.Empty(t, records[1].Reason)
}

func TestChangeRecordRepository_ListInWindow(t *testing.T) {
	conn, mock := newMockConn(t)
	repo := NewChangeRecordRepository(conn)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	mock.ExpectQuery("FROM change_records WHERE").
		WithArgs("tenant-1", start, end).
		WillReturnRows(sqlmock.NewRows(changeRecordColumns))

	records, err := repo.ListInWindow(context.Background(), "tenant-1", start, end)

	require.NoError(t, err)
	assert.Empty(t, records)
}
