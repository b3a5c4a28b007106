package lease

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/internal/domain"
)

func newPostgresLocker(t *testing.T) (*PostgresLocker, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	locker := NewPostgresLocker(postgres.NewConnectionFromDB(db))
	locker.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }

	return locker, mock
}

func TestPostgresLocker_Acquire(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "trava livre",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO connection_leases (.+) ON CONFLICT").
					WillReturnRows(sqlmock.NewRows([]string{"holder"}).AddRow("h"))
			},
		},
		{
			name: "trava ainda válida",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO connection_leases").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrLeaseHeld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locker, mock := newPostgresLocker(t)
			tt.setup(mock)

			lease, err := locker.Acquire(context.Background(), "conn-1", 15*time.Minute)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, lease)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "conn-1", lease.Key)
			assert.Equal(t, 15*time.Minute, lease.ExpiresAt.Sub(lease.AcquiredAt))
		})
	}
}

func TestPostgresLocker_ExtendLost(t *testing.T) {
	locker, mock := newPostgresLocker(t)
	lease := &domain.Lease{Key: "conn-1", Holder: "holder-1"}

	mock.ExpectExec("UPDATE connection_leases SET expires_at").
		WithArgs(sqlmock.AnyArg(), "conn-1", "holder-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, locker.Extend(context.Background(), lease, time.Minute), ErrLeaseLost)
}

func TestPostgresLocker_ExtendMovesExpiry(t *testing.T) {
	locker, mock := newPostgresLocker(t)
	lease := &domain.Lease{Key: "conn-1", Holder: "holder-1"}

	mock.ExpectExec("UPDATE connection_leases SET expires_at").
		WithArgs(sqlmock.AnyArg(), "conn-1", "holder-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, locker.Extend(context.Background(), lease, time.Minute))
	assert.Equal(t, time.Date(2024, 3, 10, 12, 1, 0, 0, time.UTC), lease.ExpiresAt)
}

func TestPostgresLocker_Release(t *testing.T) {
	locker, mock := newPostgresLocker(t)
	lease := &domain.Lease{Key: "conn-1", Holder: "holder-1"}

	mock.ExpectExec("DELETE FROM connection_leases WHERE").
		WithArgs("conn-1", "holder-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, locker.Release(context.Background(), lease))
}
