package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
)

func TestApply(t *testing.T) {
	t.Run("aplica todos os passos", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		for _, s := range schema {
			mock.ExpectExec(regexp.QuoteMeta(s.sql)).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()

		err = Apply(context.Background(), postgres.NewConnectionFromDB(db))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falha desfaz a transação", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(schema[0].sql)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(schema[1].sql)).WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		err = Apply(context.Background(), postgres.NewConnectionFromDB(db))

		assert.ErrorContains(t, err, "migration step connections")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSchemaRegrasDoLedger(t *testing.T) {
	steps := Steps()

	assert.Contains(t, steps, "change_records_no_update")
	assert.Contains(t, steps, "change_records_no_delete")
	assert.Less(t, indexOf(steps, "change_records"), indexOf(steps, "change_records_no_update"))
	assert.Less(t, indexOf(steps, "sync_history"), indexOf(steps, "change_records"))
}

func TestSchemaUmaConexaoPorProvedor(t *testing.T) {
	steps := Steps()
	require.Contains(t, steps, "connections_tenant_provider_key")
	assert.Less(t, indexOf(steps, "connections"), indexOf(steps, "connections_tenant_provider_key"))

	for _, s := range schema {
		if s.name != "connections_tenant_provider_key" {
			continue
		}
		assert.Contains(t, s.sql, "CREATE UNIQUE INDEX IF NOT EXISTS")
		assert.Contains(t, s.sql, "ON connections (tenant_id, provider)")
	}
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
