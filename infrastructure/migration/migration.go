// Package migration cria o schema usado pela sincronização.
package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
)

type step struct {
	name string
	sql  string
}

// Apply roda todos os passos numa única transação.
func Apply(ctx context.Context, conn postgres.Conn) error {
	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, s := range schema {
			if _, err := tx.ExecContext(ctx, s.sql); err != nil {
				logrus.WithFields(logrus.Fields{
					"step":  s.name,
					"error": err.Error(),
				}).Error("migration: step failed")
				return fmt.Errorf("migration step %s: %w", s.name, err)
			}
			logrus.WithField("step", s.name).Debug("migration: step applied")
		}

		logrus.WithField("steps", len(schema)).Info("migration: schema up to date")
		return nil
	})
}

// Steps devolve os nomes dos passos, na ordem de aplicação.
func Steps() []string {
	names := make([]string, len(schema))
	for i, s := range schema {
		names[i] = s.name
	}
	return names
}
