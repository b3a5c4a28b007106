package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/adsync-api/infrastructure/migration"
	"github.com/vfg2006/adsync-api/internal/app"
)

var migrateDryRun bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "só lista os passos, sem conectar ao banco")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Cria ou atualiza o schema do banco",
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateDryRun {
			for _, name := range migration.Steps() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conn, err := app.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		return migration.Apply(ctx, conn)
	},
}
