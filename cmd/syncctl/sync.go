package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vfg2006/adsync-api/internal/app"
	"github.com/vfg2006/adsync-api/pkg/log"
)

var failOnPartial bool

func init() {
	syncCmd.Flags().BoolVar(&failOnPartial, "fail-on-partial", false, "sair com erro quando alguma conta falhar")
}

var syncCmd = &cobra.Command{
	Use:   "sync <tenant-id>",
	Short: "Sincroniza todas as conexões ativas de um tenant",
	Long: `Sincroniza todas as conexões ativas de um tenant e imprime o resumo em JSON.

Exemplos:
  # Sincronizar um tenant
  syncctl sync tenant-1

  # Usar em scripts que precisam detectar falha parcial
  syncctl sync tenant-1 --fail-on-partial`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, _ = log.WithCorrelationID(ctx)

	return withApp(ctx, func(deps *app.App) error {
		summary, err := deps.Orchestrator.SyncAllProviderAccounts(ctx, args[0])
		if err != nil {
			return err
		}

		if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}

		if failOnPartial && summary.Stats.Failed > 0 {
			return fmt.Errorf("%d de %d contas falharam", summary.Stats.Failed, summary.Stats.Accounts)
		}
		return nil
	})
}
