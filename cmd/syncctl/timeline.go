package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/adsync-api/internal/app"
	"github.com/vfg2006/adsync-api/internal/domain"
)

var (
	windowDays int
	startDate  string
	endDate    string
)

func init() {
	timelineCmd.Flags().IntVar(&windowDays, "window-days", 0, "dias antes e depois de cada mudança (0 usa o padrão)")

	changesCmd.Flags().IntVar(&windowDays, "window-days", 0, "dias antes e depois de cada mudança (0 usa o padrão)")
	changesCmd.Flags().StringVar(&startDate, "start", "", "início da janela (YYYY-MM-DD)")
	changesCmd.Flags().StringVar(&endDate, "end", "", "fim exclusivo da janela (YYYY-MM-DD)")
	_ = changesCmd.MarkFlagRequired("start")
	_ = changesCmd.MarkFlagRequired("end")
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <tenant-id> <entity-type> <entity-id>",
	Short: "Mostra as mudanças de uma entidade com a performance antes e depois",
	Long: `Mostra as mudanças de uma campanha, conjunto ou anúncio com a performance
agregada antes e depois de cada mudança.

Exemplos:
  syncctl timeline tenant-1 campaign 8fKq2a
  syncctl timeline tenant-1 ad x81LmQ --window-days 14`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		return withApp(ctx, func(deps *app.App) error {
			items, err := deps.Correlator.GetChangesWithPerformance(ctx, args[0], domain.EntityType(args[1]), args[2], windowDays)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		})
	},
}

var changesCmd = &cobra.Command{
	Use:   "changes <tenant-id>",
	Short: "Lista as mudanças do tenant numa janela de datas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.DateOnly, startDate)
		if err != nil {
			return fmt.Errorf("--start inválido: %w", err)
		}
		end, err := time.Parse(time.DateOnly, endDate)
		if err != nil {
			return fmt.Errorf("--end inválido: %w", err)
		}

		ctx := context.Background()
		return withApp(ctx, func(deps *app.App) error {
			items, err := deps.Correlator.GetChangesInWindowWithPerformance(ctx, args[0], start, end, windowDays)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		})
	},
}
