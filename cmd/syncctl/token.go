package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/adsync-api/internal/usecases/authenticating"
)

var (
	tokenTTL      time.Duration
	tokenOperator bool
)

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "validade do token")
	tokenCmd.Flags().BoolVar(&tokenOperator, "operator", false, "token com acesso a todos os tenants")
}

var tokenCmd = &cobra.Command{
	Use:   "token [tenant-id]",
	Short: "Emite um token de acesso à API",
	Long: `Emite um token assinado com AUTH_SECRET. Sem --operator o tenant é obrigatório.

Exemplos:
  syncctl token tenant-1
  syncctl token --operator --ttl 1h`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID := ""
		if len(args) == 1 {
			tenantID = args[0]
		}
		if tenantID == "" && !tokenOperator {
			return fmt.Errorf("informe o tenant ou use --operator")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := authenticating.NewService(cfg).IssueToken(tenantID, tokenOperator, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
