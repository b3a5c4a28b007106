// Package main implementa o syncctl, CLI de operação da sincronização de provedores.
package main

import (
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/adsync-api/internal/app"
	"github.com/vfg2006/adsync-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "syncctl",
	Short: "Operações de sincronização de provedores de anúncios",
	Long: `syncctl roda, sem passar pela API, as mesmas operações expostas em HTTP:
sincronizar um tenant, consultar o histórico de mudanças e aplicar o schema.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	app.ConfigureLogger(cfg.App.LogLevel)
	// a saída do comando vai para stdout, os logs para stderr
	logrus.SetOutput(os.Stderr)
	return cfg, nil
}

func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	return fn(deps)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
