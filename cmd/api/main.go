package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/internal/api"
	"github.com/vfg2006/adsync-api/internal/app"
	"github.com/vfg2006/adsync-api/internal/config"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	app.ConfigureLogger(cfg.App.LogLevel)
	logrus.Infof("api: log level set to %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("api: failed to build dependencies")
	}
	defer deps.Close()

	if err := deps.Scheduler.Start(ctx); err != nil {
		logrus.WithError(err).Error("api: failed to start provider sync scheduler")
	}

	server, err := api.New(cfg, api.Services{
		Orchestrator:  deps.Orchestrator,
		Histories:     deps.Histories,
		Correlator:    deps.Correlator,
		Ledger:        deps.Ledger,
		Scheduler:     deps.Scheduler,
		Authenticator: deps.Authenticator,
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}
