// Package app monta as dependências compartilhadas pela API e pelo syncctl.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/database/postgres"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/adsync-api/infrastructure/lease"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/scheduler"
	"github.com/vfg2006/adsync-api/internal/usecases/authenticating"
	"github.com/vfg2006/adsync-api/internal/usecases/correlating"
	"github.com/vfg2006/adsync-api/internal/usecases/credentialing"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/internal/usecases/tracking"
	"github.com/vfg2006/adsync-api/pkg/secret"
)

type App struct {
	Config        *config.Config
	DB            *postgres.Connection
	Redis         *redis.Client
	Connections   repository.ConnectionRepository
	Histories     repository.SyncHistoryRepository
	Ledger        *tracking.Service
	Correlator    *correlating.Service
	Orchestrator  *syncing.Service
	Scheduler     *scheduler.ProviderSyncService
	Authenticator *authenticating.Service
}

// ConfigureLogger aplica o formato e o nível de log da configuração.
func ConfigureLogger(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("app: invalid log level %q, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
}

// Connect abre só o banco, para comandos que não precisam do resto.
func Connect(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	logrus.Info("app: postgres connection established")
	return conn, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: conn}

	if cfg.Lease.Backend == config.LeaseBackendRedis {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logrus.WithField("addr", cfg.Redis.Addr).Info("app: redis connection established")
	}

	box := secret.NewBox(cfg.SecretKey)

	a.Connections = repository.NewConnectionRepository(conn, box)
	a.Histories = repository.NewSyncHistoryRepository(conn)
	changes := repository.NewChangeRecordRepository(conn)
	insights := repository.NewInsightRepository(conn)

	locker, err := lease.New(cfg, conn, a.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}

	engine := reconciling.NewEngine(
		repository.NewAdAccountRepository(conn),
		repository.NewCampaignRepository(conn, changes),
		repository.NewAdGroupRepository(conn, changes),
		repository.NewAdRepository(conn, changes),
		insights,
	)

	metaIntegrator := meta.New(cfg, metaclient.NewClient(cfg))

	a.Ledger = tracking.NewLedger(changes)
	a.Correlator = correlating.NewService(cfg.Correlation, a.Ledger, insights)
	a.Orchestrator = syncing.NewOrchestrator(cfg, a.Connections, a.Histories, credentialing.NewResolver(), engine, locker, metaIntegrator)
	a.Scheduler = scheduler.NewProviderSyncService(a.Connections, a.Orchestrator, cfg)
	a.Authenticator = authenticating.NewService(cfg)

	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logrus.WithError(err).Warn("app: failed to close redis client")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logrus.WithError(err).Warn("app: failed to close postgres connection")
		}
	}
}
