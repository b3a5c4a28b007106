package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/log"
)

// ProviderSyncConfig representa a configuração do agendador de sincronização
type ProviderSyncConfig struct {
	CronSchedule      string
	SyncEnabled       bool
	MaxConcurrentJobs int
	LeaseTTL          time.Duration
}

// ProviderSyncService agenda a sincronização de todos os tenants com conexões ativas
type ProviderSyncService struct {
	scheduler    *gocron.Scheduler
	config       ProviderSyncConfig
	connections  repository.ConnectionRepository
	orchestrator syncing.Orchestrator

	syncMutex           sync.Mutex
	syncRunning         bool
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncTenants     int
	lastSyncFailures    int
}

func NewProviderSyncService(
	connections repository.ConnectionRepository,
	orchestrator syncing.Orchestrator,
	appConfig *config.Config,
) *ProviderSyncService {
	syncConfig := ProviderSyncConfig{
		CronSchedule:      appConfig.ScheduledSync.CronSchedule,
		SyncEnabled:       appConfig.ScheduledSync.Enabled,
		MaxConcurrentJobs: appConfig.ProviderSync.MaxConcurrentJobs,
		LeaseTTL:          appConfig.Lease.TTL,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"sync_enabled":        syncConfig.SyncEnabled,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
	}).Info("scheduler: provider sync configuration loaded")

	return &ProviderSyncService{
		scheduler:    gocron.NewScheduler(time.UTC),
		config:       syncConfig,
		connections:  connections,
		orchestrator: orchestrator,
	}
}

// Start inicia o agendador
func (s *ProviderSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("scheduler: provider sync disabled by configuration")
		return nil
	}

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllTenants(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de provedores: %w", err)
	}

	s.scheduler.StartAsync()
	logrus.WithField("cron", s.config.CronSchedule).Info("scheduler: provider sync scheduled")

	go func() {
		<-ctx.Done()
		logrus.Info("scheduler: stopping provider sync")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllTenants roda uma sincronização por tenant, em sequência. O
// paralelismo fica dentro de cada tenant, no orquestrador.
func (s *ProviderSyncService) syncAllTenants(ctx context.Context) {
	if !s.begin() {
		logrus.Info("scheduler: provider sync already running, skipping")
		return
	}
	s.runAllTenants(ctx)
}

// runAllTenants supõe que o chamador já marcou a execução com begin.
func (s *ProviderSyncService) runAllTenants(ctx context.Context) {
	startTime := time.Now()
	tenants, failures := 0, 0
	defer func() {
		s.finish(tenants, failures)
	}()

	tenantIDs, err := s.connections.ListTenantsWithActiveConnections(ctx)
	if err != nil {
		logrus.WithError(err).Error("scheduler: failed to list tenants with active connections")
		return
	}

	if len(tenantIDs) == 0 {
		logrus.Info("scheduler: no tenants with active connections")
		return
	}

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			logrus.Warn("scheduler: context cancelled, stopping provider sync")
			return
		}

		tenants++
		runCtx, correlationID := log.WithCorrelationID(ctx)

		summary, err := s.orchestrator.SyncAllProviderAccounts(runCtx, tenantID)
		if err != nil {
			failures++
			logrus.WithFields(logrus.Fields{
				"tenant_id":      tenantID,
				"correlation_id": correlationID,
				"error":          err.Error(),
			}).Error("scheduler: tenant sync failed")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"tenant_id":      tenantID,
			"correlation_id": correlationID,
			"accounts":       summary.Stats.Accounts,
			"failed":         summary.Stats.Failed,
			"changes":        summary.Stats.Changes,
		}).Info("scheduler: tenant sync finished")
	}

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"tenants":  tenants,
		"failures": failures,
	}).Info("scheduler: provider sync finished")
}

func (s *ProviderSyncService) begin() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	return true
}

func (s *ProviderSyncService) finish(tenants, failures int) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	s.syncRunning = false
	s.lastSyncCompletedAt = time.Now()
	s.lastSyncTenants = tenants
	s.lastSyncFailures = failures
}

// TriggerManualSync inicia uma sincronização fora do agendamento. Retorna
// false quando já existe uma em andamento.
func (s *ProviderSyncService) TriggerManualSync(ctx context.Context) bool {
	if !s.begin() {
		logrus.Info("scheduler: provider sync already running, manual trigger ignored")
		return false
	}

	logrus.Info("scheduler: manual provider sync triggered")
	go s.runAllTenants(context.WithoutCancel(ctx))
	return true
}

// GetStatus retorna o status atual do agendador
func (s *ProviderSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"lease_ttl":              s.config.LeaseTTL.String(),
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_tenants":      s.lastSyncTenants,
		"last_sync_failures":     s.lastSyncFailures,
	}
}
