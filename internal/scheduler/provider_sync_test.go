package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	syncMocks "github.com/vfg2006/adsync-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func newProviderSyncService(t *testing.T) (*ProviderSyncService, *mocks.MockConnectionRepository, *syncMocks.MockOrchestrator) {
	ctrl := gomock.NewController(t)
	connections := mocks.NewMockConnectionRepository(ctrl)
	orchestrator := syncMocks.NewMockOrchestrator(ctrl)

	cfg := &config.Config{
		ScheduledSync: config.ScheduledSync{CronSchedule: "0 3 * * *", Enabled: true},
		ProviderSync:  config.ProviderSync{MaxConcurrentJobs: 2},
		Lease:         config.Lease{TTL: time.Minute},
	}

	return NewProviderSyncService(connections, orchestrator, cfg), connections, orchestrator
}

func TestProviderSyncService_syncAllTenants(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		setup            func(*mocks.MockConnectionRepository, *syncMocks.MockOrchestrator)
		expectedTenants  int
		expectedFailures int
	}{
		{
			name: "deve sincronizar cada tenant e seguir após falha",
			setup: func(connections *mocks.MockConnectionRepository, orchestrator *syncMocks.MockOrchestrator) {
				connections.EXPECT().ListTenantsWithActiveConnections(ctx).Return([]string{"tenant-1", "tenant-2", "tenant-3"}, nil)
				orchestrator.EXPECT().SyncAllProviderAccounts(gomock.Any(), "tenant-1").Return(&domain.SyncSummary{TenantID: "tenant-1"}, nil)
				orchestrator.EXPECT().SyncAllProviderAccounts(gomock.Any(), "tenant-2").Return(nil, errors.New("tenant not found"))
				orchestrator.EXPECT().SyncAllProviderAccounts(gomock.Any(), "tenant-3").Return(&domain.SyncSummary{TenantID: "tenant-3"}, nil)
			},
			expectedTenants:  3,
			expectedFailures: 1,
		},
		{
			name: "não deve chamar o orquestrador sem tenants",
			setup: func(connections *mocks.MockConnectionRepository, _ *syncMocks.MockOrchestrator) {
				connections.EXPECT().ListTenantsWithActiveConnections(ctx).Return(nil, nil)
			},
		},
		{
			name: "deve encerrar quando a listagem falha",
			setup: func(connections *mocks.MockConnectionRepository, _ *syncMocks.MockOrchestrator) {
				connections.EXPECT().ListTenantsWithActiveConnections(ctx).Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, connections, orchestrator := newProviderSyncService(t)
			tt.setup(connections, orchestrator)

			service.syncAllTenants(ctx)

			status := service.GetStatus()
			assert.Equal(t, false, status["sync_running"])
			assert.Equal(t, tt.expectedTenants, status["last_sync_tenants"])
			assert.Equal(t, tt.expectedFailures, status["last_sync_failures"])
		})
	}
}

func TestProviderSyncService_IgnoraExecucaoConcorrente(t *testing.T) {
	service, _, _ := newProviderSyncService(t)

	assert.True(t, service.begin())

	// já em andamento: nem o agendador nem o disparo manual iniciam outra
	service.syncAllTenants(context.Background())
	assert.False(t, service.TriggerManualSync(context.Background()))

	service.finish(0, 0)
	assert.Equal(t, false, service.GetStatus()["sync_running"])
}

func TestProviderSyncService_TriggerManualSyncReservaAExecucao(t *testing.T) {
	service, connections, _ := newProviderSyncService(t)

	release := make(chan struct{})
	connections.EXPECT().ListTenantsWithActiveConnections(gomock.Any()).
		DoAndReturn(func(context.Context) ([]string, error) {
			<-release
			return nil, nil
		}).Times(1)

	assert.True(t, service.TriggerManualSync(context.Background()))

	// a execução já está reservada antes da goroutine rodar
	assert.Equal(t, true, service.GetStatus()["sync_running"])
	assert.False(t, service.begin())
	service.syncAllTenants(context.Background())

	close(release)

	assert.Eventually(t, func() bool {
		return service.GetStatus()["sync_running"] == false
	}, time.Second, 10*time.Millisecond)
}
