package syncing

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/adsync-api/infrastructure/lease"
	leaseMocks "github.com/vfg2006/adsync-api/infrastructure/lease/mocks"
	repoMocks "github.com/vfg2006/adsync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/credentialing"
	credMocks "github.com/vfg2006/adsync-api/internal/usecases/credentialing/mocks"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	reconMocks "github.com/vfg2006/adsync-api/internal/usecases/reconciling/mocks"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing/mocks"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/retry"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc         *Service
	connections *repoMocks.MockConnectionRepository
	histories   *repoMocks.MockSyncHistoryRepository
	resolver    *credMocks.MockResolver
	reconciler  *reconMocks.MockEngine
	locker      *leaseMocks.MockLocker
	adapter     *mocks.MockProviderAdapter
	held        *domain.Lease
}

func newFixture(t *testing.T, maxConcurrent int, ttl time.Duration) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		connections: repoMocks.NewMockConnectionRepository(ctrl),
		histories:   repoMocks.NewMockSyncHistoryRepository(ctrl),
		resolver:    credMocks.NewMockResolver(ctrl),
		reconciler:  reconMocks.NewMockEngine(ctrl),
		locker:      leaseMocks.NewMockLocker(ctrl),
		adapter:     mocks.NewMockProviderAdapter(ctrl),
		held:        &domain.Lease{Key: "connection:conn-1", Holder: "holder-1"},
	}
	f.adapter.EXPECT().Provider().Return(domain.ProviderMeta).AnyTimes()

	cfg := &config.Config{
		ProviderSync: config.ProviderSync{MaxConcurrentJobs: maxConcurrent},
		Lease:        config.Lease{TTL: ttl},
	}
	f.svc = NewOrchestrator(cfg, f.connections, f.histories, f.resolver, f.reconciler, f.locker, f.adapter)
	f.svc.now = func() time.Time { return fixedNow }

	return f
}

func metaConnection() *domain.Connection {
	return &domain.Connection{ID: "conn-1", TenantID: "tenant-1", Provider: domain.ProviderMeta, Status: domain.ConnectionStatusActive}
}

// expectRun registra as chamadas comuns a toda execução que obtém o lease.
func (f *fixture) expectRun(accounts ...string) *domain.SyncHistory {
	finalized := &domain.SyncHistory{}

	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-1").Return(true, nil)
	f.connections.EXPECT().ListActiveConnections(gomock.Any(), "tenant-1").Return([]*domain.Connection{metaConnection()}, nil)
	f.locker.EXPECT().Acquire(gomock.Any(), "connection:conn-1", gomock.Any()).Return(f.held, nil)
	f.histories.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *domain.SyncHistory) error {
		h.ID = "hist-1"
		h.Status = domain.SyncStatusRunning
		return nil
	})
	f.resolver.EXPECT().Resolve(gomock.Any()).Return(&domain.Credential{AccessToken: "token", SelectedAccountIDs: accounts}, nil)
	f.histories.EXPECT().Finalize(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *domain.SyncHistory) error {
		*finalized = *h
		return nil
	}).Times(1)
	f.locker.EXPECT().Release(gomock.Any(), f.held).Return(nil).Times(1)

	return finalized
}

func TestSyncAllProviderAccounts_TenantInexistente(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-x").Return(false, nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-x")

	assert.Nil(t, summary)
	require.True(t, errors.Is(err, ErrTenantNotFound))
	var syncErr *SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, apiErrors.ErrTenantNotFound, syncErr.Code)
}

func TestSyncAllProviderAccounts_FalhaAoListarConexoes(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-1").Return(true, nil)
	f.connections.EXPECT().ListActiveConnections(gomock.Any(), "tenant-1").Return(nil, errors.New("connection refused"))

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")

	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, ErrSyncStore))
}

func TestSyncAllProviderAccounts_FalhaParcial(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	finalized := f.expectRun("act_1", "act_2")

	graph := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "act_1"}}
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_1").Return(graph, nil)
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_2").
		Return(nil, domain.NewProviderError(domain.ErrProviderRejected, 400, "invalid parameter"))

	f.reconciler.EXPECT().Reconcile(gomock.Any(), reconciling.Run{
		TenantID:      "tenant-1",
		ConnectionID:  "conn-1",
		SyncHistoryID: "hist-1",
		RunAt:         fixedNow,
	}, graph).Return(&domain.ReconcileResult{
		Campaigns: 2,
		Changes:   []*domain.ChangeRecord{{ExternalID: "c1"}},
	}, nil)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, domain.AccountOutcomeOK, summary.Results[0].Outcome)
	assert.Equal(t, "act_1", summary.Results[0].ExternalAccountID)
	assert.Equal(t, domain.AccountOutcomeRejected, summary.Results[1].Outcome)

	require.Len(t, summary.Connections, 1)
	assert.Equal(t, domain.ConnectionRunCompleted, summary.Connections[0].Status)
	assert.Equal(t, "hist-1", summary.Connections[0].SyncHistoryID)
	assert.Equal(t, domain.SyncStatusPartial, summary.Connections[0].HistoryStatus)

	assert.Equal(t, domain.SyncStatusPartial, finalized.Status)
	assert.Equal(t, 2, finalized.Counts.Accounts)
	assert.Equal(t, 1, finalized.Counts.AccountsFailed)
	assert.Equal(t, 2, finalized.Counts.Campaigns)
	assert.Equal(t, "rejected", finalized.ErrorCategory)
	require.NotNil(t, finalized.FinishedAt)

	assert.Equal(t, 1, summary.Stats.Succeeded)
	assert.Equal(t, 1, summary.Stats.Failed)
	assert.Equal(t, 1, summary.Stats.Changes)
}

func TestSyncAllProviderAccounts_ContaDoMeioIndisponivel(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	finalized := f.expectRun("act_1", "act_2", "act_3")

	graph1 := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "act_1"}}
	graph3 := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "act_3"}}
	exhausted := &retry.ExhaustedError{
		Attempts: 4,
		Err:      domain.NewProviderError(domain.ErrProviderUnavailable, 503, "service unavailable"),
	}

	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_1").Return(graph1, nil)
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_2").Return(nil, exhausted)
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_3").Return(graph3, nil)
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), graph1).Return(&domain.ReconcileResult{Campaigns: 1}, nil)
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), graph3).Return(&domain.ReconcileResult{Campaigns: 2}, nil)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, domain.AccountOutcomeOK, summary.Results[0].Outcome)
	assert.Equal(t, domain.AccountOutcomeUnavailable, summary.Results[1].Outcome)
	assert.Equal(t, "act_2", summary.Results[1].ExternalAccountID)
	assert.Equal(t, domain.AccountOutcomeOK, summary.Results[2].Outcome)

	assert.Equal(t, domain.SyncStatusPartial, finalized.Status)
	assert.Equal(t, 3, finalized.Counts.Accounts)
	assert.Equal(t, 1, finalized.Counts.AccountsFailed)
	assert.Equal(t, 3, finalized.Counts.Campaigns)
	assert.Equal(t, 2, summary.Stats.Succeeded)
	assert.Equal(t, 1, summary.Stats.Failed)
}

func TestSyncAllProviderAccounts_RespeitaLimiteDeConcorrencia(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	finalized := f.expectRun("act_1", "act_2", "act_3", "act_4")

	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	var once sync.Once

	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Credential, accountID string) (*domain.RawAccountGraph, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			if n >= 2 {
				once.Do(func() { close(release) })
			}

			select {
			case <-release:
			case <-time.After(time.Second):
			}
			return &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: accountID}}, nil
		}).Times(4)
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.ReconcileResult{}, nil).Times(4)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), peak.Load())
	require.Len(t, summary.Results, 4)
	for i, r := range summary.Results {
		assert.Equal(t, domain.AccountOutcomeOK, r.Outcome)
		assert.Equal(t, []string{"act_1", "act_2", "act_3", "act_4"}[i], r.ExternalAccountID)
	}
	assert.Equal(t, domain.SyncStatusSuccess, finalized.Status)
}

func TestSyncAllProviderAccounts_CredencialIlegivelFalhaSoAConexao(t *testing.T) {
	f := newFixture(t, 1, time.Hour)

	unreadable := &domain.Connection{
		ID: "conn-bad", TenantID: "tenant-1", Provider: domain.ProviderMeta, Status: domain.ConnectionStatusActive,
		CredentialsErr: errors.New("secret: sealed payload could not be opened"),
	}
	healthy := metaConnection()
	healthy.Credentials = json.RawMessage(`{"access_token":"tok","selected_accounts":["act_111"]}`)
	badLease := &domain.Lease{Key: "connection:conn-bad", Holder: "holder-2"}

	finalized := map[string]domain.SyncHistory{}
	var mu sync.Mutex

	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-1").Return(true, nil)
	f.connections.EXPECT().ListActiveConnections(gomock.Any(), "tenant-1").Return([]*domain.Connection{unreadable, healthy}, nil)
	f.locker.EXPECT().Acquire(gomock.Any(), "connection:conn-bad", time.Hour).Return(badLease, nil)
	f.locker.EXPECT().Acquire(gomock.Any(), "connection:conn-1", time.Hour).Return(f.held, nil)
	f.histories.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *domain.SyncHistory) error {
		h.ID = "hist-" + h.ConnectionID
		h.Status = domain.SyncStatusRunning
		return nil
	}).Times(2)
	f.resolver.EXPECT().Resolve(gomock.Any()).DoAndReturn(credentialing.Resolve).Times(2)

	graph := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "111"}}
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "111").Return(graph, nil)
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), graph).Return(&domain.ReconcileResult{}, nil)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	f.histories.EXPECT().Finalize(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *domain.SyncHistory) error {
		mu.Lock()
		defer mu.Unlock()
		finalized[h.ConnectionID] = *h
		return nil
	}).Times(2)
	f.locker.EXPECT().Release(gomock.Any(), badLease).Return(nil)
	f.locker.EXPECT().Release(gomock.Any(), f.held).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	assert.Equal(t, "conn-bad", summary.Results[0].ConnectionID)
	assert.Equal(t, domain.AccountOutcomeCredentialError, summary.Results[0].Outcome)
	assert.Equal(t, "conn-1", summary.Results[1].ConnectionID)
	assert.Equal(t, domain.AccountOutcomeOK, summary.Results[1].Outcome)

	require.Len(t, summary.Connections, 2)
	assert.Equal(t, domain.SyncStatusFailed, finalized["conn-bad"].Status)
	assert.Equal(t, domain.SyncStatusSuccess, finalized["conn-1"].Status)
}

func TestSyncAllProviderAccounts_ContaDegradada(t *testing.T) {
	f := newFixture(t, 2, time.Hour)
	finalized := f.expectRun("act_1")

	graph := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "act_1"}}
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_1").Return(graph, nil)
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), graph).Return(&domain.ReconcileResult{
		Skipped: []domain.SkippedEntity{{EntityType: domain.EntityTypeAdGroup, ExternalID: "g9"}},
		Errors:  []error{&domain.ReconciliationError{Err: domain.ErrCrossTenantReference, EntityType: domain.EntityTypeAdGroup, ExternalID: "g9"}},
	}, nil)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.AccountOutcomeDegraded, summary.Results[0].Outcome)
	assert.Len(t, summary.Results[0].Errors, 1)
	assert.Equal(t, domain.SyncStatusPartial, finalized.Status)
	assert.Equal(t, 1, summary.Stats.Degraded)
}

func TestSyncAllProviderAccounts_CredencialExpiradaMarcaConexaoUmaVez(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	finalized := f.expectRun("act_1", "act_2", "act_3")

	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_1").
		Return(nil, domain.NewProviderError(domain.ErrProviderAuthExpired, 401, "session expired")).Times(1)
	f.connections.EXPECT().UpdateConnectionStatus(gomock.Any(), "tenant-1", "conn-1", domain.ConnectionStatusFailed).
		Return(true, nil).Times(1)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	for _, r := range summary.Results {
		assert.Equal(t, domain.AccountOutcomeAuthExpired, r.Outcome)
	}
	assert.Equal(t, domain.SyncStatusFailed, finalized.Status)
	assert.Equal(t, "authExpired", finalized.ErrorCategory)
	assert.Equal(t, 3, summary.Stats.Failed)
}

func TestSyncAllProviderAccounts_LeaseOcupado(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-1").Return(true, nil)
	f.connections.EXPECT().ListActiveConnections(gomock.Any(), "tenant-1").Return([]*domain.Connection{metaConnection()}, nil)
	f.locker.EXPECT().Acquire(gomock.Any(), "connection:conn-1", time.Hour).Return(nil, lease.ErrLeaseHeld)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Empty(t, summary.Results)
	require.Len(t, summary.Connections, 1)
	assert.Equal(t, domain.ConnectionRunSyncInProgress, summary.Connections[0].Status)
	assert.Empty(t, summary.Connections[0].SyncHistoryID)
}

func TestSyncAllProviderAccounts_CredencialInvalida(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	finalized := &domain.SyncHistory{}

	f.connections.EXPECT().TenantExists(gomock.Any(), "tenant-1").Return(true, nil)
	f.connections.EXPECT().ListActiveConnections(gomock.Any(), "tenant-1").Return([]*domain.Connection{metaConnection()}, nil)
	f.locker.EXPECT().Acquire(gomock.Any(), "connection:conn-1", time.Hour).Return(f.held, nil)
	f.histories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.resolver.EXPECT().Resolve(gomock.Any()).
		Return(nil, domain.NewCredentialError(domain.ErrCredentialMissing, "access_token", "no token"))
	f.histories.EXPECT().Finalize(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, h *domain.SyncHistory) error {
		*finalized = *h
		return nil
	}).Times(1)
	f.locker.EXPECT().Release(gomock.Any(), f.held).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, domain.AccountOutcomeCredentialError, summary.Results[0].Outcome)
	assert.Equal(t, domain.SyncStatusFailed, finalized.Status)
}

func TestSyncAllProviderAccounts_CancelamentoFinalizaHistorico(t *testing.T) {
	f := newFixture(t, 1, time.Hour)
	finalized := f.expectRun("act_1", "act_2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.svc.SyncAllProviderAccounts(ctx, "tenant-1")
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	for _, r := range summary.Results {
		assert.Equal(t, domain.AccountOutcomeUnavailable, r.Outcome)
	}
	assert.Equal(t, domain.SyncStatusFailed, finalized.Status)
}

func TestSyncAllProviderAccounts_HeartbeatEstendeLease(t *testing.T) {
	f := newFixture(t, 1, 30*time.Millisecond)
	f.expectRun("act_1")

	graph := &domain.RawAccountGraph{Account: domain.RawAdAccount{ExternalID: "act_1"}}
	f.adapter.EXPECT().FetchAccountGraph(gomock.Any(), gomock.Any(), "act_1").
		DoAndReturn(func(context.Context, domain.Credential, string) (*domain.RawAccountGraph, error) {
			time.Sleep(80 * time.Millisecond)
			return graph, nil
		})
	f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any(), graph).Return(&domain.ReconcileResult{}, nil)
	f.locker.EXPECT().Extend(gomock.Any(), f.held, 30*time.Millisecond).Return(nil).MinTimes(1)
	f.connections.EXPECT().TouchLastSync(gomock.Any(), "tenant-1", "conn-1", fixedNow).Return(nil)

	summary, err := f.svc.SyncAllProviderAccounts(context.Background(), "tenant-1")
	require.NoError(t, err)

	assert.Equal(t, domain.AccountOutcomeOK, summary.Results[0].Outcome)
}

func TestHistoryStatus(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []domain.AccountOutcome
		expected domain.SyncStatus
	}{
		{"todas ok", []domain.AccountOutcome{domain.AccountOutcomeOK, domain.AccountOutcomeOK}, domain.SyncStatusSuccess},
		{"uma degradada", []domain.AccountOutcome{domain.AccountOutcomeOK, domain.AccountOutcomeDegraded}, domain.SyncStatusPartial},
		{"só degradada", []domain.AccountOutcome{domain.AccountOutcomeDegraded}, domain.SyncStatusPartial},
		{"nenhuma processada", []domain.AccountOutcome{domain.AccountOutcomeUnavailable, domain.AccountOutcomeRejected}, domain.SyncStatusFailed},
		{"sem contas", nil, domain.SyncStatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := make([]domain.AccountResult, 0, len(tt.outcomes))
			for _, o := range tt.outcomes {
				accounts = append(accounts, domain.AccountResult{Outcome: o})
			}
			assert.Equal(t, tt.expected, historyStatus(accounts))
		})
	}
}
