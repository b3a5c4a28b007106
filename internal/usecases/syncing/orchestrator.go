package syncing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/lease"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/credentialing"
	"github.com/vfg2006/adsync-api/internal/usecases/reconciling"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
	"github.com/vfg2006/adsync-api/pkg/metrics"
)

const leaseKeyPrefix = "connection:"

type Orchestrator interface {
	SyncAllProviderAccounts(ctx context.Context, tenantID string) (*domain.SyncSummary, error)
}

type Service struct {
	connections   repository.ConnectionRepository
	histories     repository.SyncHistoryRepository
	resolver      credentialing.Resolver
	reconciler    reconciling.Engine
	locker        lease.Locker
	adapters      map[domain.Provider]ProviderAdapter
	maxConcurrent int
	leaseTTL      time.Duration
	now           func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	connections repository.ConnectionRepository,
	histories repository.SyncHistoryRepository,
	resolver credentialing.Resolver,
	reconciler reconciling.Engine,
	locker lease.Locker,
	adapters ...ProviderAdapter,
) *Service {
	byProvider := make(map[domain.Provider]ProviderAdapter, len(adapters))
	for _, a := range adapters {
		byProvider[a.Provider()] = a
	}

	maxConcurrent := cfg.ProviderSync.MaxConcurrentJobs
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Service{
		connections:   connections,
		histories:     histories,
		resolver:      resolver,
		reconciler:    reconciler,
		locker:        locker,
		adapters:      byProvider,
		maxConcurrent: maxConcurrent,
		leaseTTL:      cfg.Lease.TTL,
		now:           time.Now,
	}
}

// SyncAllProviderAccounts sincroniza todas as conexões ativas do tenant. Só
// devolve erro quando o tenant ou suas conexões não podem ser lidos; o resto
// vai para o resumo.
func (s *Service) SyncAllProviderAccounts(ctx context.Context, tenantID string) (*domain.SyncSummary, error) {
	if tenantID == "" {
		return nil, NewSyncError(ErrTenantIDRequired, apiErrors.ErrMissingRequiredData, "")
	}

	if log.GetCorrelationID(ctx) == "" {
		ctx, _ = log.WithCorrelationID(ctx)
	}
	fields := logrus.Fields{
		"tenant_id":      tenantID,
		"correlation_id": log.GetCorrelationID(ctx),
	}

	exists, err := s.connections.TenantExists(ctx, tenantID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("sync: failed to check tenant")
		return nil, NewSyncError(ErrSyncStore, apiErrors.ErrDatabaseOperation, err.Error())
	}
	if !exists {
		return nil, NewSyncError(ErrTenantNotFound, apiErrors.ErrTenantNotFound, tenantID)
	}

	connections, err := s.connections.ListActiveConnections(ctx, tenantID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("sync: failed to list active connections")
		return nil, NewSyncError(ErrSyncStore, apiErrors.ErrDatabaseOperation, err.Error())
	}

	summary := &domain.SyncSummary{
		TenantID:    tenantID,
		Results:     []domain.AccountResult{},
		Connections: []domain.ConnectionResult{},
		StartedAt:   s.now().UTC(),
	}

	logrus.WithFields(fields).WithField("connections", len(connections)).Info("sync: starting tenant sync")

	for _, conn := range connections {
		connResult, accounts := s.syncConnection(ctx, conn)
		summary.Connections = append(summary.Connections, connResult)
		summary.Results = append(summary.Results, accounts...)
	}

	summary.FinishedAt = s.now().UTC()
	summary.Stats = buildStats(summary)

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"connections": summary.Stats.Connections,
		"accounts":    summary.Stats.Accounts,
		"succeeded":   summary.Stats.Succeeded,
		"degraded":    summary.Stats.Degraded,
		"failed":      summary.Stats.Failed,
		"changes":     summary.Stats.Changes,
		"duration_ms": summary.Stats.DurationMs,
	}).Info("sync: tenant sync finished")

	return summary, nil
}

func (s *Service) syncConnection(ctx context.Context, conn *domain.Connection) (domain.ConnectionResult, []domain.AccountResult) {
	result := domain.ConnectionResult{ConnectionID: conn.ID, Provider: conn.Provider}
	fields := logrus.Fields{
		"tenant_id":      conn.TenantID,
		"connection_id":  conn.ID,
		"provider":       conn.Provider,
		"correlation_id": log.GetCorrelationID(ctx),
	}

	adapter, ok := s.adapters[conn.Provider]
	if !ok {
		logrus.WithFields(fields).Warn("sync: no adapter for provider, connection ignored")
		result.Status = domain.ConnectionRunFailed
		result.Message = "unsupported provider"
		return result, nil
	}

	held, err := s.locker.Acquire(ctx, leaseKeyPrefix+conn.ID, s.leaseTTL)
	if err != nil {
		if errors.Is(err, lease.ErrLeaseHeld) {
			metrics.LeaseContention.Inc()
			logrus.WithFields(fields).Info("sync: connection already syncing, skipping")
			result.Status = domain.ConnectionRunSyncInProgress
			return result, nil
		}
		logrus.WithFields(fields).WithError(err).Error("sync: failed to acquire lease")
		result.Status = domain.ConnectionRunFailed
		result.Message = err.Error()
		return result, nil
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	heartbeatDone := make(chan struct{})
	heartbeatFields := logrus.Fields{"connection_id": conn.ID, "lease_holder": held.Holder}
	go func() {
		defer close(heartbeatDone)
		s.keepAlive(runCtx, held, cancelRun, heartbeatFields)
	}()

	defer func() {
		cancelRun()
		<-heartbeatDone
		if err := s.locker.Release(context.WithoutCancel(ctx), held); err != nil {
			logrus.WithFields(fields).WithError(err).Warn("sync: failed to release lease")
		}
	}()

	startedAt := s.now().UTC()
	history := &domain.SyncHistory{
		TenantID:     conn.TenantID,
		ConnectionID: conn.ID,
		Provider:     conn.Provider,
		StartedAt:    startedAt,
	}
	if err := s.histories.Create(ctx, history); err != nil {
		logrus.WithFields(fields).WithError(err).Error("sync: failed to create sync history")
		result.Status = domain.ConnectionRunFailed
		result.Message = err.Error()
		return result, nil
	}
	fields["sync_history_id"] = history.ID

	accounts := s.syncAccounts(runCtx, conn, adapter, history.ID, fields)

	s.finalize(ctx, history, accounts, fields)

	if anySucceeded(accounts) {
		if err := s.connections.TouchLastSync(context.WithoutCancel(ctx), conn.TenantID, conn.ID, s.now().UTC()); err != nil {
			logrus.WithFields(fields).WithError(err).Warn("sync: failed to update last sync")
		}
	}

	result.Status = domain.ConnectionRunCompleted
	result.SyncHistoryID = history.ID
	result.HistoryStatus = history.Status
	return result, accounts
}

func (s *Service) syncAccounts(ctx context.Context, conn *domain.Connection, adapter ProviderAdapter, historyID string, fields logrus.Fields) []domain.AccountResult {
	cred, err := s.resolver.Resolve(conn.RawCredential())
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("sync: credential could not be resolved")
		s.countOutcome(conn.Provider, domain.AccountOutcomeCredentialError)
		return []domain.AccountResult{{
			ConnectionID: conn.ID,
			Provider:     conn.Provider,
			Outcome:      domain.AccountOutcomeCredentialError,
			Message:      err.Error(),
			Counts:       domain.SyncCounts{Accounts: 1, AccountsFailed: 1},
		}}
	}

	if cred.DroppedSelections > 0 {
		logrus.WithFields(fields).WithField("dropped", cred.DroppedSelections).Warn("sync: malformed account selections ignored")
	}
	if len(cred.SelectedAccountIDs) == 0 {
		logrus.WithFields(fields).Warn("sync: connection has no selected accounts")
		return []domain.AccountResult{}
	}

	results := make([]domain.AccountResult, len(cred.SelectedAccountIDs))
	semaphore := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	var authExpired atomic.Bool

	for i, accountID := range cred.SelectedAccountIDs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, accountID string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			if authExpired.Load() {
				results[i] = skippedAccount(conn, accountID, domain.AccountOutcomeAuthExpired, "credential expired earlier in this run")
				s.countOutcome(conn.Provider, domain.AccountOutcomeAuthExpired)
				return
			}

			results[i] = s.syncAccount(ctx, conn, adapter, *cred, accountID, historyID, fields)

			if results[i].Outcome == domain.AccountOutcomeAuthExpired && authExpired.CompareAndSwap(false, true) {
				s.markConnectionFailed(ctx, conn, fields)
			}
		}(i, accountID)
	}

	wg.Wait()
	return results
}

func (s *Service) syncAccount(ctx context.Context, conn *domain.Connection, adapter ProviderAdapter, cred domain.Credential, accountID, historyID string, fields logrus.Fields) domain.AccountResult {
	entry := logrus.WithFields(fields).WithField("external_account_id", accountID)

	if err := ctx.Err(); err != nil {
		s.countOutcome(conn.Provider, domain.AccountOutcomeUnavailable)
		return skippedAccount(conn, accountID, domain.AccountOutcomeUnavailable, err.Error())
	}

	graph, err := adapter.FetchAccountGraph(ctx, cred, accountID)
	if err != nil {
		outcome := domain.OutcomeForError(err)
		entry.WithError(err).WithField("outcome", outcome).Error("sync: failed to fetch account")
		s.countOutcome(conn.Provider, outcome)
		return skippedAccount(conn, accountID, outcome, err.Error())
	}

	reconciled, err := s.reconciler.Reconcile(ctx, reconciling.Run{
		TenantID:      conn.TenantID,
		ConnectionID:  conn.ID,
		SyncHistoryID: historyID,
		RunAt:         s.now().UTC(),
	}, graph)
	if err != nil {
		entry.WithError(err).Error("sync: failed to reconcile account")
		s.countOutcome(conn.Provider, domain.AccountOutcomeUnavailable)
		return skippedAccount(conn, accountID, domain.AccountOutcomeUnavailable, err.Error())
	}

	result := domain.AccountResult{
		ConnectionID:      conn.ID,
		Provider:          conn.Provider,
		ExternalAccountID: accountID,
		Outcome:           domain.AccountOutcomeOK,
		Counts:            reconciled.Counts(),
	}
	result.Counts.Accounts = 1

	if reconciled.Degraded() {
		result.Outcome = domain.AccountOutcomeDegraded
		for _, e := range reconciled.Errors {
			result.Errors = append(result.Errors, e.Error())
		}
	}

	s.countOutcome(conn.Provider, result.Outcome)
	entry.WithFields(logrus.Fields{
		"outcome": result.Outcome,
		"changes": result.Counts.Changes,
		"skipped": result.Counts.Skipped,
	}).Info("sync: account synced")

	return result
}

// markConnectionFailed só loga a transição quando foi esta execução que a fez.
func (s *Service) markConnectionFailed(ctx context.Context, conn *domain.Connection, fields logrus.Fields) {
	changed, err := s.connections.UpdateConnectionStatus(context.WithoutCancel(ctx), conn.TenantID, conn.ID, domain.ConnectionStatusFailed)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("sync: failed to mark connection as failed")
		return
	}
	if changed {
		logrus.WithFields(fields).Warn("sync: provider credential expired, connection marked as failed")
	}
}

func (s *Service) finalize(ctx context.Context, history *domain.SyncHistory, accounts []domain.AccountResult, fields logrus.Fields) {
	finishedAt := s.now().UTC()
	history.FinishedAt = &finishedAt
	history.DurationMs = finishedAt.Sub(history.StartedAt).Milliseconds()
	history.Status = historyStatus(accounts)

	for _, a := range accounts {
		history.Counts.Add(a.Counts)
		if !a.Outcome.Succeeded() && history.ErrorCategory == "" {
			history.ErrorCategory = string(a.Outcome)
			history.ErrorMessage = a.Message
		}
	}

	if err := s.histories.Finalize(context.WithoutCancel(ctx), history); err != nil {
		entry := logrus.WithFields(fields).WithError(err)
		if errors.Is(err, repository.ErrSyncHistoryFinalized) {
			entry.Warn("sync: sync history was already finalized")
		} else {
			entry.Error("sync: failed to finalize sync history")
		}
	}

	metrics.SyncRuns.WithLabelValues(string(history.Provider), string(history.Status)).Inc()
	metrics.SyncDuration.WithLabelValues(string(history.Provider)).Observe(finishedAt.Sub(history.StartedAt).Seconds())

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"status":      history.Status,
		"accounts":    history.Counts.Accounts,
		"failed":      history.Counts.AccountsFailed,
		"duration_ms": history.DurationMs,
	}).Info("sync: sync history finalized")
}

// keepAlive estende o lease a cada TTL/3. Se o lease for perdido a execução
// é cancelada.
func (s *Service) keepAlive(ctx context.Context, held *domain.Lease, lost context.CancelFunc, fields logrus.Fields) {
	interval := s.leaseTTL / 3
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.locker.Extend(ctx, held, s.leaseTTL)
			if err == nil {
				continue
			}
			if errors.Is(err, lease.ErrLeaseLost) {
				logrus.WithFields(fields).Error("sync: lease lost, aborting run")
				lost()
				return
			}
			if ctx.Err() != nil {
				return
			}
			logrus.WithFields(fields).WithError(err).Warn("sync: failed to extend lease")
		}
	}
}

func (s *Service) countOutcome(provider domain.Provider, outcome domain.AccountOutcome) {
	metrics.AccountOutcomes.WithLabelValues(string(provider), string(outcome)).Inc()
}

func skippedAccount(conn *domain.Connection, accountID string, outcome domain.AccountOutcome, message string) domain.AccountResult {
	return domain.AccountResult{
		ConnectionID:      conn.ID,
		Provider:          conn.Provider,
		ExternalAccountID: accountID,
		Outcome:           outcome,
		Message:           message,
		Counts:            domain.SyncCounts{Accounts: 1, AccountsFailed: 1},
	}
}

// historyStatus: success quando todas as contas estão ok, failed quando
// nenhuma foi processada, partial no resto.
func historyStatus(accounts []domain.AccountResult) domain.SyncStatus {
	ok, processed := 0, 0
	for _, a := range accounts {
		if a.Outcome == domain.AccountOutcomeOK {
			ok++
		}
		if a.Outcome.Succeeded() {
			processed++
		}
	}

	switch {
	case ok == len(accounts):
		return domain.SyncStatusSuccess
	case processed == 0:
		return domain.SyncStatusFailed
	default:
		return domain.SyncStatusPartial
	}
}

func anySucceeded(accounts []domain.AccountResult) bool {
	for _, a := range accounts {
		if a.Outcome.Succeeded() {
			return true
		}
	}
	return false
}

func buildStats(summary *domain.SyncSummary) domain.SyncStats {
	stats := domain.SyncStats{
		Connections: len(summary.Connections),
		Accounts:    len(summary.Results),
		DurationMs:  summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	}

	for _, r := range summary.Results {
		switch {
		case r.Outcome == domain.AccountOutcomeOK:
			stats.Succeeded++
		case r.Outcome == domain.AccountOutcomeDegraded:
			stats.Degraded++
		default:
			stats.Failed++
		}
		stats.Campaigns += r.Counts.Campaigns
		stats.AdGroups += r.Counts.AdGroups
		stats.Ads += r.Counts.Ads
		stats.Changes += r.Counts.Changes
		stats.Skipped += r.Counts.Skipped
	}

	return stats
}
