package reconciling

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/metrics"
)

const adAccountEntity domain.EntityType = "ad_account"

const (
	reasonCrossTenant   = "cross_tenant_reference"
	reasonWriteFailed   = "store_write_failed"
	reasonParentSkipped = "parent_skipped"
)

// Run identifica a execução que está reconciliando.
type Run struct {
	TenantID      string
	ConnectionID  string
	SyncHistoryID string
	RunAt         time.Time
}

type Engine interface {
	Reconcile(ctx context.Context, run Run, graph *domain.RawAccountGraph) (*domain.ReconcileResult, error)
}

type Service struct {
	accounts  repository.AdAccountRepository
	campaigns repository.CampaignRepository
	adGroups  repository.AdGroupRepository
	ads       repository.AdRepository
	insights  repository.InsightRepository
}

func NewEngine(
	accounts repository.AdAccountRepository,
	campaigns repository.CampaignRepository,
	adGroups repository.AdGroupRepository,
	ads repository.AdRepository,
	insights repository.InsightRepository,
) *Service {
	return &Service{
		accounts:  accounts,
		campaigns: campaigns,
		adGroups:  adGroups,
		ads:       ads,
		insights:  insights,
	}
}

// parents guarda, por external id, o que aconteceu com cada pai nesta execução.
type parents struct {
	resolved map[string]string
	skipped  map[string]error
}

func newParents() *parents {
	return &parents{
		resolved: make(map[string]string),
		skipped:  make(map[string]error),
	}
}

// Reconcile grava conta, campanhas, conjuntos e anúncios nessa ordem. Um erro
// só é devolvido quando a conta não pode ser gravada; falhas por entidade
// ficam em result.Errors e o restante da conta segue.
func (s *Service) Reconcile(ctx context.Context, run Run, graph *domain.RawAccountGraph) (*domain.ReconcileResult, error) {
	if run.RunAt.IsZero() {
		run.RunAt = time.Now().UTC()
	}

	account, err := s.reconcileAccount(ctx, run, graph.Account)
	if err != nil {
		return nil, err
	}

	result := &domain.ReconcileResult{AdAccountID: account.ID}

	campaignIDs, err := s.reconcileCampaigns(ctx, run, account, graph.Campaigns, result)
	if err != nil {
		return nil, err
	}

	adGroupIDs, err := s.reconcileAdGroups(ctx, run, account, graph.AdGroups, campaignIDs, result)
	if err != nil {
		return nil, err
	}

	adIDs, err := s.reconcileAds(ctx, run, account, graph.Ads, adGroupIDs, result)
	if err != nil {
		return nil, err
	}

	s.storeInsights(ctx, run, graph.Insights, map[domain.EntityType]*parents{
		domain.EntityTypeCampaign: campaignIDs,
		domain.EntityTypeAdGroup:  adGroupIDs,
		domain.EntityTypeAd:       adIDs,
	}, result)

	logrus.WithFields(logrus.Fields{
		"tenant_id":     run.TenantID,
		"ad_account_id": account.ID,
		"external_id":   account.ExternalID,
		"campaigns":     result.Campaigns,
		"ad_groups":     result.AdGroups,
		"ads":           result.Ads,
		"unchanged":     result.Unchanged,
		"changes":       len(result.Changes),
		"skipped":       len(result.Skipped),
	}).Info("reconcile: account reconciled")

	return result, nil
}

func (s *Service) reconcileAccount(ctx context.Context, run Run, raw domain.RawAdAccount) (*domain.AdAccount, error) {
	existing, err := s.accounts.GetAdAccountByExternalID(ctx, run.TenantID, raw.ExternalID)
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: adAccountEntity, ExternalID: raw.ExternalID, Details: "loading account", Cause: err}
	}

	account := &domain.AdAccount{
		TenantID:     run.TenantID,
		ConnectionID: run.ConnectionID,
		ExternalID:   raw.ExternalID,
		Name:         raw.Name,
		Currency:     raw.Currency,
		Status:       raw.Status,
		CreatedAt:    run.RunAt,
		UpdatedAt:    run.RunAt,
	}

	if existing != nil {
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
		if existing.SameAs(account) {
			return existing, nil
		}
	}

	if err := s.accounts.SaveAdAccount(ctx, account); err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: adAccountEntity, ExternalID: raw.ExternalID, Cause: err}
	}

	return account, nil
}

func (s *Service) reconcileCampaigns(ctx context.Context, run Run, account *domain.AdAccount, raws []domain.RawCampaign, result *domain.ReconcileResult) (*parents, error) {
	raws = latestSorted(raws, func(c domain.RawCampaign) string { return c.ExternalID })
	out := newParents()

	externalIDs := make([]string, 0, len(raws))
	for _, raw := range raws {
		externalIDs = append(externalIDs, raw.ExternalID)
	}

	prior, err := s.campaigns.ListCampaignsByExternalIDs(ctx, run.TenantID, externalIDs)
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeCampaign, Details: "loading prior state", Cause: err}
	}

	for _, raw := range raws {
		if out.handled(raw.ExternalID) {
			continue
		}

		existing := prior[raw.ExternalID]

		candidate := &domain.Campaign{
			TenantID:       run.TenantID,
			AdAccountID:    account.ID,
			ExternalID:     raw.ExternalID,
			Name:           raw.Name,
			Status:         raw.Status,
			Objective:      raw.Objective,
			DailyBudget:    raw.DailyBudget,
			LifetimeBudget: raw.LifetimeBudget,
			BidStrategy:    raw.BidStrategy,
			Metadata:       raw.Metadata,
			CreatedAt:      run.RunAt,
			UpdatedAt:      run.RunAt,
		}

		var before domain.FieldSet
		var priorMetadata domain.Metadata
		if existing != nil {
			candidate.ID = existing.ID
			candidate.CreatedAt = existing.CreatedAt
			before = existing.TrackedFields()
			priorMetadata = existing.Metadata
		}

		change, unchanged := planChange(run, domain.EntityTypeCampaign, raw.ExternalID, existing != nil, before, candidate.TrackedFields(), priorMetadata, candidate.Metadata)
		if unchanged {
			result.Unchanged++
			out.resolved[raw.ExternalID] = existing.ID
			continue
		}

		if err := s.campaigns.SaveCampaign(ctx, candidate, change); err != nil {
			out.skipped[raw.ExternalID] = domain.ErrStoreWriteFailed
			skip(result, domain.EntityTypeCampaign, raw.ExternalID, reasonWriteFailed,
				&domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeCampaign, ExternalID: raw.ExternalID, Cause: err})
			continue
		}

		result.Campaigns++
		recordChange(result, change)
		out.resolved[raw.ExternalID] = candidate.ID
	}

	return out, nil
}

func (s *Service) reconcileAdGroups(ctx context.Context, run Run, account *domain.AdAccount, raws []domain.RawAdGroup, campaignIDs *parents, result *domain.ReconcileResult) (*parents, error) {
	raws = latestSorted(raws, func(g domain.RawAdGroup) string { return g.ExternalID })
	out := newParents()

	externalIDs := make([]string, 0, len(raws))
	parentIDs := make([]string, 0)
	for _, raw := range raws {
		externalIDs = append(externalIDs, raw.ExternalID)
		if needsLookup(campaignIDs, raw.CampaignExternalID) {
			parentIDs = append(parentIDs, raw.CampaignExternalID)
		}
	}

	prior, err := s.adGroups.ListAdGroupsByExternalIDs(ctx, run.TenantID, externalIDs)
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeAdGroup, Details: "loading prior state", Cause: err}
	}

	stored, err := s.campaigns.ListCampaignsByExternalIDs(ctx, run.TenantID, unique(parentIDs))
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeCampaign, Details: "loading parents", Cause: err}
	}
	for ext, c := range stored {
		campaignIDs.resolved[ext] = c.ID
	}

	for _, raw := range raws {
		if out.handled(raw.ExternalID) {
			continue
		}

		campaignID, ok := resolveParent(result, campaignIDs, domain.EntityTypeAdGroup, raw.ExternalID, domain.EntityTypeCampaign, raw.CampaignExternalID)
		if !ok {
			out.skipped[raw.ExternalID] = campaignIDs.cause(raw.CampaignExternalID)
			continue
		}

		existing := prior[raw.ExternalID]

		candidate := &domain.AdGroup{
			TenantID:           run.TenantID,
			AdAccountID:        account.ID,
			CampaignID:         campaignID,
			ExternalID:         raw.ExternalID,
			CampaignExternalID: raw.CampaignExternalID,
			Name:               raw.Name,
			Status:             raw.Status,
			DailyBudget:        raw.DailyBudget,
			LifetimeBudget:     raw.LifetimeBudget,
			BidAmount:          raw.BidAmount,
			BidStrategy:        raw.BidStrategy,
			OptimizationGoal:   raw.OptimizationGoal,
			BillingEvent:       raw.BillingEvent,
			Metadata:           raw.Metadata,
			CreatedAt:          run.RunAt,
			UpdatedAt:          run.RunAt,
		}

		var before domain.FieldSet
		var priorMetadata domain.Metadata
		if existing != nil {
			candidate.ID = existing.ID
			candidate.CreatedAt = existing.CreatedAt
			before = existing.TrackedFields()
			priorMetadata = existing.Metadata
		}

		change, unchanged := planChange(run, domain.EntityTypeAdGroup, raw.ExternalID, existing != nil, before, candidate.TrackedFields(), priorMetadata, candidate.Metadata)
		if unchanged && existing.CampaignID == campaignID {
			result.Unchanged++
			out.resolved[raw.ExternalID] = existing.ID
			continue
		}

		if err := s.adGroups.SaveAdGroup(ctx, candidate, change); err != nil {
			out.skipped[raw.ExternalID] = domain.ErrStoreWriteFailed
			skip(result, domain.EntityTypeAdGroup, raw.ExternalID, reasonWriteFailed,
				&domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeAdGroup, ExternalID: raw.ExternalID, Cause: err})
			continue
		}

		result.AdGroups++
		recordChange(result, change)
		out.resolved[raw.ExternalID] = candidate.ID
	}

	return out, nil
}

func (s *Service) reconcileAds(ctx context.Context, run Run, account *domain.AdAccount, raws []domain.RawAd, adGroupIDs *parents, result *domain.ReconcileResult) (*parents, error) {
	raws = latestSorted(raws, func(a domain.RawAd) string { return a.ExternalID })
	out := newParents()

	externalIDs := make([]string, 0, len(raws))
	parentIDs := make([]string, 0)
	for _, raw := range raws {
		externalIDs = append(externalIDs, raw.ExternalID)
		if needsLookup(adGroupIDs, raw.AdGroupExternalID) {
			parentIDs = append(parentIDs, raw.AdGroupExternalID)
		}
	}

	prior, err := s.ads.ListAdsByExternalIDs(ctx, run.TenantID, externalIDs)
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeAd, Details: "loading prior state", Cause: err}
	}

	stored, err := s.adGroups.ListAdGroupsByExternalIDs(ctx, run.TenantID, unique(parentIDs))
	if err != nil {
		return nil, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeAdGroup, Details: "loading parents", Cause: err}
	}
	for ext, g := range stored {
		adGroupIDs.resolved[ext] = g.ID
	}

	for _, raw := range raws {
		if out.handled(raw.ExternalID) {
			continue
		}

		adGroupID, ok := resolveParent(result, adGroupIDs, domain.EntityTypeAd, raw.ExternalID, domain.EntityTypeAdGroup, raw.AdGroupExternalID)
		if !ok {
			out.skipped[raw.ExternalID] = adGroupIDs.cause(raw.AdGroupExternalID)
			continue
		}

		if err := raw.Creative.Validate(); err != nil {
			logrus.WithFields(logrus.Fields{
				"tenant_id":   run.TenantID,
				"external_id": raw.ExternalID,
				"error":       err.Error(),
			}).Warn("reconcile: invalid creative, storing ad without creative")
			raw.Creative = nil
		}

		existing := prior[raw.ExternalID]

		candidate := &domain.Ad{
			TenantID:          run.TenantID,
			AdAccountID:       account.ID,
			AdGroupID:         adGroupID,
			ExternalID:        raw.ExternalID,
			AdGroupExternalID: raw.AdGroupExternalID,
			Name:              raw.Name,
			Status:            raw.Status,
			Creative:          raw.Creative,
			Metadata:          raw.Metadata,
			CreatedAt:         run.RunAt,
			UpdatedAt:         run.RunAt,
		}

		var before domain.FieldSet
		var priorMetadata domain.Metadata
		if existing != nil {
			candidate.ID = existing.ID
			candidate.CreatedAt = existing.CreatedAt
			before = existing.TrackedFields()
			priorMetadata = existing.Metadata
		}

		change, unchanged := planChange(run, domain.EntityTypeAd, raw.ExternalID, existing != nil, before, candidate.TrackedFields(), priorMetadata, candidate.Metadata)
		if unchanged && existing.AdGroupID == adGroupID {
			result.Unchanged++
			out.resolved[raw.ExternalID] = existing.ID
			continue
		}

		if err := s.ads.SaveAd(ctx, candidate, change); err != nil {
			out.skipped[raw.ExternalID] = domain.ErrStoreWriteFailed
			skip(result, domain.EntityTypeAd, raw.ExternalID, reasonWriteFailed,
				&domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: domain.EntityTypeAd, ExternalID: raw.ExternalID, Cause: err})
			continue
		}

		result.Ads++
		recordChange(result, change)
		out.resolved[raw.ExternalID] = candidate.ID
	}

	return out, nil
}

func (s *Service) storeInsights(ctx context.Context, run Run, points []domain.InsightPoint, ids map[domain.EntityType]*parents, result *domain.ReconcileResult) {
	if len(points) == 0 {
		return
	}

	resolved := make([]domain.InsightPoint, 0, len(points))
	for _, p := range points {
		group, ok := ids[p.EntityType]
		if !ok {
			continue
		}
		entityID, ok := group.resolved[p.EntityExternalID]
		if !ok {
			continue
		}
		p.TenantID = run.TenantID
		p.EntityID = entityID
		resolved = append(resolved, p)
	}
	if len(resolved) == 0 {
		return
	}

	if err := s.insights.UpsertPoints(ctx, run.TenantID, resolved); err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id": run.TenantID,
			"points":    len(resolved),
			"error":     err.Error(),
		}).Error("reconcile: failed to store insight points")
		result.Errors = append(result.Errors, &domain.ReconciliationError{Err: domain.ErrStoreWriteFailed, EntityType: "insight", Details: "insight points", Cause: err})
	}
}

// planChange decide o que gravar. unchanged=true significa nenhuma escrita;
// change=nil com unchanged=false significa só atualizar o metadata.
func planChange(run Run, entityType domain.EntityType, externalID string, exists bool, before, after domain.FieldSet, priorMetadata, metadata domain.Metadata) (*domain.ChangeRecord, bool) {
	if !exists {
		before = nil
	}

	fields := domain.DiffFields(before, after)
	if exists && len(fields) == 0 {
		return nil, priorMetadata.Equal(metadata)
	}

	changeType := domain.ChangeTypeUpdated
	if !exists {
		changeType = domain.ChangeTypeCreated
	}

	return &domain.ChangeRecord{
		TenantID:      run.TenantID,
		EntityType:    entityType,
		ExternalID:    externalID,
		ChangeType:    changeType,
		ChangedAt:     run.RunAt,
		Fields:        fields,
		Before:        before,
		After:         after,
		SyncHistoryID: run.SyncHistoryID,
	}, false
}

func resolveParent(result *domain.ReconcileResult, ps *parents, entityType domain.EntityType, externalID string, parentType domain.EntityType, parentExternalID string) (string, bool) {
	if id, ok := ps.resolved[parentExternalID]; ok {
		return id, true
	}

	if cause, ok := ps.skipped[parentExternalID]; ok {
		skip(result, entityType, externalID, reasonParentSkipped, &domain.ReconciliationError{
			Err:        cause,
			EntityType: entityType,
			ExternalID: externalID,
			Details:    "parent " + string(parentType) + " " + parentExternalID + " was skipped",
		})
		return "", false
	}

	skip(result, entityType, externalID, reasonCrossTenant, &domain.ReconciliationError{
		Err:        domain.ErrCrossTenantReference,
		EntityType: entityType,
		ExternalID: externalID,
		Details:    "parent " + string(parentType) + " " + parentExternalID + " not found in tenant",
	})
	return "", false
}

// handled indica que a entidade já foi gravada ou pulada nesta execução.
func (p *parents) handled(externalID string) bool {
	_, resolved := p.resolved[externalID]
	_, skipped := p.skipped[externalID]
	return resolved || skipped
}

func (p *parents) cause(externalID string) error {
	if cause, ok := p.skipped[externalID]; ok {
		return cause
	}
	return domain.ErrCrossTenantReference
}

func needsLookup(ps *parents, externalID string) bool {
	return externalID != "" && !ps.handled(externalID)
}

func skip(result *domain.ReconcileResult, entityType domain.EntityType, externalID, reason string, err *domain.ReconciliationError) {
	result.Skipped = append(result.Skipped, domain.SkippedEntity{EntityType: entityType, ExternalID: externalID, Reason: reason})
	result.Errors = append(result.Errors, err)
	metrics.SkippedEntities.WithLabelValues(string(entityType), reason).Inc()

	entry := logrus.WithFields(logrus.Fields{
		"entity_type": entityType,
		"external_id": externalID,
		"reason":      reason,
		"error":       err.Error(),
	})
	if errors.Is(err, domain.ErrCrossTenantReference) {
		entry.Warn("reconcile: parent not resolvable inside tenant, entity skipped")
		return
	}
	entry.Error("reconcile: entity skipped")
}

func recordChange(result *domain.ReconcileResult, change *domain.ChangeRecord) {
	if change == nil {
		return
	}
	result.Changes = append(result.Changes, change)
	metrics.ChangeRecords.WithLabelValues(string(change.EntityType), string(change.ChangeType)).Inc()
}

// latestSorted ordena por external id e mantém só a última ocorrência de
// cada um; páginas do provedor podem repetir linhas.
func latestSorted[T any](items []T, key func(T) string) []T {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[key(item)] = i
	}

	out := make([]T, 0, len(last))
	for i, item := range items {
		if last[key(item)] == i {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
