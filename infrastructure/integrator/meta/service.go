package meta

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/adsync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/adsync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
)

type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
	now    func() time.Time
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
		now:    time.Now,
	}
}

func (s *MetaIntegrator) Provider() domain.Provider {
	return domain.ProviderMeta
}

// FetchAccountGraph busca a conta, campanhas, conjuntos, anúncios e insights
// diários de uma conta e devolve tudo em tipos neutros.
func (s *MetaIntegrator) FetchAccountGraph(ctx context.Context, cred domain.Credential, externalAccountID string) (*domain.RawAccountGraph, error) {
	accountID := strings.TrimPrefix(externalAccountID, "act_")
	fields := logrus.Fields{"account_id": accountID}

	account, err := s.Client.GetAdAccount(ctx, cred, accountID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("meta: failed to get ad account")
		return nil, err
	}

	campaigns, err := s.Client.GetCampaignsByAccountID(ctx, cred, accountID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("meta: failed to get campaigns")
		return nil, err
	}

	adSets, err := s.Client.GetAdSetsByAccountID(ctx, cred, accountID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("meta: failed to get ad sets")
		return nil, err
	}

	ads, err := s.Client.GetAdsByAccountID(ctx, cred, accountID)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("meta: failed to get ads")
		return nil, err
	}

	var points []domain.InsightPoint
	if filters := s.insightFilters(); filters != nil {
		rows, err := s.Client.GetAdInsightsByAccountID(ctx, cred, accountID, filters)
		if err != nil {
			logrus.WithFields(fields).WithError(err).Error("meta: failed to get insights")
			return nil, err
		}
		points = ConvertInsights(rows)
	}

	campaigns = keepLast(campaigns, func(c metadomain.Campaign) string { return c.ID })
	adSets = keepLast(adSets, func(as metadomain.AdSet) string { return as.ID })
	ads = keepLast(ads, func(ad metadomain.Ad) string { return ad.ID })

	summaries := summarizeByEntity(points)

	graph := &domain.RawAccountGraph{
		Account:   convertAccount(account, accountID),
		Campaigns: make([]domain.RawCampaign, 0, len(campaigns)),
		AdGroups:  make([]domain.RawAdGroup, 0, len(adSets)),
		Ads:       make([]domain.RawAd, 0, len(ads)),
		Insights:  points,
		FetchedAt: s.now().UTC(),
	}

	for _, c := range campaigns {
		graph.Campaigns = append(graph.Campaigns, convertCampaign(c, summaries[entityKey{domain.EntityTypeCampaign, c.ID}]))
	}
	for _, as := range adSets {
		graph.AdGroups = append(graph.AdGroups, convertAdSet(as, summaries[entityKey{domain.EntityTypeAdGroup, as.ID}]))
	}
	for _, ad := range ads {
		graph.Ads = append(graph.Ads, convertAd(ad, summaries[entityKey{domain.EntityTypeAd, ad.ID}]))
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"campaigns":  len(graph.Campaigns),
		"ad_groups":  len(graph.AdGroups),
		"ads":        len(graph.Ads),
		"insights":   len(graph.Insights),
	}).Debug("meta: account graph fetched")

	return graph, nil
}

// keepLast remove ids repetidos entre páginas, ficando com a última versão
// de cada um na posição em que ela apareceu.
func keepLast[T any](items []T, id func(T) string) []T {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[id(item)] = i
	}
	if len(last) == len(items) {
		return items
	}

	out := make([]T, 0, len(last))
	for i, item := range items {
		if last[id(item)] == i {
			out = append(out, item)
		}
	}
	logrus.WithField("dropped", len(items)-len(out)).Debug("meta: repeated rows removed from paged result")
	return out
}

func (s *MetaIntegrator) insightFilters() *domain.InsightFilters {
	days := s.cfg.ProviderSync.InsightLookbackDays
	if days <= 0 {
		return nil
	}

	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(days - 1))

	return &domain.InsightFilters{StartDate: &start, EndDate: &end}
}

func convertAccount(a *metadomain.AdAccount, accountID string) domain.RawAdAccount {
	status := domain.AdAccountStatusInactive
	if a.IsActive() {
		status = domain.AdAccountStatusActive
	}

	externalID := strings.TrimPrefix(a.AccountID, "act_")
	if externalID == "" {
		externalID = strings.TrimPrefix(a.ID, "act_")
	}
	if externalID == "" {
		externalID = accountID
	}

	return domain.RawAdAccount{
		ExternalID: externalID,
		Name:       a.Name,
		Currency:   a.Currency,
		Status:     status,
	}
}

func convertCampaign(c metadomain.Campaign, summary *domain.InsightSummary) domain.RawCampaign {
	return domain.RawCampaign{
		ExternalID:     c.ID,
		Name:           c.Name,
		Status:         c.Status,
		Objective:      c.Objective,
		DailyBudget:    parseMinorUnits("daily_budget", c.DailyBudget),
		LifetimeBudget: parseMinorUnits("lifetime_budget", c.LifetimeBudget),
		BidStrategy:    c.BidStrategy,
		Metadata: buildMetadata(summary, map[string]string{
			"effective_status": c.EffectiveStatus,
			"buying_type":      c.BuyingType,
			"created_time":     c.CreatedTime,
			"updated_time":     c.UpdatedTime,
		}),
	}
}

func convertAdSet(as metadomain.AdSet, summary *domain.InsightSummary) domain.RawAdGroup {
	return domain.RawAdGroup{
		ExternalID:         as.ID,
		CampaignExternalID: as.CampaignID,
		Name:               as.Name,
		Status:             as.Status,
		DailyBudget:        parseMinorUnits("daily_budget", as.DailyBudget),
		LifetimeBudget:     parseMinorUnits("lifetime_budget", as.LifetimeBudget),
		BidAmount:          parseMinorUnits("bid_amount", as.BidAmount),
		BidStrategy:        as.BidStrategy,
		OptimizationGoal:   as.OptimizationGoal,
		BillingEvent:       as.BillingEvent,
		Metadata: buildMetadata(summary, map[string]string{
			"effective_status": as.EffectiveStatus,
			"start_time":       as.StartTime,
			"end_time":         as.EndTime,
			"updated_time":     as.UpdatedTime,
		}),
	}
}

func convertAd(ad metadomain.Ad, summary *domain.InsightSummary) domain.RawAd {
	return domain.RawAd{
		ExternalID:        ad.ID,
		AdGroupExternalID: ad.AdsetID,
		Name:              ad.Name,
		Status:            ad.Status,
		Creative:          BuildCreative(ad.Creative),
		Metadata: buildMetadata(summary, map[string]string{
			"effective_status": ad.EffectiveStatus,
			"campaign_id":      ad.CampaignID,
			"updated_time":     ad.UpdatedTime,
		}),
	}
}

func buildMetadata(summary *domain.InsightSummary, raw map[string]string) domain.Metadata {
	metadata := domain.Metadata{}
	for k, v := range raw {
		if v != "" {
			metadata[k] = v
		}
	}
	if summary != nil {
		metadata["insights"] = summary.AsMetadata()
	}
	return metadata
}

// parseMinorUnits converte os valores monetários da Graph API, que chegam
// como string em centavos.
func parseMinorUnits(field, value string) *int64 {
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
		}).Warn("meta: invalid monetary value, ignoring")
		return nil
	}

	return &parsed
}

type entityKey struct {
	entityType domain.EntityType
	externalID string
}

func summarizeByEntity(points []domain.InsightPoint) map[entityKey]*domain.InsightSummary {
	grouped := make(map[entityKey][]domain.InsightPoint)
	for _, p := range points {
		key := entityKey{p.EntityType, p.EntityExternalID}
		grouped[key] = append(grouped[key], p)
	}

	summaries := make(map[entityKey]*domain.InsightSummary, len(grouped))
	for key, series := range grouped {
		summaries[key] = domain.SummarizeInsights(series)
	}
	return summaries
}

// ConvertInsights transforma as linhas diárias por anúncio em pontos e soma
// cada dia para o conjunto e a campanha.
func ConvertInsights(rows []metadomain.AdInsight) []domain.InsightPoint {
	type pointKey struct {
		entity entityKey
		date   time.Time
	}

	acc := make(map[pointKey]*domain.InsightPoint)
	add := func(entityType domain.EntityType, externalID string, date time.Time, p domain.InsightPoint) {
		if externalID == "" {
			return
		}
		key := pointKey{entityKey{entityType, externalID}, date}
		current, ok := acc[key]
		if !ok {
			current = &domain.InsightPoint{EntityType: entityType, EntityExternalID: externalID, Date: date}
			acc[key] = current
		}
		current.Impressions += p.Impressions
		current.Clicks += p.Clicks
		current.Spend += p.Spend
		current.Conversions += p.Conversions
	}

	for i := range rows {
		row := &rows[i]

		date, err := time.Parse(time.DateOnly, row.DateStart)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"ad_id":      row.AdID,
				"date_start": row.DateStart,
			}).Warn("meta: insight row without valid date, ignoring")
			continue
		}

		point := domain.InsightPoint{
			Impressions: parseCount("impressions", row.Impressions),
			Clicks:      parseCount("clicks", row.Clicks),
			Spend:       parseAmount("spend", row.Spend),
			Conversions: row.GetResult(),
		}

		add(domain.EntityTypeAd, row.AdID, date, point)
		add(domain.EntityTypeAdGroup, row.AdsetID, date, point)
		add(domain.EntityTypeCampaign, row.CampaignID, date, point)
	}

	points := make([]domain.InsightPoint, 0, len(acc))
	for _, p := range acc {
		points = append(points, *p)
	}

	sort.Slice(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		if a.EntityExternalID != b.EntityExternalID {
			return a.EntityExternalID < b.EntityExternalID
		}
		return a.Date.Before(b.Date)
	})

	return points
}

func parseCount(field, value string) int64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{"field": field, "value": value}).Warn("meta: error converting insight value to integer")
		return 0
	}
	return parsed
}

func parseAmount(field, value string) float64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{"field": field, "value": value}).Warn("meta: error converting insight value to float")
		return 0
	}
	return parsed
}
