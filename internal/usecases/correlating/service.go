package correlating

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/config"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/tracking"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
)

const day = 24 * time.Hour

// Correlator junta cada registro de mudança com a performance da entidade
// antes e depois dele. Só leitura: o ledger nunca é alterado aqui.
type Correlator interface {
	AttachPerformance(ctx context.Context, rec *domain.ChangeRecord, windowDays int) (*domain.ChangeWithPerformance, error)
	GetChangesWithPerformance(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string, windowDays int) ([]*domain.ChangeWithPerformance, error)
	GetChangesInWindowWithPerformance(ctx context.Context, tenantID string, start, end time.Time, windowDays int) ([]*domain.ChangeWithPerformance, error)
}

type Service struct {
	ledger            tracking.Ledger
	insights          repository.InsightRepository
	defaultWindowDays int
	maxWindowDays     int
}

func NewService(cfg config.Correlation, ledger tracking.Ledger, insights repository.InsightRepository) *Service {
	return &Service{
		ledger:            ledger,
		insights:          insights,
		defaultWindowDays: cfg.DefaultWindowDays,
		maxWindowDays:     cfg.MaxWindowDays,
	}
}

// AttachPerformance usa janelas por dia: antes = [T-W, T) e depois = [T, T+W],
// com T truncado para o dia em UTC.
func (s *Service) AttachPerformance(ctx context.Context, rec *domain.ChangeRecord, windowDays int) (*domain.ChangeWithPerformance, error) {
	windowDays, err := s.windowDays(windowDays)
	if err != nil {
		return nil, err
	}

	changeDay := rec.ChangedAt.UTC().Truncate(day)
	beforeStart := changeDay.AddDate(0, 0, -windowDays)
	afterEnd := changeDay.AddDate(0, 0, windowDays)

	beforePoints, err := s.insights.ListSeries(ctx, rec.TenantID, rec.EntityType, rec.EntityID, beforeStart, changeDay)
	if err != nil {
		return nil, s.storeError(rec, err)
	}

	afterPoints, err := s.insights.ListSeries(ctx, rec.TenantID, rec.EntityType, rec.EntityID, changeDay, afterEnd.Add(day))
	if err != nil {
		return nil, s.storeError(rec, err)
	}

	view := &domain.ChangeWithPerformance{
		Change:     rec,
		WindowDays: windowDays,
		Before:     aggregate(beforePoints, beforeStart, changeDay),
		After:      aggregate(afterPoints, changeDay, afterEnd),
	}

	if view.Before.Sufficient() && view.After.Sufficient() {
		view.Comparison = compare(view.Before, view.After)
	}

	return view, nil
}

func (s *Service) GetChangesWithPerformance(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string, windowDays int) ([]*domain.ChangeWithPerformance, error) {
	records, err := s.ledger.ListChanges(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	return s.attachAll(ctx, records, windowDays)
}

func (s *Service) GetChangesInWindowWithPerformance(ctx context.Context, tenantID string, start, end time.Time, windowDays int) ([]*domain.ChangeWithPerformance, error) {
	records, err := s.ledger.ListChangesInWindow(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	return s.attachAll(ctx, records, windowDays)
}

func (s *Service) attachAll(ctx context.Context, records []*domain.ChangeRecord, windowDays int) ([]*domain.ChangeWithPerformance, error) {
	views := make([]*domain.ChangeWithPerformance, 0, len(records))
	for _, rec := range records {
		view, err := s.AttachPerformance(ctx, rec, windowDays)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) windowDays(windowDays int) (int, error) {
	if windowDays == 0 {
		windowDays = s.defaultWindowDays
	}
	if windowDays < 1 || (s.maxWindowDays > 0 && windowDays > s.maxWindowDays) {
		return 0, NewCorrelationError(ErrInvalidWindowDays, apiErrors.ErrInvalidRequest,
			fmt.Sprintf("window_days must be between 1 and %d", s.maxWindowDays))
	}
	return windowDays, nil
}

func (s *Service) storeError(rec *domain.ChangeRecord, err error) error {
	logrus.WithFields(logrus.Fields{
		"tenant_id":   rec.TenantID,
		"entity_type": rec.EntityType,
		"entity_id":   rec.EntityID,
		"change_id":   rec.ID,
		"error":       err.Error(),
	}).Error("correlation: failed to load insight series")
	return NewCorrelationError(ErrInsightStore, apiErrors.ErrDatabaseOperation, err.Error())
}

func aggregate(points []domain.InsightPoint, start, end time.Time) domain.PerformanceWindow {
	w := domain.PerformanceWindow{
		Start:      start,
		End:        end,
		Status:     domain.WindowStatusInsufficientData,
		DataPoints: len(points),
	}
	if len(points) == 0 {
		return w
	}

	w.Status = domain.WindowStatusOK
	for _, p := range points {
		w.Impressions += p.Impressions
		w.Clicks += p.Clicks
		w.Spend += p.Spend
		w.Conversions += p.Conversions
	}

	if w.Impressions > 0 {
		ctr := float64(w.Clicks) / float64(w.Impressions)
		w.CTR = &ctr
	}
	if w.Clicks > 0 {
		cpc := w.Spend / float64(w.Clicks)
		w.CPC = &cpc
	}

	return w
}

func compare(before, after domain.PerformanceWindow) *domain.PerformanceComparison {
	c := &domain.PerformanceComparison{
		ImpressionsDelta: after.Impressions - before.Impressions,
		ClicksDelta:      after.Clicks - before.Clicks,
		SpendDelta:       after.Spend - before.Spend,
		ConversionsDelta: after.Conversions - before.Conversions,
	}
	if before.CTR != nil && after.CTR != nil {
		delta := *after.CTR - *before.CTR
		c.CTRDelta = &delta
	}
	if before.CPC != nil && after.CPC != nil {
		delta := *after.CPC - *before.CPC
		c.CPCDelta = &delta
	}
	return c
}
