package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/metrics"
)

// Ledger é o histórico de mudanças. Não existe operação de edição ou
// remoção: correções entram como registros de compensação.
type Ledger interface {
	Append(ctx context.Context, rec *domain.ChangeRecord) error
	Compensate(ctx context.Context, req CompensationRequest) (*domain.ChangeRecord, error)
	ListChanges(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) ([]*domain.ChangeRecord, error)
	ListChangesInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.ChangeRecord, error)
}

type CompensationRequest struct {
	TenantID   string                        `json:"-"`
	EntityType domain.EntityType             `json:"-"`
	EntityID   string                        `json:"-"`
	Fields     map[string]domain.FieldChange `json:"fields"`
	Reason     string                        `json:"reason"`
}

type Service struct {
	changes repository.ChangeRecordRepository
	now     func() time.Time
}

func NewLedger(changes repository.ChangeRecordRepository) *Service {
	return &Service{
		changes: changes,
		now:     time.Now,
	}
}

func (s *Service) Append(ctx context.Context, rec *domain.ChangeRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	if rec.ChangedAt.IsZero() {
		rec.ChangedAt = s.now().UTC()
	}

	if err := s.changes.Append(ctx, rec); err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id":   rec.TenantID,
			"entity_type": rec.EntityType,
			"entity_id":   rec.EntityID,
			"error":       err.Error(),
		}).Error("ledger: failed to append change record")
		return NewLedgerError(ErrLedgerStore, apiErrors.ErrDatabaseOperation, err.Error())
	}

	metrics.ChangeRecords.WithLabelValues(string(rec.EntityType), string(rec.ChangeType)).Inc()

	logrus.WithFields(logrus.Fields{
		"tenant_id":   rec.TenantID,
		"entity_type": rec.EntityType,
		"entity_id":   rec.EntityID,
		"change_type": rec.ChangeType,
		"fields":      rec.ChangedFields(),
	}).Debug("ledger: change record appended")

	return nil
}

// Compensate grava um registro que corrige o histórico de uma entidade já
// rastreada, sem tocar nos registros anteriores.
func (s *Service) Compensate(ctx context.Context, req CompensationRequest) (*domain.ChangeRecord, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, NewLedgerError(ErrReasonRequired, apiErrors.ErrMissingRequiredData, "")
	}

	history, err := s.ListChanges(ctx, req.TenantID, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, NewLedgerError(ErrEntityNotFound, apiErrors.ErrResourceNotFound, string(req.EntityType)+" "+req.EntityID)
	}

	last := history[len(history)-1]
	before := make(domain.FieldSet, len(req.Fields))
	after := make(domain.FieldSet, len(req.Fields))
	for name, change := range req.Fields {
		before[name] = change.Old
		after[name] = change.New
	}

	rec := &domain.ChangeRecord{
		TenantID:   req.TenantID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ExternalID: last.ExternalID,
		ChangeType: domain.ChangeTypeCompensation,
		Fields:     req.Fields,
		Before:     before,
		After:      after,
		Reason:     req.Reason,
	}

	if err := s.Append(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Service) ListChanges(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) ([]*domain.ChangeRecord, error) {
	if tenantID == "" {
		return nil, NewLedgerError(ErrTenantIDRequired, apiErrors.ErrMissingRequiredData, "")
	}
	if !entityType.Valid() {
		return nil, NewLedgerError(ErrInvalidEntityType, apiErrors.ErrInvalidRequest, string(entityType))
	}
	if entityID == "" {
		return nil, NewLedgerError(ErrEntityIDRequired, apiErrors.ErrMissingRequiredData, "")
	}

	records, err := s.changes.ListByEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		}).Error("ledger: failed to list changes")
		return nil, NewLedgerError(ErrLedgerStore, apiErrors.ErrDatabaseOperation, err.Error())
	}

	return records, nil
}

func (s *Service) ListChangesInWindow(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.ChangeRecord, error) {
	if tenantID == "" {
		return nil, NewLedgerError(ErrTenantIDRequired, apiErrors.ErrMissingRequiredData, "")
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, NewLedgerError(ErrInvalidWindow, apiErrors.ErrInvalidRequest, "end must be after start")
	}

	records, err := s.changes.ListInWindow(ctx, tenantID, start, end)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
			"error":     err.Error(),
		}).Error("ledger: failed to list changes in window")
		return nil, NewLedgerError(ErrLedgerStore, apiErrors.ErrDatabaseOperation, err.Error())
	}

	return records, nil
}

func validateRecord(rec *domain.ChangeRecord) error {
	switch {
	case rec.TenantID == "":
		return NewLedgerError(ErrTenantIDRequired, apiErrors.ErrMissingRequiredData, "")
	case !rec.EntityType.Valid():
		return NewLedgerError(ErrInvalidEntityType, apiErrors.ErrInvalidRequest, string(rec.EntityType))
	case rec.EntityID == "":
		return NewLedgerError(ErrEntityIDRequired, apiErrors.ErrMissingRequiredData, "")
	case len(rec.Fields) == 0:
		return NewLedgerError(ErrEmptyChange, apiErrors.ErrMissingRequiredData, "")
	}

	switch rec.ChangeType {
	case domain.ChangeTypeCreated, domain.ChangeTypeUpdated, domain.ChangeTypeCompensation:
		return nil
	default:
		return NewLedgerError(ErrInvalidChangeType, apiErrors.ErrInvalidRequest, string(rec.ChangeType))
	}
}
