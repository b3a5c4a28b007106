package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/adsync-api/internal/domain"
	"github.com/vfg2006/adsync-api/internal/usecases/correlating"
	"github.com/vfg2006/adsync-api/internal/usecases/tracking"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
)

// GetEntityTimeline devolve o histórico de mudanças de uma entidade com a
// performance antes e depois de cada mudança.
func GetEntityTimeline(correlator correlating.Correlator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		params := httprouter.ParamsFromContext(r.Context())
		tenantID := params.ByName("tenant_id")
		entityType := domain.EntityType(params.ByName("entity_type"))
		entityID := params.ByName("entity_id")

		windowDays, err := parseOptionalInt("window_days", r.URL.Query().Get("window_days"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		fields := log.Fields{
			"tenant_id":   tenantID,
			"entity_type": entityType,
			"entity_id":   entityID,
			"window_days": windowDays,
		}
		logger.WithFields(fields).Debug("timeline: fetching entity timeline")

		items, err := correlator.GetChangesWithPerformance(r.Context(), tenantID, entityType, entityID, windowDays)
		if err != nil {
			fields["error"] = err.Error()
			logger.WithFields(fields).Warn("timeline: failed to fetch entity timeline")
			writeUsecaseError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})
}

// ListChanges devolve as mudanças do tenant com changed_at em [start, end).
func ListChanges(correlator correlating.Correlator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		tenantID := httprouter.ParamsFromContext(r.Context()).ByName("tenant_id")
		query := r.URL.Query()

		start, err := parseInstant("start", query.Get("start"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}
		end, err := parseInstant("end", query.Get("end"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}
		windowDays, err := parseOptionalInt("window_days", query.Get("window_days"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		items, err := correlator.GetChangesInWindowWithPerformance(r.Context(), tenantID, start, end, windowDays)
		if err != nil {
			logger.WithFields(log.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			}).Warn("timeline: failed to list changes in window")
			writeUsecaseError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})
}

// CreateCompensation grava um registro de compensação para a entidade.
func CreateCompensation(ledger tracking.Ledger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		params := httprouter.ParamsFromContext(r.Context())

		var req tracking.CompensationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Corpo da requisição inválido", nil)
			return
		}
		if req.Reason == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "reason é obrigatório", nil)
			return
		}

		req.TenantID = params.ByName("tenant_id")
		req.EntityType = domain.EntityType(params.ByName("entity_type"))
		req.EntityID = params.ByName("entity_id")

		rec, err := ledger.Compensate(r.Context(), req)
		if err != nil {
			logger.WithFields(log.Fields{
				"tenant_id":   req.TenantID,
				"entity_type": req.EntityType,
				"entity_id":   req.EntityID,
				"error":       err.Error(),
			}).Warn("ledger: compensation rejected")
			writeUsecaseError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"tenant_id": req.TenantID,
			"entity_id": req.EntityID,
			"change_id": rec.ID,
		}).Info("ledger: compensation recorded")

		writeJSON(w, http.StatusCreated, rec)
	})
}
