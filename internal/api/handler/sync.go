package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// SyncTenant roda a sincronização de todas as conexões do tenant. Falhas por
// conta vêm no corpo com status 200; só tenant inexistente ou erro de leitura
// das conexões geram erro HTTP.
func SyncTenant(orchestrator syncing.Orchestrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		tenantID := httprouter.ParamsFromContext(r.Context()).ByName("tenant_id")

		logger.WithField("tenant_id", tenantID).Info("sync: tenant sync requested")

		summary, err := orchestrator.SyncAllProviderAccounts(r.Context(), tenantID)
		if err != nil {
			logger.WithFields(log.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			}).Error("sync: tenant sync failed")
			writeUsecaseError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"tenant_id": tenantID,
			"accounts":  summary.Stats.Accounts,
			"failed":    summary.Stats.Failed,
			"changes":   summary.Stats.Changes,
		}).Info("sync: tenant sync finished")

		writeJSON(w, http.StatusOK, map[string]any{
			"results":     summary.Results,
			"connections": summary.Connections,
			"stats":       summary.Stats,
		})
	})
}

func ListSyncHistory(histories repository.SyncHistoryRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		tenantID := httprouter.ParamsFromContext(r.Context()).ByName("tenant_id")

		limit, err := parseOptionalInt("limit", r.URL.Query().Get("limit"))
		if err != nil || limit < 0 || limit > maxHistoryLimit {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "limit deve estar entre 1 e 200", nil)
			return
		}
		if limit == 0 {
			limit = defaultHistoryLimit
		}

		items, err := histories.ListRecent(r.Context(), tenantID, uint64(limit))
		if err != nil {
			logger.WithFields(log.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			}).Error("sync: failed to list sync history")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar histórico de sincronização", nil)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	})
}
