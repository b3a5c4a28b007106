package handler

import (
	"context"
	"net/http"

	"github.com/vfg2006/adsync-api/pkg/apiErrors"
	"github.com/vfg2006/adsync-api/pkg/log"
)

// SyncScheduler é a parte do agendador usada pelos handlers.
type SyncScheduler interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

func GetSyncStatus(scheduler SyncScheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, scheduler.GetStatus())
	})
}

// RunScheduledSync dispara fora de hora a sincronização de todos os tenants.
func RunScheduledSync(scheduler SyncScheduler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !scheduler.TriggerManualSync(r.Context()) {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, "Sincronização agendada já está em andamento", nil)
			return
		}

		log.ForContext(r.Context()).Info("scheduler: manual run accepted")
		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Sincronização iniciada com sucesso",
		})
	})
}
