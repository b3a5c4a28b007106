package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/adsync-api/infrastructure/repository"
	"github.com/vfg2006/adsync-api/internal/api/handler/router"
	"github.com/vfg2006/adsync-api/internal/usecases/correlating"
	"github.com/vfg2006/adsync-api/internal/usecases/syncing"
	"github.com/vfg2006/adsync-api/internal/usecases/tracking"
	"github.com/vfg2006/adsync-api/pkg/middleware"
)

const tenantParam = "tenant_id"

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Sync(orchestrator syncing.Orchestrator, histories repository.SyncHistoryRepository) []router.Route {
	tenantScoped := []func(http.Handler) http.Handler{middleware.TenantScope(tenantParam)}

	return []router.Route{
		{
			Path:        "/v1/tenants/:tenant_id/sync",
			Method:      http.MethodPost,
			Handler:     SyncTenant(orchestrator),
			Middlewares: tenantScoped,
		},
		{
			Path:        "/v1/tenants/:tenant_id/sync/history",
			Method:      http.MethodGet,
			Handler:     ListSyncHistory(histories),
			Middlewares: tenantScoped,
		},
	}
}

func Timeline(correlator correlating.Correlator, ledger tracking.Ledger) []router.Route {
	tenantScoped := []func(http.Handler) http.Handler{middleware.TenantScope(tenantParam)}

	return []router.Route{
		{
			Path:        "/v1/tenants/:tenant_id/timeline/:entity_type/:entity_id",
			Method:      http.MethodGet,
			Handler:     GetEntityTimeline(correlator),
			Middlewares: tenantScoped,
		},
		{
			Path:        "/v1/tenants/:tenant_id/timeline/:entity_type/:entity_id/compensations",
			Method:      http.MethodPost,
			Handler:     CreateCompensation(ledger),
			Middlewares: tenantScoped,
		},
		{
			Path:        "/v1/tenants/:tenant_id/changes",
			Method:      http.MethodGet,
			Handler:     ListChanges(correlator),
			Middlewares: tenantScoped,
		},
	}
}

func ScheduledSync(scheduler SyncScheduler) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sync/status",
			Method:  http.MethodGet,
			Handler: GetSyncStatus(scheduler),
		},
		{
			Path:        "/v1/sync/run",
			Method:      http.MethodPost,
			Handler:     RunScheduledSync(scheduler),
			Middlewares: []func(http.Handler) http.Handler{middleware.OperatorOnly()},
		},
	}
}
