// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/beeguardai/hub/api/middleware"
	"github.com/beeguardai/hub/api/resources"
	"github.com/beeguardai/hub/internal/monitoring"
)

// NewRouter wires all HTTP routes. The ingest and readings endpoints sit
// behind the shared API key; health and metrics stay open for probes and
// scrapers.
func NewRouter(rs *resources.Resources, auth *middleware.APIKeyMiddleware, metrics *monitoring.Service) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", rs.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(auth.Authenticate)

	// Device-facing ingestion
	apiV1.HandleFunc("/iot/readings", rs.IngestReading).Methods(http.MethodPost)

	// Read side
	apiV1.HandleFunc("/hives/{hiveId}/readings", rs.GetHiveHistory).Methods(http.MethodGet)
	apiV1.HandleFunc("/hives/{hiveId}/readings/latest", rs.GetHiveLatest).Methods(http.MethodGet)
	apiV1.HandleFunc("/hives/{hiveId}/stats", rs.GetHiveStats).Methods(http.MethodGet)
	apiV1.HandleFunc("/tenants/{tenantId}/readings/latest", rs.GetTenantLatest).Methods(http.MethodGet)

	return router
}
