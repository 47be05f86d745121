package resources

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/hubservice"
	"github.com/beeguardai/hub/internal/monitoring"
)

// Resources bundles the HTTP handlers and their shared dependencies.
type Resources struct {
	Service *hubservice.HubService
	Metrics *monitoring.Service
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func NewResources(service *hubservice.HubService, metrics *monitoring.Service) *Resources {
	return &Resources{
		Service: service,
		Metrics: metrics,
	}
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the hub and its stores
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (rs *Resources) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if err := rs.Service.Store.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["timeseries"] = err.Error()
	}
	if err := rs.Service.Directory.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["directory"] = err.Error()
	}

	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, status)
}

func respondWithError(w http.ResponseWriter, err error) {
	var apiErr *errors.APIError
	if !goerrors.As(err, &apiErr) {
		apiErr = errors.NewInternalError("unexpected error", err)
	}
	nuts.L.Debugf("[API] request failed: type=%s code=%d msg=%s",
		apiErr.Type, apiErr.Code, apiErr.Message)
	respondWithJSON(w, apiErr.Code, apiErr)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		nuts.L.Errorf("[API] failed to marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"internal","message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
