package resources

import (
	goerrors "errors"
	"io"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/beeguardai/hub/internal/errors"
)

// maxIngestBodySize caps reading payloads; sensor uplinks are tiny and
// TTN envelopes stay well under this.
const maxIngestBodySize = 1 << 20 // 1 MiB

type ingestResponse struct {
	ReadingID string `json:"reading_id"`
	HiveID    string `json:"hive_id"`
	TenantID  string `json:"tenant_id"`
}

// IngestReading godoc
// @Summary Ingest a sensor reading
// @Description Accepts a flat sensor reading or a TTN uplink envelope and stores it against the owning hive
// @Tags iot
// @Accept json
// @Produce json
// @Param reading body map[string]interface{} true "Sensor reading or uplink envelope"
// @Success 201 {object} ingestResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /iot/readings [post]
func (rs *Resources) IngestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBodySize+1))
	if err != nil {
		respondWithError(w, errors.NewValidationError("failed to read request body", err).WithRequestID(requestID))
		return
	}
	if len(payload) > maxIngestBodySize {
		respondWithError(w, errors.NewValidationError("payload too large", nil).WithRequestID(requestID))
		return
	}
	if len(payload) == 0 {
		respondWithError(w, errors.NewValidationError("empty payload", nil).WithRequestID(requestID))
		return
	}

	reading, err := rs.Service.IngestReading(r.Context(), payload, "http")
	if err != nil {
		var apiErr *errors.APIError
		if goerrors.As(err, &apiErr) {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewInternalError("failed to ingest reading", err).WithRequestID(requestID))
		return
	}

	nuts.L.Debugf("[API] ingested reading %s for hive %s (request %s)",
		reading.ID, reading.HiveID, requestID)

	respondWithJSON(w, http.StatusCreated, ingestResponse{
		ReadingID: reading.ID,
		HiveID:    reading.HiveID,
		TenantID:  reading.TenantID,
	})
}
