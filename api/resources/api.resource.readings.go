package resources

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
)

type historyQuery struct {
	Hours int    `schema:"hours"`
	Start string `schema:"start"`
	End   string `schema:"end"`
}

type statsQuery struct {
	Hours  int    `schema:"hours"`
	Fields string `schema:"fields"`
	Fn     string `schema:"fn"`
}

// GetHiveHistory godoc
// @Summary Get reading history for a hive
// @Description Returns readings for a hive within a trailing number of hours or an absolute RFC3339 start/end range
// @Tags readings
// @Produce json
// @Param hiveId path string true "Hive ID"
// @Param hours query int false "Trailing window in hours (default 168)"
// @Param start query string false "Absolute window start (RFC3339)"
// @Param end query string false "Absolute window end (RFC3339)"
// @Success 200 {array} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /hives/{hiveId}/readings [get]
func (rs *Resources) GetHiveHistory(w http.ResponseWriter, r *http.Request) {
	hiveID := mux.Vars(r)["hiveId"]

	var q historyQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err))
		return
	}

	var start, end time.Time
	if q.Start != "" || q.End != "" {
		var err error
		start, end, err = parseRange(q.Start, q.End)
		if err != nil {
			respondWithError(w, err)
			return
		}
	}

	readings, err := rs.Service.HiveHistory(r.Context(), hiveID, q.Hours, start, end)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, readings)
}

// GetHiveLatest godoc
// @Summary Get the most recent reading for a hive
// @Tags readings
// @Produce json
// @Param hiveId path string true "Hive ID"
// @Success 200 {object} models.Reading
// @Failure 404 {object} errors.APIError
// @Router /hives/{hiveId}/readings/latest [get]
func (rs *Resources) GetHiveLatest(w http.ResponseWriter, r *http.Request) {
	hiveID := mux.Vars(r)["hiveId"]

	reading, err := rs.Service.HiveLatest(r.Context(), hiveID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}

// GetHiveStats godoc
// @Summary Aggregate sensor fields for a hive over a trailing window
// @Description Applies one aggregation function to a comma-separated list of fields
// @Tags readings
// @Produce json
// @Param hiveId path string true "Hive ID"
// @Param hours query int false "Trailing window in hours (default 24)"
// @Param fields query string false "Comma-separated field names (default all)"
// @Param fn query string false "Aggregation function: last, mean, sum, min, max, count (default mean)"
// @Success 200 {object} map[string]float64
// @Failure 400 {object} errors.APIError
// @Router /hives/{hiveId}/stats [get]
func (rs *Resources) GetHiveStats(w http.ResponseWriter, r *http.Request) {
	hiveID := mux.Vars(r)["hiveId"]

	q := statsQuery{Hours: 24, Fn: string(models.AggMean)}
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err))
		return
	}
	if q.Hours <= 0 {
		respondWithError(w, errors.NewValidationError("hours must be positive", nil))
		return
	}

	fields := []string{
		models.FieldHornetCount, models.FieldBeeCount,
		models.FieldTemperature, models.FieldHumidity,
	}
	if q.Fields != "" {
		fields = nil
		for _, f := range strings.Split(q.Fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}

	window := models.TrailingWindow(time.Duration(q.Hours) * time.Hour)
	values, err := rs.Service.AggregateWindow(r.Context(), hiveID, window, fields, models.AggFunc(q.Fn))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, values)
}

// GetTenantLatest godoc
// @Summary Get the most recent reading per hive for a tenant
// @Tags readings
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {array} models.Reading
// @Router /tenants/{tenantId}/readings/latest [get]
func (rs *Resources) GetTenantLatest(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenantId"]

	readings, err := rs.Service.LatestTenantReadings(r.Context(), tenantID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, readings)
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("invalid start timestamp, expected RFC3339", err)
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("invalid end timestamp, expected RFC3339", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.NewValidationError("end must be after start", nil)
	}
	return start, end, nil
}
