package resources

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeguardai/hub/internal/hubservice"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/testutil"
)

func newTestRouter(t *testing.T) (*mux.Router, *testutil.FakeDirectory, *testutil.FakeStore) {
	t.Helper()

	directory := testutil.NewFakeDirectory()
	directory.AddHive(&models.Hive{
		ID:       "hive-1",
		TenantID: "tenant-1",
		Name:     "Hive One",
		DeviceID: "beehive-7074",
	})
	store := testutil.NewFakeStore()

	rs := NewResources(hubservice.New(directory, store, monitoring.NewService()), monitoring.NewService())

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/iot/readings", rs.IngestReading).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/hives/{hiveId}/readings", rs.GetHiveHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/hives/{hiveId}/readings/latest", rs.GetHiveLatest).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/hives/{hiveId}/stats", rs.GetHiveStats).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/tenants/{tenantId}/readings/latest", rs.GetTenantLatest).Methods(http.MethodGet)
	return router, directory, store
}

func TestIngestReading_Created(t *testing.T) {
	router, _, store := newTestRouter(t)

	body := []byte(`{"device_identifier":"beehive-7074","hornet_count":2,"bee_count":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/iot/readings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hive-1", resp["hive_id"])
	assert.Equal(t, "tenant-1", resp["tenant_id"])
	assert.NotEmpty(t, resp["reading_id"])
	assert.Len(t, store.InsertedReadings(), 1)
}

func TestIngestReading_UnknownDevice(t *testing.T) {
	router, _, store := newTestRouter(t)

	body := []byte(`{"device_identifier":"ghost-1","hornet_count":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/iot/readings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.InsertedReadings())
}

func TestIngestReading_EmptyBody(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/iot/readings", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHiveLatest(t *testing.T) {
	router, _, store := newTestRouter(t)
	store.Latest["hive-1"] = &models.Reading{
		ID: "rd-1", HiveID: "hive-1", TenantID: "tenant-1",
		HornetCount: 2, BeeCount: 50,
		Timestamp: time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC),
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hives/hive-1/readings/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var reading models.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reading))
	assert.Equal(t, "rd-1", reading.ID)
	assert.Equal(t, 2, reading.HornetCount)
}

func TestGetHiveLatest_NoReadings(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hives/hive-1/readings/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHiveHistory_BadRange(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/hives/hive-1/readings?start=2026-05-12T09:00:00Z&end=2026-05-12T08:00:00Z", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHiveStats(t *testing.T) {
	router, _, store := newTestRouter(t)
	store.AggregateFn = func(hiveID string, _ models.Window, fields []string, fn models.AggFunc) map[string]float64 {
		assert.Equal(t, models.AggMax, fn)
		out := make(map[string]float64, len(fields))
		for _, f := range fields {
			out[f] = 7
		}
		return out
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/hives/hive-1/stats?hours=48&fields=hornet_count,bee_count&fn=max", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var values map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
	assert.Equal(t, map[string]float64{"hornet_count": 7, "bee_count": 7}, values)
}

func TestGetHiveStats_RejectsNonPositiveHours(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/hives/hive-1/stats?hours=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTenantLatest(t *testing.T) {
	router, _, store := newTestRouter(t)
	store.ByTenant["tenant-1"] = []models.Reading{
		{ID: "rd-1", HiveID: "hive-1", TenantID: "tenant-1"},
		{ID: "rd-2", HiveID: "hive-2", TenantID: "tenant-1"},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/tenant-1/readings/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var readings []models.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &readings))
	assert.Len(t, readings, 2)
}
