// FilePath: internal/ingest/resolver.go
package ingest

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// fieldAliases lists the accepted payload keys per logical field, in
// priority order. Firmware and gateway versions disagree on key names;
// adding a new dialect means appending here, nowhere else.
var fieldAliases = map[string][]string{
	models.FieldHornetCount: {"hornet_count", "nombre_frelons", "hornets"},
	models.FieldBeeCount:    {"bee_count", "nombre_abeilles", "bees"},
	models.FieldTemperature: {"temperature", "temp"},
	models.FieldHumidity:    {"humidity", "humidite"},
	models.FieldLuminosity:  {"luminosity", "luminosite"},
	"bee_state":             {"bee_state", "etat_abeilles", "bee_status"},
	"acoustic_state":        {"acoustic_state", "etat_acoustique", "acoustic_status"},
}

var deviceAliases = []string{"device_identifier", "device_id", "ttn_device_id"}

// Resolver normalizes inbound payloads into canonical readings, resolves
// device identity against the tenant directory and writes exactly one
// reading to the time-series store per successful call.
type Resolver struct {
	directory repository.TenantDirectory
	store     repository.TimeSeriesStore
	now       func() time.Time
}

func NewResolver(directory repository.TenantDirectory, store repository.TimeSeriesStore) *Resolver {
	return &Resolver{
		directory: directory,
		store:     store,
		now:       time.Now,
	}
}

// IngestReading accepts either the canonical flat payload or a gateway
// uplink envelope, resolves the hive and persists the normalized reading.
// Unknown devices are a configuration problem, not a transient failure:
// the NotFound error is surfaced to the caller and nothing is written.
func (r *Resolver) IngestReading(ctx context.Context, payload []byte) (*models.Reading, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.NewValidationError("malformed payload", err)
	}

	fields, deviceID, hiveID, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	hive, err := r.resolveHive(ctx, deviceID, hiveID)
	if err != nil {
		return nil, err
	}

	reading := buildReading(hive, fields, r.now())
	if err := r.store.InsertReading(ctx, reading); err != nil {
		return nil, err
	}

	nuts.L.Debugf("[Ingest] Reading %s recorded for hive %s (tenant %s)",
		reading.ID, reading.HiveID, reading.TenantID)
	return reading, nil
}

func (r *Resolver) resolveHive(ctx context.Context, deviceID, hiveID string) (*models.Hive, error) {
	if deviceID != "" {
		return r.directory.ResolveHiveByDevice(ctx, deviceID)
	}
	if hiveID != "" {
		return r.directory.ResolveHiveByID(ctx, hiveID)
	}
	return nil, errors.NewValidationError("payload carries neither device identifier nor hive id", nil)
}

// normalize flattens both accepted payload shapes into one field map plus
// the identity carried by the payload.
func normalize(raw map[string]interface{}) (fields map[string]interface{}, deviceID, hiveID string, err error) {
	if isEnvelope(raw) {
		decoded := decodedPayload(raw)
		if decoded == nil {
			return nil, "", "", errors.NewValidationError("uplink envelope has no decoded payload", nil)
		}
		deviceID = envelopeDeviceID(raw)
		if deviceID == "" {
			deviceID = stringAt(decoded, deviceAliases, "")
		}
		return decoded, deviceID, "", nil
	}

	deviceID = stringAt(raw, deviceAliases, "")
	hiveID = idAt(raw, "hive_id")
	return raw, deviceID, hiveID, nil
}

func buildReading(hive *models.Hive, fields map[string]interface{}, at time.Time) *models.Reading {
	return &models.Reading{
		ID:            nuts.NID("rd", 12),
		HiveID:        hive.ID,
		TenantID:      hive.TenantID,
		HornetCount:   int(numberAt(fields, fieldAliases[models.FieldHornetCount], 0)),
		BeeCount:      int(numberAt(fields, fieldAliases[models.FieldBeeCount], 0)),
		Temperature:   numberAt(fields, fieldAliases[models.FieldTemperature], 0),
		Humidity:      numberAt(fields, fieldAliases[models.FieldHumidity], 0),
		Luminosity:    int(numberAt(fields, fieldAliases[models.FieldLuminosity], 1)),
		BeeState:      stringAt(fields, fieldAliases["bee_state"], "normal"),
		AcousticState: stringAt(fields, fieldAliases["acoustic_state"], "normal"),
		Timestamp:     at,
	}
}

// isEnvelope detects the gateway/webhook uplink wrapper shape
func isEnvelope(raw map[string]interface{}) bool {
	if _, ok := raw["uplink_message"]; ok {
		return true
	}
	_, ok := raw["end_device_ids"]
	return ok
}

func decodedPayload(raw map[string]interface{}) map[string]interface{} {
	uplink, ok := raw["uplink_message"].(map[string]interface{})
	if !ok {
		return nil
	}
	decoded, ok := uplink["decoded_payload"].(map[string]interface{})
	if !ok || len(decoded) == 0 {
		return nil
	}
	return decoded
}

func envelopeDeviceID(raw map[string]interface{}) string {
	ids, ok := raw["end_device_ids"].(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := ids["device_id"].(string)
	return id
}

// numberAt tries each alias in order and returns the first numeric value
func numberAt(m map[string]interface{}, aliases []string, def float64) float64 {
	for _, key := range aliases {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return def
}

// stringAt tries each alias in order and returns the first string value
func stringAt(m map[string]interface{}, aliases []string, def string) string {
	for _, key := range aliases {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return def
}

// idAt accepts identifiers sent either as JSON strings or numbers
func idAt(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
