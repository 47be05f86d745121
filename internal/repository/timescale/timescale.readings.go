// FilePath: internal/repository/timescale/timescale.readings.go
package timescale

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/beeguardai/hub/internal/database"
	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// aggregatable maps logical field names onto hypertable columns. Acting as
// a whitelist keeps caller-supplied field names out of the SQL text.
var aggregatable = map[string]string{
	models.FieldHornetCount: "hornet_count",
	models.FieldBeeCount:    "bee_count",
	models.FieldTemperature: "temperature",
	models.FieldHumidity:    "humidity",
	models.FieldLuminosity:  "luminosity",
}

type ReadingRepo struct {
	db database.DB
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{db: db}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			hive_id TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			hornet_count INTEGER NOT NULL DEFAULT 0,
			bee_count INTEGER NOT NULL DEFAULT 0,
			temperature DOUBLE PRECISION NOT NULL DEFAULT 0,
			humidity DOUBLE PRECISION NOT NULL DEFAULT 0,
			luminosity INTEGER NOT NULL DEFAULT 1,
			bee_state TEXT NOT NULL DEFAULT 'normal',
			acoustic_state TEXT NOT NULL DEFAULT 'normal',
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('readings', 'timestamp',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_hive_timestamp
         ON readings(hive_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_tenant_timestamp
         ON readings(tenant_id, timestamp DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	r.setupRetentionPolicy()
	return nil
}

func (r *ReadingRepo) setupRetentionPolicy() {
	query := `
		SELECT add_retention_policy('readings',
			INTERVAL '13 months',
			if_not_exists => TRUE
		)`

	_, err := r.db.GetDB().Exec(query)
	if err != nil {
		nuts.L.Errorf("[TimescaleDB] Failed to set up retention policy: %v", err)
	}
}

func (r *ReadingRepo) InsertReading(ctx context.Context, reading *models.Reading) error {
	if reading.ID == "" {
		reading.ID = nuts.NID("rd", 12)
	}
	query := `
		INSERT INTO readings (
			id, hive_id, tenant_id, hornet_count, bee_count,
			temperature, humidity, luminosity, bee_state, acoustic_state, timestamp
		) VALUES (
			:id, :hive_id, :tenant_id, :hornet_count, :bee_count,
			:temperature, :humidity, :luminosity, :bee_state, :acoustic_state, :timestamp
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewDatabaseError("failed to insert reading", err)
	}
	return nil
}

// Aggregate applies fn to each field over the window. COALESCE keeps hives
// with no samples at 0 instead of NULL, so quiet hives never fault a cycle.
func (r *ReadingRepo) Aggregate(ctx context.Context, hiveID string, window models.Window, fields []string, fn models.AggFunc) (map[string]float64, error) {
	if fn == models.AggLast {
		return r.aggregateLast(ctx, hiveID, window, fields)
	}

	sqlFn, err := sqlAggregate(fn)
	if err != nil {
		return nil, err
	}

	selects := make([]string, 0, len(fields))
	for _, field := range fields {
		column, ok := aggregatable[field]
		if !ok {
			return nil, errors.NewValidationError("unknown aggregation field: "+field, nil)
		}
		selects = append(selects, fmt.Sprintf("COALESCE(%s(%s), 0) AS %s", sqlFn, column, column))
	}

	start, end := window.Bounds(time.Now())
	query := fmt.Sprintf(`
		SELECT %s
		FROM readings
		WHERE hive_id = $1 AND timestamp >= $2 AND timestamp < $3`,
		strings.Join(selects, ", "))

	row := map[string]interface{}{}
	err = r.db.GetDB().QueryRowxContext(ctx, query, hiveID, start, end).MapScan(row)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to aggregate readings", err)
	}

	result := make(map[string]float64, len(fields))
	for _, field := range fields {
		result[field] = toFloat(row[aggregatable[field]])
	}
	return result, nil
}

// aggregateLast returns the most recent value per field within the window,
// falling back to 0 when the hive has no samples.
func (r *ReadingRepo) aggregateLast(ctx context.Context, hiveID string, window models.Window, fields []string) (map[string]float64, error) {
	result := make(map[string]float64, len(fields))
	start, end := window.Bounds(time.Now())

	for _, field := range fields {
		column, ok := aggregatable[field]
		if !ok {
			return nil, errors.NewValidationError("unknown aggregation field: "+field, nil)
		}
		query := fmt.Sprintf(`
			SELECT %s
			FROM readings
			WHERE hive_id = $1 AND timestamp >= $2 AND timestamp < $3
			ORDER BY timestamp DESC
			LIMIT 1`, column)

		var value float64
		err := r.db.GetDB().GetContext(ctx, &value, query, hiveID, start, end)
		if err == sql.ErrNoRows {
			result[field] = 0
			continue
		}
		if err != nil {
			return nil, errors.NewDatabaseError("failed to get last reading value", err)
		}
		result[field] = value
	}
	return result, nil
}

func (r *ReadingRepo) SampleCount(ctx context.Context, hiveID string, window models.Window) (int, error) {
	start, end := window.Bounds(time.Now())
	query := `
		SELECT COUNT(*)
		FROM readings
		WHERE hive_id = $1 AND timestamp >= $2 AND timestamp < $3`

	var count int
	err := r.db.GetDB().GetContext(ctx, &count, query, hiveID, start, end)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count readings", err)
	}
	return count, nil
}

func (r *ReadingRepo) GetReadings(ctx context.Context, hiveID string, start, end time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}
	query := `
		SELECT * FROM readings
		WHERE hive_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC`

	err := r.db.GetDB().SelectContext(ctx, &readings, query, hiveID, start, end)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) GetLatestByHive(ctx context.Context, hiveID string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := `
		SELECT * FROM readings
		WHERE hive_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, reading, query, hiveID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no readings for hive", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) GetLatestByTenant(ctx context.Context, tenantID string) ([]models.Reading, error) {
	// Window function picks the most recent reading per hive
	query := `
		WITH ranked AS (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY hive_id ORDER BY timestamp DESC) AS rn
			FROM readings
			WHERE tenant_id = $1 AND timestamp > NOW() - INTERVAL '24 hours'
		)
		SELECT id, hive_id, tenant_id, hornet_count, bee_count,
		       temperature, humidity, luminosity, bee_state, acoustic_state, timestamp
		FROM ranked
		WHERE rn = 1`

	readings := []models.Reading{}
	err := r.db.GetDB().SelectContext(ctx, &readings, query, tenantID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get latest tenant readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping timescaledb", err)
	}
	return nil
}

func sqlAggregate(fn models.AggFunc) (string, error) {
	switch fn {
	case models.AggMean:
		return "AVG", nil
	case models.AggSum:
		return "SUM", nil
	case models.AggMin:
		return "MIN", nil
	case models.AggMax:
		return "MAX", nil
	case models.AggCount:
		return "COUNT", nil
	default:
		return "", errors.NewValidationError("invalid aggregation function", nil)
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case []byte:
		var f float64
		fmt.Sscanf(string(n), "%f", &f)
		return f
	default:
		return 0
	}
}
