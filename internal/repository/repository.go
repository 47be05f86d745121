// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/beeguardai/hub/internal/models"
)

// TimeSeriesStore is the append-only store of hive readings. Readings are
// written once on ingestion and queried through the windowed aggregation
// contract; they are never mutated or deleted by the hub.
type TimeSeriesStore interface {
	InsertReading(ctx context.Context, reading *models.Reading) error
	// Aggregate applies fn to each named field over the window and returns
	// one value per field. Hives with no samples in the window yield 0 for
	// every field, not an error.
	Aggregate(ctx context.Context, hiveID string, window models.Window, fields []string, fn models.AggFunc) (map[string]float64, error)
	// SampleCount returns the number of readings for a hive in the window
	SampleCount(ctx context.Context, hiveID string, window models.Window) (int, error)
	GetReadings(ctx context.Context, hiveID string, start, end time.Time) ([]models.Reading, error)
	GetLatestByHive(ctx context.Context, hiveID string) (*models.Reading, error)
	GetLatestByTenant(ctx context.Context, tenantID string) ([]models.Reading, error)
	Ping(ctx context.Context) error
}

// TenantDirectory resolves hive identity, tenant membership and per-user
// notification configuration. The hub only reads from it.
type TenantDirectory interface {
	ResolveHiveByDevice(ctx context.Context, deviceID string) (*models.Hive, error)
	ResolveHiveByID(ctx context.Context, hiveID string) (*models.Hive, error)
	ListUsersWithAlertsEnabled(ctx context.Context) ([]models.AlertConfig, error)
	ListUsersWithReportsEnabled(ctx context.Context) ([]models.ReportConfig, error)
	ListHivesForUser(ctx context.Context, userID string) ([]models.HiveOverview, error)
	Ping(ctx context.Context) error
}

// CooldownStore tracks the last alert time per (user, hive) pair. State is
// process-lifetime by default; a Redis-backed store survives restarts.
type CooldownStore interface {
	LastAlert(ctx context.Context, userID, hiveID string) (time.Time, bool, error)
	Stamp(ctx context.Context, userID, hiveID string, at time.Time) error
}
