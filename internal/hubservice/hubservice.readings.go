package hubservice

import (
	"context"
	"time"

	"github.com/beeguardai/hub/internal/models"
)

// AggregateWindow applies fn to each field of a hive over the window.
// Hives with no samples yield 0 per field rather than an error.
func (s *HubService) AggregateWindow(ctx context.Context, hiveID string, window models.Window, fields []string, fn models.AggFunc) (map[string]float64, error) {
	return s.Store.Aggregate(ctx, hiveID, window, fields, fn)
}

// LatestTenantReadings returns the most recent reading per hive of a
// tenant, for the live dashboard.
func (s *HubService) LatestTenantReadings(ctx context.Context, tenantID string) ([]models.Reading, error) {
	return s.Store.GetLatestByTenant(ctx, tenantID)
}

// HiveLatest returns the most recent reading of one hive
func (s *HubService) HiveLatest(ctx context.Context, hiveID string) (*models.Reading, error) {
	if _, err := s.Directory.ResolveHiveByID(ctx, hiveID); err != nil {
		return nil, err
	}
	return s.Store.GetLatestByHive(ctx, hiveID)
}

// HiveHistory returns the readings of a hive over either an absolute
// range or the trailing number of hours (default one week).
func (s *HubService) HiveHistory(ctx context.Context, hiveID string, hours int, start, end time.Time) ([]models.Reading, error) {
	if _, err := s.Directory.ResolveHiveByID(ctx, hiveID); err != nil {
		return nil, err
	}

	if start.IsZero() || end.IsZero() {
		if hours <= 0 {
			hours = 168
		}
		end = time.Now()
		start = end.Add(-time.Duration(hours) * time.Hour)
	}
	return s.Store.GetReadings(ctx, hiveID, start, end)
}
