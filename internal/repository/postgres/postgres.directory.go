// FilePath: internal/repository/postgres/postgres.directory.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/beeguardai/hub/internal/database"
	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
)

// DirectoryRepo answers hive identity, tenant membership and notification
// configuration queries against the app database. Tenant management tooling
// owns the writes; the hub only reads.
type DirectoryRepo struct {
	db database.DB
}

func NewDirectoryRepository(db database.DB) (*DirectoryRepo, error) {
	repo := &DirectoryRepo{db: db}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *DirectoryRepo) initializeSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS apiaries (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS hives (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			apiary_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			device_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_hives_device
         ON hives(device_id) WHERE device_id <> ''`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			email TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			alerts_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			alerts_threshold DOUBLE PRECISION NOT NULL DEFAULT 5,
			alerts_email TEXT NOT NULL DEFAULT '',
			reports_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			reports_frequency TEXT NOT NULL DEFAULT 'weekly',
			reports_day_of_week INTEGER NOT NULL DEFAULT 0,
			reports_hour_of_day INTEGER NOT NULL DEFAULT 8,
			reports_email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hives_tenant ON hives(tenant_id)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize directory schema", err)
		}
	}
	return nil
}

func (r *DirectoryRepo) ResolveHiveByDevice(ctx context.Context, deviceID string) (*models.Hive, error) {
	hive := &models.Hive{}
	query := `SELECT * FROM hives WHERE device_id = $1`

	err := r.db.GetDB().GetContext(ctx, hive, query, deviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no hive registered for device "+deviceID, err)
		}
		return nil, errors.NewDatabaseError("failed to resolve hive by device", err)
	}
	return hive, nil
}

func (r *DirectoryRepo) ResolveHiveByID(ctx context.Context, hiveID string) (*models.Hive, error) {
	hive := &models.Hive{}
	query := `SELECT * FROM hives WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, hive, query, hiveID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("hive not found", err)
		}
		return nil, errors.NewDatabaseError("failed to resolve hive", err)
	}
	return hive, nil
}

func (r *DirectoryRepo) ListUsersWithAlertsEnabled(ctx context.Context) ([]models.AlertConfig, error) {
	configs := []models.AlertConfig{}
	query := `
		SELECT s.user_id, s.alerts_enabled, s.alerts_threshold, s.alerts_email,
		       u.email AS account_email
		FROM user_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.alerts_enabled = TRUE`

	err := r.db.GetDB().SelectContext(ctx, &configs, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list alert subscriptions", err)
	}
	return configs, nil
}

func (r *DirectoryRepo) ListUsersWithReportsEnabled(ctx context.Context) ([]models.ReportConfig, error) {
	configs := []models.ReportConfig{}
	query := `
		SELECT s.user_id, s.reports_enabled, s.reports_frequency,
		       s.reports_day_of_week, s.reports_hour_of_day, s.reports_email,
		       u.email AS account_email
		FROM user_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.reports_enabled = TRUE`

	err := r.db.GetDB().SelectContext(ctx, &configs, query)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list report subscriptions", err)
	}
	return configs, nil
}

func (r *DirectoryRepo) ListHivesForUser(ctx context.Context, userID string) ([]models.HiveOverview, error) {
	hives := []models.HiveOverview{}
	query := `
		SELECT h.id, h.tenant_id, h.name,
		       COALESCE(a.name, '') AS apiary_name
		FROM hives h
		LEFT JOIN apiaries a ON a.id = h.apiary_id
		JOIN users u ON u.tenant_id = h.tenant_id
		WHERE u.id = $1
		ORDER BY a.name, h.name`

	err := r.db.GetDB().SelectContext(ctx, &hives, query, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list hives for user", err)
	}
	return hives, nil
}

func (r *DirectoryRepo) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping app database", err)
	}
	return nil
}
