// Package testutil provides hand-written fakes for the repository and
// notification interfaces used across the service tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
)

// FakeDirectory is an in-memory TenantDirectory
type FakeDirectory struct {
	HivesByDevice map[string]*models.Hive
	HivesByID     map[string]*models.Hive
	AlertConfigs  []models.AlertConfig
	ReportConfigs []models.ReportConfig
	UserHives     map[string][]models.HiveOverview

	ListAlertsErr error
	UserHivesErr  map[string]error
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		HivesByDevice: make(map[string]*models.Hive),
		HivesByID:     make(map[string]*models.Hive),
		UserHives:     make(map[string][]models.HiveOverview),
		UserHivesErr:  make(map[string]error),
	}
}

// AddHive registers a hive under both its ID and its device ID
func (d *FakeDirectory) AddHive(hive *models.Hive) {
	d.HivesByID[hive.ID] = hive
	if hive.DeviceID != "" {
		d.HivesByDevice[hive.DeviceID] = hive
	}
}

func (d *FakeDirectory) ResolveHiveByDevice(ctx context.Context, deviceID string) (*models.Hive, error) {
	if hive, ok := d.HivesByDevice[deviceID]; ok {
		return hive, nil
	}
	return nil, errors.NewNotFoundError("no hive registered for device "+deviceID, nil)
}

func (d *FakeDirectory) ResolveHiveByID(ctx context.Context, hiveID string) (*models.Hive, error) {
	if hive, ok := d.HivesByID[hiveID]; ok {
		return hive, nil
	}
	return nil, errors.NewNotFoundError("hive "+hiveID+" not found", nil)
}

func (d *FakeDirectory) ListUsersWithAlertsEnabled(ctx context.Context) ([]models.AlertConfig, error) {
	if d.ListAlertsErr != nil {
		return nil, d.ListAlertsErr
	}
	return d.AlertConfigs, nil
}

func (d *FakeDirectory) ListUsersWithReportsEnabled(ctx context.Context) ([]models.ReportConfig, error) {
	return d.ReportConfigs, nil
}

func (d *FakeDirectory) ListHivesForUser(ctx context.Context, userID string) ([]models.HiveOverview, error) {
	if err := d.UserHivesErr[userID]; err != nil {
		return nil, err
	}
	return d.UserHives[userID], nil
}

func (d *FakeDirectory) Ping(ctx context.Context) error { return nil }

// FakeStore is an in-memory TimeSeriesStore. Aggregations come from the
// AggregateFn hook so tests control window values directly.
type FakeStore struct {
	mu       sync.Mutex
	Inserted []*models.Reading

	AggregateFn func(hiveID string, window models.Window, fields []string, fn models.AggFunc) map[string]float64
	Samples     map[string]int
	Latest      map[string]*models.Reading
	ByTenant    map[string][]models.Reading
	History     map[string][]models.Reading

	InsertErr    error
	AggregateErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Samples:  make(map[string]int),
		Latest:   make(map[string]*models.Reading),
		ByTenant: make(map[string][]models.Reading),
		History:  make(map[string][]models.Reading),
	}
}

func (s *FakeStore) InsertReading(ctx context.Context, reading *models.Reading) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserted = append(s.Inserted, reading)
	return nil
}

// InsertedReadings returns a snapshot of everything written so far
func (s *FakeStore) InsertedReadings() []*models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Reading, len(s.Inserted))
	copy(out, s.Inserted)
	return out
}

func (s *FakeStore) Aggregate(ctx context.Context, hiveID string, window models.Window, fields []string, fn models.AggFunc) (map[string]float64, error) {
	if s.AggregateErr != nil {
		return nil, s.AggregateErr
	}
	if s.AggregateFn != nil {
		return s.AggregateFn(hiveID, window, fields, fn), nil
	}
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		out[f] = 0
	}
	return out, nil
}

func (s *FakeStore) SampleCount(ctx context.Context, hiveID string, window models.Window) (int, error) {
	return s.Samples[hiveID], nil
}

func (s *FakeStore) GetReadings(ctx context.Context, hiveID string, start, end time.Time) ([]models.Reading, error) {
	return s.History[hiveID], nil
}

func (s *FakeStore) GetLatestByHive(ctx context.Context, hiveID string) (*models.Reading, error) {
	if reading, ok := s.Latest[hiveID]; ok {
		return reading, nil
	}
	return nil, errors.NewNotFoundError("no readings for hive "+hiveID, nil)
}

func (s *FakeStore) GetLatestByTenant(ctx context.Context, tenantID string) ([]models.Reading, error) {
	return s.ByTenant[tenantID], nil
}

func (s *FakeStore) Ping(ctx context.Context) error { return nil }

// SentAlert records one grouped alert delivery
type SentAlert struct {
	Recipient string
	Items     []models.AlertBatchItem
}

// SentReport records one report delivery
type SentReport struct {
	Recipient string
	Filename  string
	Document  []byte
}

// FakeNotifier records deliveries instead of sending mail
type FakeNotifier struct {
	mu      sync.Mutex
	Alerts  []SentAlert
	Reports []SentReport

	AlertErr  error
	ReportErr error
}

func (n *FakeNotifier) SendGroupedAlert(ctx context.Context, recipient string, items []models.AlertBatchItem) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.AlertErr != nil {
		return n.AlertErr
	}
	n.Alerts = append(n.Alerts, SentAlert{Recipient: recipient, Items: items})
	return nil
}

func (n *FakeNotifier) SendReport(ctx context.Context, recipient string, document []byte, filename string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ReportErr != nil {
		return n.ReportErr
	}
	n.Reports = append(n.Reports, SentReport{Recipient: recipient, Filename: filename, Document: document})
	return nil
}

// FakeRenderer returns a fixed document and records what it was asked to render
type FakeRenderer struct {
	Periods []models.ReportPeriod
	Hives   [][]models.HiveReport
	Err     error
}

func (r *FakeRenderer) BuildReport(period models.ReportPeriod, hives []models.HiveReport) ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.Periods = append(r.Periods, period)
	r.Hives = append(r.Hives, hives)
	return []byte("%PDF-fake"), nil
}
