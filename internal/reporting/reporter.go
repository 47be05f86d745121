// FilePath: internal/reporting/reporter.go
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/notify"
	"github.com/beeguardai/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Reporter runs one report pass: it matches each subscription against the
// current wall clock, computes period statistics per hive and dispatches
// a rendered report to the user.
type Reporter struct {
	directory repository.TenantDirectory
	store     repository.TimeSeriesStore
	renderer  notify.DocumentRenderer
	notifier  notify.Notifier
	metrics   *monitoring.Service

	opTimeout time.Duration
	now       func() time.Time
}

func NewReporter(
	directory repository.TenantDirectory,
	store repository.TimeSeriesStore,
	renderer notify.DocumentRenderer,
	notifier notify.Notifier,
	metrics *monitoring.Service,
	cfg config.ReportingConfig,
) *Reporter {
	return &Reporter{
		directory: directory,
		store:     store,
		renderer:  renderer,
		notifier:  notifier,
		metrics:   metrics,
		opTimeout: cfg.OpTimeout,
		now:       time.Now,
	}
}

// Due reports whether a subscription matches the given wall-clock time.
// Daily reports fire every day at the configured hour; weekly reports
// additionally require the configured weekday (0 = Monday).
func Due(cfg models.ReportConfig, now time.Time) bool {
	if now.Hour() != cfg.HourOfDay {
		return false
	}
	if cfg.Frequency == models.FrequencyWeekly {
		return weekdayMondayFirst(now) == cfg.DayOfWeek
	}
	return true
}

// weekdayMondayFirst maps time.Weekday (Sunday = 0) onto the stored
// Monday = 0 convention
func weekdayMondayFirst(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// RunCycle checks every subscription once. The cycle runs hourly, so a
// matching slot fires at most once. Per-user failures are logged and do
// not stop remaining users.
func (r *Reporter) RunCycle(ctx context.Context) error {
	now := r.now()

	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	configs, err := r.directory.ListUsersWithReportsEnabled(opCtx)
	cancel()
	if err != nil {
		return err
	}

	nuts.L.Debugf("[Reporter] Checking %d report subscriptions (hour %d, day %d)",
		len(configs), now.Hour(), weekdayMondayFirst(now))

	for _, cfg := range configs {
		if cfg.Recipient() == "" {
			continue
		}
		if !Due(cfg, now) {
			continue
		}
		if err := r.sendReport(ctx, cfg, now); err != nil {
			nuts.L.Errorf("[Reporter] Failed to send %s report to user %s: %v",
				cfg.Frequency, cfg.UserID, err)
			r.metrics.ReportsFailed.Inc()
		}
	}
	return nil
}

func (r *Reporter) sendReport(ctx context.Context, cfg models.ReportConfig, now time.Time) error {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	hives, err := r.directory.ListHivesForUser(opCtx, cfg.UserID)
	cancel()
	if err != nil {
		return err
	}

	window := models.TrailingWindow(time.Duration(cfg.PeriodDays()) * 24 * time.Hour)
	reports := make([]models.HiveReport, 0, len(hives))
	for _, hive := range hives {
		stats, err := r.collectStats(ctx, hive.ID, window)
		if err != nil {
			return err
		}
		reports = append(reports, models.HiveReport{Hive: hive, Stats: stats})
	}

	period := models.ReportPeriod{
		Frequency:   cfg.Frequency,
		Days:        cfg.PeriodDays(),
		GeneratedAt: now,
	}
	document, err := r.renderer.BuildReport(period, reports)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("beeguard-report-%s.pdf", now.Format("20060102"))
	opCtx, cancel = context.WithTimeout(ctx, r.opTimeout)
	err = r.notifier.SendReport(opCtx, cfg.Recipient(), document, filename)
	cancel()
	if err != nil {
		return err
	}

	nuts.L.Infof("[Reporter] Sent %s report to %s (%d hives)",
		cfg.Frequency, cfg.Recipient(), len(reports))
	r.metrics.ReportsSent.Inc()
	return nil
}

// collectStats assembles the per-hive period statistics. Hives with no
// samples in the window return nil stats so the renderer can show a
// placeholder instead of failing the whole report.
func (r *Reporter) collectStats(ctx context.Context, hiveID string, window models.Window) (*models.HiveStats, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	samples, err := r.store.SampleCount(opCtx, hiveID, window)
	if err != nil {
		return nil, err
	}
	if samples == 0 {
		return nil, nil
	}

	means, err := r.store.Aggregate(opCtx, hiveID, window,
		[]string{models.FieldTemperature, models.FieldHumidity, models.FieldBeeCount}, models.AggMean)
	if err != nil {
		return nil, err
	}
	mins, err := r.store.Aggregate(opCtx, hiveID, window,
		[]string{models.FieldTemperature, models.FieldHumidity}, models.AggMin)
	if err != nil {
		return nil, err
	}
	maxs, err := r.store.Aggregate(opCtx, hiveID, window,
		[]string{models.FieldTemperature, models.FieldHumidity, models.FieldBeeCount, models.FieldHornetCount}, models.AggMax)
	if err != nil {
		return nil, err
	}
	sums, err := r.store.Aggregate(opCtx, hiveID, window,
		[]string{models.FieldBeeCount, models.FieldHornetCount}, models.AggSum)
	if err != nil {
		return nil, err
	}

	return &models.HiveStats{
		TempAvg:      means[models.FieldTemperature],
		TempMin:      mins[models.FieldTemperature],
		TempMax:      maxs[models.FieldTemperature],
		HumidityAvg:  means[models.FieldHumidity],
		HumidityMin:  mins[models.FieldHumidity],
		HumidityMax:  maxs[models.FieldHumidity],
		BeesAvg:      means[models.FieldBeeCount],
		BeesTotal:    sums[models.FieldBeeCount],
		BeesMax:      maxs[models.FieldBeeCount],
		HornetsTotal: sums[models.FieldHornetCount],
		HornetsMax:   maxs[models.FieldHornetCount],
		Samples:      samples,
	}, nil
}
