// FilePath: internal/alerting/evaluator.go
package alerting

import (
	"context"
	"math"
	"time"

	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/notify"
	"github.com/beeguardai/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Evaluator runs one hornet alert pass: it computes threshold violations
// per (user, hive), suppresses pairs still in cooldown and sends at most
// one grouped notification per user per cycle.
type Evaluator struct {
	directory repository.TenantDirectory
	store     repository.TimeSeriesStore
	cooldowns repository.CooldownStore
	notifier  notify.Notifier
	metrics   *monitoring.Service

	cooldown  time.Duration
	window    time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

func NewEvaluator(
	directory repository.TenantDirectory,
	store repository.TimeSeriesStore,
	cooldowns repository.CooldownStore,
	notifier notify.Notifier,
	metrics *monitoring.Service,
	cfg config.AlertingConfig,
) *Evaluator {
	return &Evaluator{
		directory: directory,
		store:     store,
		cooldowns: cooldowns,
		notifier:  notifier,
		metrics:   metrics,
		cooldown:  cfg.Cooldown,
		window:    cfg.Window,
		opTimeout: cfg.OpTimeout,
		now:       time.Now,
	}
}

// Ratio computes the hornet pressure as a percentage of bee traffic. With
// no bees, any hornet activity at all counts as full pressure.
func Ratio(hornetAvg, beeAvg float64) float64 {
	if beeAvg > 0 {
		return (hornetAvg / beeAvg) * 100
	}
	if hornetAvg > 0 {
		return 100
	}
	return 0
}

// RunCycle evaluates every subscribed user once. Per-user failures are
// logged and never stop the remaining users in the same cycle.
func (e *Evaluator) RunCycle(ctx context.Context) error {
	now := e.now()

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	configs, err := e.directory.ListUsersWithAlertsEnabled(opCtx)
	cancel()
	if err != nil {
		return err
	}

	nuts.L.Debugf("[AlertEvaluator] Checking %d alert subscriptions", len(configs))
	for _, cfg := range configs {
		e.evaluateUser(ctx, cfg, now)
	}
	return nil
}

func (e *Evaluator) evaluateUser(ctx context.Context, cfg models.AlertConfig, now time.Time) {
	recipient := cfg.Recipient()
	if recipient == "" {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	hives, err := e.directory.ListHivesForUser(opCtx, cfg.UserID)
	cancel()
	if err != nil {
		nuts.L.Errorf("[AlertEvaluator] Failed to list hives for user %s: %v", cfg.UserID, err)
		return
	}

	batch := []models.AlertBatchItem{}
	for _, hive := range hives {
		item, ok := e.evaluateHive(ctx, cfg, hive, now)
		if ok {
			batch = append(batch, item)
		}
	}

	if len(batch) == 0 {
		return
	}

	opCtx, cancel = context.WithTimeout(ctx, e.opTimeout)
	err = e.notifier.SendGroupedAlert(opCtx, recipient, batch)
	cancel()
	if err != nil {
		// The cooldown stamps stay in place: no repeat delivery attempts
		// storming a broken mail path.
		nuts.L.Errorf("[AlertEvaluator] Failed to send alert to %s: %v", recipient, err)
		e.metrics.AlertsFailed.Inc()
		return
	}

	nuts.L.Infof("[AlertEvaluator] Alert sent to %s for %d hive(s)", recipient, len(batch))
	e.metrics.AlertsSent.Inc()
}

func (e *Evaluator) evaluateHive(ctx context.Context, cfg models.AlertConfig, hive models.HiveOverview, now time.Time) (models.AlertBatchItem, bool) {
	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	last, stamped, err := e.cooldowns.LastAlert(opCtx, cfg.UserID, hive.ID)
	if err != nil {
		nuts.L.Errorf("[AlertEvaluator] Cooldown lookup failed for hive %s: %v", hive.ID, err)
		return models.AlertBatchItem{}, false
	}
	if stamped && now.Sub(last) < e.cooldown {
		return models.AlertBatchItem{}, false
	}

	fields := []string{models.FieldHornetCount, models.FieldBeeCount}
	stats, err := e.store.Aggregate(opCtx, hive.ID, models.TrailingWindow(e.window), fields, models.AggMean)
	if err != nil {
		nuts.L.Errorf("[AlertEvaluator] Aggregation failed for hive %s: %v", hive.ID, err)
		return models.AlertBatchItem{}, false
	}

	hornetAvg := stats[models.FieldHornetCount]
	beeAvg := stats[models.FieldBeeCount]
	ratio := Ratio(hornetAvg, beeAvg)

	// A strictly positive hornet average is required on top of the ratio
	// threshold, guarding against division noise when bee traffic is near
	// zero.
	if ratio < cfg.ThresholdPercent || hornetAvg <= 0 {
		return models.AlertBatchItem{}, false
	}

	// Stamp before sending: at most one alert per pair per window, even
	// when the send later fails.
	if err := e.cooldowns.Stamp(opCtx, cfg.UserID, hive.ID, now); err != nil {
		nuts.L.Errorf("[AlertEvaluator] Failed to stamp cooldown for hive %s: %v", hive.ID, err)
	}

	nuts.L.Infof("[AlertEvaluator] Hive %s over threshold for user %s: %.1f%% (threshold %.1f%%)",
		hive.Name, cfg.UserID, ratio, cfg.ThresholdPercent)

	return models.AlertBatchItem{
		HiveName:     hive.Name,
		ApiaryName:   hive.ApiaryName,
		RatioPercent: math.Round(ratio*10) / 10,
		HornetAvg:    hornetAvg,
		BeeAvg:       beeAvg,
	}, true
}
