package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeguardai/hub/internal/config"
	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/repository/cooldown"
	"github.com/beeguardai/hub/internal/testutil"
)

func newTestEvaluator(directory *testutil.FakeDirectory, store *testutil.FakeStore, notifier *testutil.FakeNotifier) *Evaluator {
	return NewEvaluator(directory, store, cooldown.NewMemoryStore(), notifier, monitoring.NewService(), config.AlertingConfig{
		CheckInterval: 5 * time.Minute,
		Cooldown:      60 * time.Minute,
		Window:        time.Hour,
		OpTimeout:     time.Second,
	})
}

func aggregates(values map[string]map[string]float64) func(string, models.Window, []string, models.AggFunc) map[string]float64 {
	return func(hiveID string, _ models.Window, fields []string, _ models.AggFunc) map[string]float64 {
		out := make(map[string]float64, len(fields))
		for _, f := range fields {
			out[f] = values[hiveID][f]
		}
		return out
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(0, 0))
	assert.Equal(t, 100.0, Ratio(3, 0))
	assert.Equal(t, 10.0, Ratio(4, 40))
	assert.Equal(t, 50.0, Ratio(1, 2))
}

func TestEvaluator_FiresAboveThreshold(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{
		{ID: "h1", Name: "Hive One", ApiaryName: "North Field"},
	}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 4, models.FieldBeeCount: 40},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	require.Len(t, notifier.Alerts, 1)
	assert.Equal(t, "u1@example.com", notifier.Alerts[0].Recipient)
	require.Len(t, notifier.Alerts[0].Items, 1)
	assert.Equal(t, "Hive One", notifier.Alerts[0].Items[0].HiveName)
	assert.Equal(t, 10.0, notifier.Alerts[0].Items[0].RatioPercent)
}

func TestEvaluator_RequiresHornetActivity(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 0, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{{ID: "h1", Name: "Hive One"}}

	// Ratio 0 >= threshold 0, but no hornets at all: must stay silent.
	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 0, models.FieldBeeCount: 500},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Empty(t, notifier.Alerts)
}

func TestEvaluator_BelowThresholdStaysSilent(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 15, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{{ID: "h1", Name: "Hive One"}}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 4, models.FieldBeeCount: 40},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Empty(t, notifier.Alerts)
}

func TestEvaluator_CooldownSuppressesRepeats(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{{ID: "h1", Name: "Hive One"}}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 4, models.FieldBeeCount: 40},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	base := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	clock := base
	e.now = func() time.Time { return clock }

	require.NoError(t, e.RunCycle(context.Background()))
	require.Len(t, notifier.Alerts, 1)

	// 30 minutes later the pair is still cooling down
	clock = base.Add(30 * time.Minute)
	require.NoError(t, e.RunCycle(context.Background()))
	assert.Len(t, notifier.Alerts, 1)

	// 61 minutes after the first alert the window has elapsed
	clock = base.Add(61 * time.Minute)
	require.NoError(t, e.RunCycle(context.Background()))
	assert.Len(t, notifier.Alerts, 2)
}

func TestEvaluator_GroupsHivesIntoOneNotification(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{
		{ID: "h1", Name: "Hive One"},
		{ID: "h2", Name: "Hive Two"},
		{ID: "h3", Name: "Hive Three"},
	}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 5, models.FieldBeeCount: 10},
		"h2": {models.FieldHornetCount: 1, models.FieldBeeCount: 100}, // 1%: below threshold
		"h3": {models.FieldHornetCount: 8, models.FieldBeeCount: 0},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	require.Len(t, notifier.Alerts, 1)
	assert.Len(t, notifier.Alerts[0].Items, 2)
}

func TestEvaluator_RecipientFallback(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, RecipientEmail: "alerts@example.com", AccountEmail: "u1@example.com"},
		{UserID: "u2", Enabled: true, ThresholdPercent: 10, AccountEmail: "u2@example.com"},
		{UserID: "u3", Enabled: true, ThresholdPercent: 10},
	}
	for _, user := range []string{"u1", "u2", "u3"} {
		directory.UserHives[user] = []models.HiveOverview{{ID: "h-" + user, Name: "Hive " + user}}
	}

	store := testutil.NewFakeStore()
	store.AggregateFn = func(hiveID string, _ models.Window, fields []string, _ models.AggFunc) map[string]float64 {
		return map[string]float64{models.FieldHornetCount: 5, models.FieldBeeCount: 10}
	}

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	// u3 has no address anywhere and is skipped entirely
	require.Len(t, notifier.Alerts, 2)
	assert.Equal(t, "alerts@example.com", notifier.Alerts[0].Recipient)
	assert.Equal(t, "u2@example.com", notifier.Alerts[1].Recipient)
}

func TestEvaluator_UserFailureDoesNotStopCycle(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, AccountEmail: "u1@example.com"},
		{UserID: "u2", Enabled: true, ThresholdPercent: 10, AccountEmail: "u2@example.com"},
	}
	directory.UserHivesErr["u1"] = errors.NewDatabaseError("directory unavailable", nil)
	directory.UserHives["u2"] = []models.HiveOverview{{ID: "h2", Name: "Hive Two"}}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h2": {models.FieldHornetCount: 5, models.FieldBeeCount: 10},
	})

	notifier := &testutil.FakeNotifier{}
	e := newTestEvaluator(directory, store, notifier)

	require.NoError(t, e.RunCycle(context.Background()))
	require.Len(t, notifier.Alerts, 1)
	assert.Equal(t, "u2@example.com", notifier.Alerts[0].Recipient)
}

func TestEvaluator_SendFailureKeepsCooldown(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.AlertConfigs = []models.AlertConfig{
		{UserID: "u1", Enabled: true, ThresholdPercent: 10, AccountEmail: "u1@example.com"},
	}
	directory.UserHives["u1"] = []models.HiveOverview{{ID: "h1", Name: "Hive One"}}

	store := testutil.NewFakeStore()
	store.AggregateFn = aggregates(map[string]map[string]float64{
		"h1": {models.FieldHornetCount: 5, models.FieldBeeCount: 10},
	})

	notifier := &testutil.FakeNotifier{AlertErr: errors.NewDispatchError("smtp down", nil)}
	e := newTestEvaluator(directory, store, notifier)

	base := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	clock := base
	e.now = func() time.Time { return clock }

	require.NoError(t, e.RunCycle(context.Background()))
	assert.Empty(t, notifier.Alerts)

	// The failed delivery still consumed the cooldown window: the next
	// cycle inside it must not retry.
	notifier.AlertErr = nil
	clock = base.Add(5 * time.Minute)
	require.NoError(t, e.RunCycle(context.Background()))
	assert.Empty(t, notifier.Alerts)

	clock = base.Add(61 * time.Minute)
	require.NoError(t, e.RunCycle(context.Background()))
	assert.Len(t, notifier.Alerts, 1)
}

func TestEvaluator_ListFailureFailsCycle(t *testing.T) {
	directory := testutil.NewFakeDirectory()
	directory.ListAlertsErr = errors.NewDatabaseError("directory unavailable", nil)

	e := newTestEvaluator(directory, testutil.NewFakeStore(), &testutil.FakeNotifier{})
	assert.Error(t, e.RunCycle(context.Background()))
}
