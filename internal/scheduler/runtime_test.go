package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/monitoring"
)

func TestRuntime_TriggerRunsCycle(t *testing.T) {
	metrics := monitoring.NewService()
	r := NewRuntime(metrics)

	var runs atomic.Int32
	r.Every(time.Hour, "alerts", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	r.Trigger("alerts")
	r.Trigger("alerts")
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, 0.0, promtest.ToFloat64(metrics.CycleFailures.WithLabelValues("alerts")))
}

func TestRuntime_TriggerUnknownNameIsNoop(t *testing.T) {
	r := NewRuntime(monitoring.NewService())
	r.Trigger("nope")
}

func TestRuntime_CycleErrorIsCountedNotFatal(t *testing.T) {
	metrics := monitoring.NewService()
	r := NewRuntime(metrics)

	r.Every(time.Hour, "alerts", func(ctx context.Context) error {
		return errors.NewDatabaseError("store down", nil)
	})

	r.Trigger("alerts")
	r.Trigger("alerts")
	assert.Equal(t, 2.0, promtest.ToFloat64(metrics.CycleFailures.WithLabelValues("alerts")))
}

func TestRuntime_CyclePanicIsRecovered(t *testing.T) {
	metrics := monitoring.NewService()
	r := NewRuntime(metrics)

	r.Every(time.Hour, "reports", func(ctx context.Context) error {
		panic("boom")
	})

	assert.NotPanics(t, func() { r.Trigger("reports") })
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.CycleFailures.WithLabelValues("reports")))
}

func TestRuntime_OverlappingTickIsSkipped(t *testing.T) {
	r := NewRuntime(monitoring.NewService())

	started := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	r.Every(time.Hour, "alerts", func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})

	go r.Trigger("alerts")
	<-started

	// Second tick lands while the first pass is still in flight
	r.Trigger("alerts")
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	r.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestRuntime_StopWaitsForInflightCycle(t *testing.T) {
	r := NewRuntime(monitoring.NewService())

	var done atomic.Bool
	entered := make(chan struct{})
	r.Every(time.Hour, "reports", func(ctx context.Context) error {
		close(entered)
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
		return nil
	})

	go r.Trigger("reports")
	<-entered
	r.Stop()
	assert.True(t, done.Load())
}
