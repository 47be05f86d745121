// FilePath: internal/scheduler/runtime.go
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/roylee0704/gron"
	nuts "github.com/vaudience/go-nuts"
)

// Cycle is one synchronous scheduler pass
type Cycle func(ctx context.Context) error

type job struct {
	name    string
	cycle   Cycle
	running atomic.Bool
}

// Runtime drives the periodic evaluation cycles. Each cycle runs to
// completion without overlap: a tick that arrives while the previous pass
// is still running is skipped. Errors and panics inside a cycle are
// caught and logged so a crashing cycle never terminates the scheduler.
type Runtime struct {
	cron    *gron.Cron
	metrics *monitoring.Service
	jobs    map[string]*job
	wg      sync.WaitGroup
}

func NewRuntime(metrics *monitoring.Service) *Runtime {
	return &Runtime{
		cron:    gron.New(),
		metrics: metrics,
		jobs:    make(map[string]*job),
	}
}

// Every registers a named cycle to run at the given interval. Must be
// called before Start.
func (r *Runtime) Every(interval time.Duration, name string, cycle Cycle) {
	j := &job{name: name, cycle: cycle}
	r.jobs[name] = j
	r.cron.AddFunc(gron.Every(interval), func() {
		r.runCycle(j)
	})
}

// Start begins ticking all registered cycles
func (r *Runtime) Start() {
	nuts.L.Infof("[Scheduler] Starting %d cycle(s)", len(r.jobs))
	r.cron.Start()
}

// Stop halts scheduling and waits for any in-flight cycle to finish
func (r *Runtime) Stop() {
	r.cron.Stop()
	r.wg.Wait()
	nuts.L.Infof("[Scheduler] Stopped")
}

// Trigger runs the named cycle once, synchronously. Used by tests and
// operational tooling to step a cycle without waiting for its tick.
func (r *Runtime) Trigger(name string) {
	if j, ok := r.jobs[name]; ok {
		r.runCycle(j)
	}
}

func (r *Runtime) runCycle(j *job) {
	if !j.running.CompareAndSwap(false, true) {
		nuts.L.Warnf("[Scheduler] Skipping %s tick: previous pass still running", j.name)
		return
	}
	defer j.running.Store(false)

	r.wg.Add(1)
	defer r.wg.Done()

	defer func() {
		if rec := recover(); rec != nil {
			nuts.L.Errorf("[Scheduler] Panic in %s cycle: %v", j.name, rec)
			r.metrics.CycleFailures.WithLabelValues(j.name).Inc()
		}
	}()

	start := time.Now()
	if err := j.cycle(context.Background()); err != nil {
		nuts.L.Errorf("[Scheduler] %s cycle failed: %v", j.name, err)
		r.metrics.CycleFailures.WithLabelValues(j.name).Inc()
		return
	}
	nuts.L.Debugf("[Scheduler] %s cycle completed in %v", j.name, time.Since(start))
}
