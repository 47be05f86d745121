// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service exposes the hub's operational counters
type Service struct {
	registry *prometheus.Registry

	ReadingsIngested *prometheus.CounterVec
	IngestRejected   *prometheus.CounterVec
	AlertsSent       prometheus.Counter
	AlertsFailed     prometheus.Counter
	ReportsSent      prometheus.Counter
	ReportsFailed    prometheus.Counter
	CycleFailures    *prometheus.CounterVec
}

// NewService creates the metric set on a private registry
func NewService() *Service {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Service{
		registry: registry,
		ReadingsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beeguard_readings_ingested_total",
			Help: "Readings accepted and written to the time-series store",
		}, []string{"transport"}),
		IngestRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beeguard_ingest_rejected_total",
			Help: "Inbound payloads rejected, by error type",
		}, []string{"type"}),
		AlertsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "beeguard_alerts_sent_total",
			Help: "Grouped hornet alert notifications dispatched",
		}),
		AlertsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "beeguard_alerts_failed_total",
			Help: "Grouped alert notifications that failed to send",
		}),
		ReportsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "beeguard_reports_sent_total",
			Help: "Periodic reports dispatched",
		}),
		ReportsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "beeguard_reports_failed_total",
			Help: "Periodic reports that failed to build or send",
		}),
		CycleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "beeguard_cycle_failures_total",
			Help: "Scheduler cycles that ended with an error or panic",
		}, []string{"cycle"}),
	}
}

// Handler serves the registry for Prometheus scrapes
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
