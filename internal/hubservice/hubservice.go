package hubservice

import (
	"context"

	"github.com/beeguardai/hub/internal/errors"
	"github.com/beeguardai/hub/internal/ingest"
	"github.com/beeguardai/hub/internal/models"
	"github.com/beeguardai/hub/internal/monitoring"
	"github.com/beeguardai/hub/internal/repository"
)

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Directory repository.TenantDirectory
	Store     repository.TimeSeriesStore
	Resolver  *ingest.Resolver
	Metrics   *monitoring.Service
}

// New creates a new HubService instance
func New(
	directory repository.TenantDirectory,
	store repository.TimeSeriesStore,
	metrics *monitoring.Service,
) *HubService {
	return &HubService{
		Directory: directory,
		Store:     store,
		Resolver:  ingest.NewResolver(directory, store),
		Metrics:   metrics,
	}
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Directory == nil {
		return ErrMissingDependency("directory")
	}
	if s.Store == nil {
		return ErrMissingDependency("store")
	}
	if s.Metrics == nil {
		return ErrMissingDependency("metrics")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}

// IngestReading resolves and persists one inbound payload, keeping the
// ingest counters up to date. transport names the inbound path ("http",
// "mqtt") for the metrics label.
func (s *HubService) IngestReading(ctx context.Context, payload []byte, transport string) (*models.Reading, error) {
	reading, err := s.Resolver.IngestReading(ctx, payload)
	if err != nil {
		s.Metrics.IngestRejected.WithLabelValues(errorLabel(err)).Inc()
		return nil, err
	}
	s.Metrics.ReadingsIngested.WithLabelValues(transport).Inc()
	return reading, nil
}

func errorLabel(err error) string {
	if apiErr, ok := err.(*errors.APIError); ok {
		return string(apiErr.Type)
	}
	return string(errors.ErrorTypeInternal)
}
