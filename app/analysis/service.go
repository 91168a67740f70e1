// Package analysis implements the dataset analysis tools exposed to the web
// API and to the chat tool loop: exploratory statistics, correlation,
// forecasting, and column inspection.
package analysis

import (
	"context"
	"fmt"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/ports"
)

// TableLoader loads parsed tabular data from a stored dataset file
type TableLoader interface {
	Load(ctx context.Context, path string) (*tabular.Table, error)
}

// Service answers analysis queries against stored datasets
type Service struct {
	datasets ports.DatasetRepository
	loader   TableLoader
	logger   *internal.Logger
}

// NewService creates an analysis service
func NewService(datasets ports.DatasetRepository, loader TableLoader, logger *internal.Logger) *Service {
	return &Service{
		datasets: datasets,
		loader:   loader,
		logger:   logger.WithComponent("Analysis"),
	}
}

// loadReady fetches the dataset record and its parsed table, rejecting
// datasets that are still processing or failed ingestion.
func (s *Service) loadReady(ctx context.Context, id string) (*dataset.Dataset, *tabular.Table, error) {
	ds, err := s.datasets.GetByID(ctx, core.DatasetID(id))
	if err != nil {
		return nil, nil, err
	}
	if ds.Status != dataset.StatusReady {
		return nil, nil, core.NewValidationError("dataset", fmt.Sprintf("dataset %s is not ready (status %s)", ds.ID, ds.Status))
	}
	tbl, err := s.loader.Load(ctx, ds.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dataset %s: %w", ds.ID, err)
	}
	return ds, tbl, nil
}
