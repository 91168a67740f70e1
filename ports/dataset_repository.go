package ports

import (
	"context"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

// DatasetRepository defines the interface for dataset storage operations
type DatasetRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	List(ctx context.Context) ([]*dataset.Dataset, error)
	Update(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.DatasetID) error

	// Special queries
	ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error)

	// Bulk operations
	UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error
}
