package ports

import (
	"context"

	"datalens/domain/model"
)

// ModelRepository defines the interface for trained model storage operations
type ModelRepository interface {
	// Core CRUD operations
	Create(ctx context.Context, m *model.TrainedModel) error
	GetByID(ctx context.Context, id string) (*model.TrainedModel, error)
	List(ctx context.Context) ([]*model.TrainedModel, error)
	Delete(ctx context.Context, id string) error

	// Special queries
	ListByDataset(ctx context.Context, datasetID string) ([]*model.TrainedModel, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.TrainedModel, error)
}
