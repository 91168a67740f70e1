package jsonstore

import (
	"context"
	"sort"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	store *Store
}

// NewDatasetRepository creates a dataset repository backed by the store
func NewDatasetRepository(store *Store) ports.DatasetRepository {
	return &datasetRepository{store: store}
}

// cloneDataset copies a record so callers never alias store-internal state
func cloneDataset(ds *dataset.Dataset) *dataset.Dataset {
	cp := *ds
	cp.Columns = append([]dataset.Column(nil), ds.Columns...)
	return &cp
}

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	id := ds.ID.String()
	if _, exists := r.store.state.Datasets[id]; exists {
		return core.ErrDuplicateID
	}

	r.store.state.Datasets[id] = cloneDataset(ds)
	r.store.markDirty()
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ds, exists := r.store.state.Datasets[id.String()]
	if !exists {
		return nil, core.NewNotFoundError("dataset", id.String())
	}
	return cloneDataset(ds), nil
}

// List returns every dataset record, newest upload first
func (r *datasetRepository) List(ctx context.Context) ([]*dataset.Dataset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	list := make([]*dataset.Dataset, 0, len(r.store.state.Datasets))
	for _, ds := range r.store.state.Datasets {
		list = append(list, cloneDataset(ds))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list, nil
}

// Update replaces an existing dataset record
func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	id := ds.ID.String()
	if _, exists := r.store.state.Datasets[id]; !exists {
		return core.NewNotFoundError("dataset", id)
	}

	r.store.state.Datasets[id] = cloneDataset(ds)
	r.store.markDirty()
	return nil
}

// Delete removes a dataset record
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	if _, exists := r.store.state.Datasets[id.String()]; !exists {
		return core.NewNotFoundError("dataset", id.String())
	}

	delete(r.store.state.Datasets, id.String())
	r.store.markDirty()
	return nil
}

// ListByStatus returns the datasets currently in the given status
func (r *datasetRepository) ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*dataset.Dataset
	for _, ds := range all {
		if ds.Status == status {
			out = append(out, ds)
		}
	}
	return out, nil
}

// UpdateStatus transitions a dataset's status and error message
func (r *datasetRepository) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.guard(); err != nil {
		return err
	}

	ds, exists := r.store.state.Datasets[id.String()]
	if !exists {
		return core.NewNotFoundError("dataset", id.String())
	}

	ds.Status = status
	ds.Error = errorMsg
	r.store.markDirty()
	return nil
}
