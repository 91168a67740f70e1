package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"datalens/domain/core"
	"datalens/domain/model"
	"datalens/ports"

	"github.com/google/uuid"
)

// modelRepository stores one JSON file per trained model. Files are written
// through immediately; models are too valuable to sit in a dirty buffer.
type modelRepository struct {
	mu  sync.Mutex
	dir string
}

// NewModelRepository creates a model repository writing under dir
func NewModelRepository(dir string) (ports.ModelRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create models directory: %w", err)
	}
	return &modelRepository{dir: dir}, nil
}

func (r *modelRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// validModelID rejects ids that would escape the models directory
func validModelID(id string) bool {
	return id != "" && id == filepath.Base(id) && !strings.HasPrefix(id, ".")
}

// Create persists a trained model. When the id is already taken a short
// suffix is appended so both records survive; the caller sees the final id
// on the passed model.
func (r *modelRepository) Create(ctx context.Context, m *model.TrainedModel) error {
	if !validModelID(m.ID) {
		return core.NewValidationError("id", fmt.Sprintf("invalid model id %q", m.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path(m.ID)); err == nil {
		suffixed := fmt.Sprintf("%s-%s", m.ID, uuid.New().String()[:8])
		log.Printf("[ModelStore] Model id %s taken, storing as %s", m.ID, suffixed)
		m.ID = suffixed
	}

	return r.write(m)
}

func (r *modelRepository) write(m *model.TrainedModel) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model %s: %w", m.ID, err)
	}

	path := r.path(m.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

// GetByID loads one model file
func (r *modelRepository) GetByID(ctx context.Context, id string) (*model.TrainedModel, error) {
	if !validModelID(id) {
		return nil, core.NewNotFoundError("model", id)
	}

	data, err := os.ReadFile(r.path(id))
	if os.IsNotExist(err) {
		return nil, core.NewNotFoundError("model", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", id, err)
	}

	var m model.TrainedModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: model %s: %v", core.ErrCorruptedState, id, err)
	}
	return &m, nil
}

// List loads every stored model, newest first. Unreadable files are logged
// and skipped so one bad record does not hide the rest.
func (r *modelRepository) List(ctx context.Context) ([]*model.TrainedModel, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	var list []*model.TrainedModel
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		m, err := r.GetByID(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			log.Printf("[ModelStore] Skipping %s: %v", name, err)
			continue
		}
		list = append(list, m)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].TrainedAt.After(list[j].TrainedAt)
	})
	return list, nil
}

// Delete removes one model file
func (r *modelRepository) Delete(ctx context.Context, id string) error {
	if !validModelID(id) {
		return core.NewNotFoundError("model", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(id))
	if os.IsNotExist(err) {
		return core.NewNotFoundError("model", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete model %s: %w", id, err)
	}
	return nil
}

// ListByDataset returns the models trained on one dataset
func (r *modelRepository) ListByDataset(ctx context.Context, datasetID string) ([]*model.TrainedModel, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.TrainedModel
	for _, m := range all {
		if m.DatasetID == datasetID {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetByIDs loads the named models preserving the requested order
func (r *modelRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.TrainedModel, error) {
	models := make([]*model.TrainedModel, 0, len(ids))
	for _, id := range ids {
		m, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}
