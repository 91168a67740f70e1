// Package datasets owns the upload lifecycle: storing the raw file, parsing
// it, profiling its columns, and serving the resulting records.
package datasets

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/ports"
)

// FileStorage persists uploaded files and hands back their stored path
type FileStorage interface {
	Store(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, path string) error
	Size(path string) (int64, error)
}

// TableLoader loads parsed tabular data from a stored dataset file
type TableLoader interface {
	Load(ctx context.Context, path string) (*tabular.Table, error)
}

const (
	defaultPreviewRows = 10
	maxPreviewRows     = 100
	profileSampleSize  = 3
)

// Service orchestrates dataset ingestion and serves stored records
type Service struct {
	datasets ports.DatasetRepository
	models   ports.ModelRepository
	storage  FileStorage
	loader   TableLoader
	logger   *internal.Logger
}

// NewService creates a dataset service
func NewService(datasets ports.DatasetRepository, models ports.ModelRepository, storage FileStorage, loader TableLoader, logger *internal.Logger) *Service {
	return &Service{
		datasets: datasets,
		models:   models,
		storage:  storage,
		loader:   loader,
		logger:   logger.WithComponent("Datasets"),
	}
}

// UploadRequest carries one incoming file
type UploadRequest struct {
	Filename string
	File     io.Reader
}

// Upload stores the file, parses it, and persists the profiled record. The
// record passes through processing to ready within the call; parse failures
// leave a failed record behind so the reason stays visible.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*dataset.Dataset, error) {
	if err := validateFilename(req.Filename); err != nil {
		return nil, err
	}

	hashed := core.NewHashingReader(req.File)
	path, err := s.storage.Store(ctx, hashed, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	size, err := s.storage.Size(path)
	if err != nil {
		s.logger.Warn("Could not stat stored upload %s: %v", path, err)
	}

	ds := &dataset.Dataset{
		ID:         core.DatasetID(core.NewID()),
		Name:       baseName(req.Filename),
		Filename:   req.Filename,
		Path:       path,
		Size:       size,
		Checksum:   hashed.Sum(),
		Status:     dataset.StatusProcessing,
		UploadedAt: core.Now(),
	}
	if err := s.datasets.Create(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to create dataset record: %w", err)
	}

	tbl, err := s.loader.Load(ctx, path)
	if err != nil {
		s.fail(ctx, ds, err)
		return nil, fmt.Errorf("%w: failed to parse %s: %v", core.ErrInvalidInput, req.Filename, err)
	}

	ds.Rows = tbl.RowCount()
	ds.Columns = profileColumns(tbl)
	ds.Status = dataset.StatusReady
	if err := s.datasets.Update(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to finalize dataset record: %w", err)
	}

	s.logger.Info("Dataset %s ready: %s (%d rows, %d columns)", ds.ID, ds.Name, ds.Rows, len(ds.Columns))
	return ds, nil
}

// List returns every stored dataset record
func (s *Service) List(ctx context.Context) ([]*dataset.Dataset, error) {
	return s.datasets.List(ctx)
}

// Get returns one dataset record by id
func (s *Service) Get(ctx context.Context, id string) (*dataset.Dataset, error) {
	return s.datasets.GetByID(ctx, core.DatasetID(id))
}

// Delete removes the record, its stored file, and every model trained on it.
// A missing stored file is logged but does not block the delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	ds, err := s.datasets.GetByID(ctx, core.DatasetID(id))
	if err != nil {
		return err
	}

	trained, err := s.models.ListByDataset(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list models for dataset %s: %w", id, err)
	}
	for _, m := range trained {
		if err := s.models.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to delete model %s: %w", m.ID, err)
		}
	}

	if err := s.storage.Delete(ctx, ds.Path); err != nil {
		s.logger.Warn("Could not remove stored file %s: %v", ds.Path, err)
	}

	if err := s.datasets.Delete(ctx, core.DatasetID(id)); err != nil {
		return err
	}

	s.logger.Info("Dataset %s deleted along with %d models", id, len(trained))
	return nil
}

// PreviewResult is the head of a dataset
type PreviewResult struct {
	Headers   []string          `json:"headers"`
	Rows      []tabular.RowData `json:"rows"`
	TotalRows int               `json:"total_rows"`
}

// Preview returns the first rows of a ready dataset. Non-positive row counts
// fall back to the default and oversized requests are capped.
func (s *Service) Preview(ctx context.Context, id string, rows int) (*PreviewResult, error) {
	ds, err := s.datasets.GetByID(ctx, core.DatasetID(id))
	if err != nil {
		return nil, err
	}
	if ds.Status != dataset.StatusReady {
		return nil, core.NewValidationError("dataset", fmt.Sprintf("dataset %s is not ready (status %s)", ds.ID, ds.Status))
	}

	tbl, err := s.loader.Load(ctx, ds.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", ds.ID, err)
	}

	if rows <= 0 {
		rows = defaultPreviewRows
	}
	if rows > maxPreviewRows {
		rows = maxPreviewRows
	}
	if rows > len(tbl.Rows) {
		rows = len(tbl.Rows)
	}

	return &PreviewResult{
		Headers:   tbl.Headers,
		Rows:      tbl.Rows[:rows],
		TotalRows: tbl.RowCount(),
	}, nil
}

// fail marks the record failed with the cause; the record stays listed
func (s *Service) fail(ctx context.Context, ds *dataset.Dataset, cause error) {
	if err := s.datasets.UpdateStatus(ctx, ds.ID, dataset.StatusFailed, cause.Error()); err != nil {
		s.logger.Warn("Could not mark dataset %s failed: %v", ds.ID, err)
	}
}

func validateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return core.NewValidationError("file", "filename is required")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return nil
	default:
		return core.NewValidationError("file", fmt.Sprintf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(filename)))
	}
}

func baseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// profileColumns runs type inference and gathers per-column null, cardinality,
// and sample profiles for the stored record.
func profileColumns(tbl *tabular.Table) []dataset.Column {
	types := tabular.InferColumnTypes(tbl)
	columns := make([]dataset.Column, 0, len(tbl.Headers))

	for _, header := range tbl.Headers {
		unique := make(map[string]bool)
		nonNull := 0
		var sample []string

		for _, row := range tbl.Rows {
			cell := row[header]
			if cell == "" {
				continue
			}
			nonNull++
			unique[cell] = true
			if len(sample) < profileSampleSize {
				sample = append(sample, cell)
			}
		}

		columns = append(columns, dataset.Column{
			Name:    header,
			Type:    dataset.ColumnType(types[header]),
			NonNull: nonNull,
			Unique:  len(unique),
			Sample:  sample,
		})
	}
	return columns
}
