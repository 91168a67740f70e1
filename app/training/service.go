package training

import (
	"context"
	"fmt"
	"time"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/model"
	"datalens/internal"
	"datalens/ports"
)

// TableLoader loads parsed tabular data from a stored dataset file
type TableLoader interface {
	Load(ctx context.Context, path string) (*tabular.Table, error)
}

// Training defaults applied when the request leaves a knob unset
const (
	minTrainingSamples = 10
	defaultTestSize    = 0.2
	defaultPolyDegree  = 2
)

// Service trains models against stored datasets and runs predictions
type Service struct {
	datasets ports.DatasetRepository
	models   ports.ModelRepository
	loader   TableLoader
	logger   *internal.Logger
}

// NewService creates a training service
func NewService(datasets ports.DatasetRepository, models ports.ModelRepository, loader TableLoader, logger *internal.Logger) *Service {
	return &Service{
		datasets: datasets,
		models:   models,
		loader:   loader,
		logger:   logger.WithComponent("Training"),
	}
}

// TrainRequest describes a single model training run. An empty Type lets the
// task detector pick an algorithm from the target column.
type TrainRequest struct {
	DatasetID   string   `json:"dataset_id" binding:"required"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Features    []string `json:"features" binding:"required"`
	Target      string   `json:"target" binding:"required"`
	TestSize    float64  `json:"test_size"`
	Degree      int      `json:"degree"`
	NumTrees    int      `json:"num_trees"`
	MaxDepth    int      `json:"max_depth"`
	Seed        int64    `json:"seed"`
	Description string   `json:"description"`
}

// PredictResult is the outcome of running one input vector through a model.
// Regression models fill Value; classifiers fill Class and Confidence.
type PredictResult struct {
	ModelID    string             `json:"model_id"`
	Input      map[string]float64 `json:"input"`
	Value      *float64           `json:"value,omitempty"`
	Class      string             `json:"class,omitempty"`
	Confidence *float64           `json:"confidence,omitempty"`
}

// Train runs the full pipeline: load the dataset table, build the feature
// matrix, split, fit the requested algorithm, evaluate on the held-out rows,
// and persist the resulting model record at version 1.
func (s *Service) Train(ctx context.Context, req TrainRequest) (*model.TrainedModel, error) {
	modelType := model.Type(req.Type)
	if req.Type != "" && !modelType.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownModelType, req.Type)
	}
	if len(req.Features) == 0 {
		return nil, core.NewValidationError("features", "at least one feature is required")
	}
	if req.Target == "" {
		return nil, core.NewValidationError("target", "target column is required")
	}
	if req.TestSize < 0 || req.TestSize >= 1 {
		return nil, core.NewValidationError("test_size", "must be in (0, 1)")
	}
	if req.TestSize == 0 {
		req.TestSize = defaultTestSize
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	ds, err := s.datasets.GetByID(ctx, core.DatasetID(req.DatasetID))
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

	if modelType == "" {
		if !tbl.HasColumn(req.Target) {
			return nil, core.NewColumnError(req.Target, core.ErrColumnNotFound)
		}
		if DetectTask(tbl.Column(req.Target)) == TaskClassification {
			modelType = model.TypeLogistic
		} else {
			modelType = model.TypeLinear
		}
		s.logger.Info("No model type given, detector picked %s for target %s", modelType, req.Target)
	}

	numericTarget := !modelType.IsClassifier()
	x, yNum, yRaw, err := featureMatrix(tbl, req.Features, req.Target, numericTarget)
	if err != nil {
		return nil, err
	}
	if len(x) < minTrainingSamples {
		return nil, fmt.Errorf("%w: need at least %d usable rows, got %d", core.ErrInsufficientData, minTrainingSamples, len(x))
	}

	trainIdx, testIdx, err := SplitIndices(len(x), req.TestSize, req.Seed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Training %s on dataset %s (%d train / %d test rows)", modelType, ds.ID, len(trainIdx), len(testIdx))

	m := &model.TrainedModel{
		ID:           core.NewID().String(),
		Name:         req.Name,
		Type:         modelType,
		FeatureNames: append([]string(nil), req.Features...),
		TargetName:   req.Target,
		TrainedAt:    core.Now(),
		DatasetID:    req.DatasetID,
		Version:      1,
		Description:  req.Description,
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("%s - %s", modelType.Label(), req.Target)
	}

	if modelType.IsClassifier() {
		err = s.fitClassifier(ctx, m, req, x, yRaw, trainIdx, testIdx)
	} else {
		err = s.fitRegressor(ctx, m, req, x, yNum, trainIdx, testIdx)
	}
	if err != nil {
		return nil, err
	}

	if err := s.models.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}

	s.logger.Info("Model %s trained (rmse=%.4f r2=%.4f)", m.ID, m.Metrics.RMSE, m.Metrics.R2)
	return m, nil
}

// fitRegressor fits a numeric-target algorithm and evaluates on the test rows
func (s *Service) fitRegressor(ctx context.Context, m *model.TrainedModel, req TrainRequest, x [][]float64, y []float64, trainIdx, testIdx []int) error {
	trainX, trainY := selectRows(x, y, trainIdx)
	testX, testY := selectRows(x, y, testIdx)

	var (
		params model.Params
		err    error
	)
	switch m.Type {
	case model.TypeLinear:
		params, err = TrainLinear(trainX, trainY)
	case model.TypePolynomial:
		degree := req.Degree
		if degree <= 0 {
			degree = defaultPolyDegree
		}
		params, err = TrainPolynomial(trainX, trainY, degree)
	case model.TypeRandomForest:
		params, err = TrainForest(ctx, trainX, trainY, ForestConfig{
			NumTrees: req.NumTrees,
			MaxDepth: req.MaxDepth,
			Seed:     req.Seed,
		})
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownModelType, m.Type)
	}
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	m.Params = params

	predicted := make([]float64, len(testX))
	for i, row := range testX {
		val, err := PredictValue(*m, row)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		predicted[i] = val
	}

	metrics, err := Evaluate(testY, predicted)
	if err != nil {
		return err
	}
	m.Metrics = metrics
	return nil
}

// fitClassifier fits a label-target algorithm and evaluates on the test rows.
// Metrics come from the numeric formulas applied to label-encoded values.
func (s *Service) fitClassifier(ctx context.Context, m *model.TrainedModel, req TrainRequest, x [][]float64, labels []string, trainIdx, testIdx []int) error {
	trainX, trainLabels := selectLabelRows(x, labels, trainIdx)
	testX, testLabels := selectLabelRows(x, labels, testIdx)

	var classes []string
	switch m.Type {
	case model.TypeLogistic:
		params, err := TrainLogistic(trainX, trainLabels, LogisticConfig{})
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		m.Params = params
		classes = params.Classes
	case model.TypeForestClassifier:
		params, err := TrainForestClassifier(ctx, trainX, trainLabels, ForestConfig{
			NumTrees: req.NumTrees,
			MaxDepth: req.MaxDepth,
			Seed:     req.Seed,
		})
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}
		m.Params = params
		classes = params.Classes
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownModelType, m.Type)
	}

	predicted := make([]string, len(testX))
	for i, row := range testX {
		class, _, err := PredictClass(*m, row)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		predicted[i] = class
	}

	metrics, err := Evaluate(encodeLabels(testLabels, classes), encodeLabels(predicted, classes))
	if err != nil {
		return err
	}
	m.Metrics = metrics
	return nil
}

// Predict runs a stored model against one input vector. Features are taken
// from the input map in the model's recorded feature order.
func (s *Service) Predict(ctx context.Context, modelID string, input map[string]float64) (*PredictResult, error) {
	m, err := s.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	x := make([]float64, len(m.FeatureNames))
	for i, name := range m.FeatureNames {
		val, ok := input[name]
		if !ok {
			return nil, core.NewValidationError("input", fmt.Sprintf("missing value for feature %s", name))
		}
		x[i] = val
	}

	result := &PredictResult{ModelID: m.ID, Input: input}
	if m.Type.IsClassifier() {
		class, confidence, err := PredictClass(*m, x)
		if err != nil {
			return nil, err
		}
		result.Class = class
		result.Confidence = &confidence
	} else {
		value, err := PredictValue(*m, x)
		if err != nil {
			return nil, err
		}
		result.Value = &value
	}

	s.logger.Debug("Prediction served for model %s", m.ID)
	return result, nil
}
