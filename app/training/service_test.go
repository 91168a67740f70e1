package training

import (
	"context"
	"strconv"
	"testing"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/model"
	"datalens/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing
type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	if ds, ok := args.Get(0).(*dataset.Dataset); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDatasetRepository) List(ctx context.Context) ([]*dataset.Dataset, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*dataset.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatasetRepository) ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]*dataset.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error {
	args := m.Called(ctx, id, status, errorMsg)
	return args.Error(0)
}

type MockModelRepository struct {
	mock.Mock
	created []*model.TrainedModel
}

func (m *MockModelRepository) Create(ctx context.Context, tm *model.TrainedModel) error {
	args := m.Called(ctx, tm)
	m.created = append(m.created, tm)
	return args.Error(0)
}

func (m *MockModelRepository) GetByID(ctx context.Context, id string) (*model.TrainedModel, error) {
	args := m.Called(ctx, id)
	if tm, ok := args.Get(0).(*model.TrainedModel); ok {
		return tm, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModelRepository) List(ctx context.Context) ([]*model.TrainedModel, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.TrainedModel), args.Error(1)
}

func (m *MockModelRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockModelRepository) ListByDataset(ctx context.Context, datasetID string) ([]*model.TrainedModel, error) {
	args := m.Called(ctx, datasetID)
	return args.Get(0).([]*model.TrainedModel), args.Error(1)
}

func (m *MockModelRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.TrainedModel, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*model.TrainedModel), args.Error(1)
}

type stubLoader struct {
	tbl *tabular.Table
	err error
}

func (l *stubLoader) Load(ctx context.Context, path string) (*tabular.Table, error) {
	return l.tbl, l.err
}

func testLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func readyDataset(id string) *dataset.Dataset {
	return &dataset.Dataset{
		ID:     core.DatasetID(id),
		Name:   "test data",
		Path:   "/data/uploads/test.csv",
		Status: dataset.StatusReady,
	}
}

// linearTable builds n rows following y = 2x + 1 exactly.
func linearTable(n int) *tabular.Table {
	tbl := &tabular.Table{Headers: []string{"x", "y"}}
	for i := 1; i <= n; i++ {
		x := float64(i)
		tbl.Rows = append(tbl.Rows, tabular.RowData{
			"x": strconv.FormatFloat(x, 'f', -1, 64),
			"y": strconv.FormatFloat(2*x+1, 'f', -1, 64),
		})
	}
	return tbl
}

// labelTable builds two cleanly separated clusters labeled neg/pos.
func labelTable() *tabular.Table {
	tbl := &tabular.Table{Headers: []string{"x", "label"}}
	for i := 1; i <= 10; i++ {
		tbl.Rows = append(tbl.Rows, tabular.RowData{"x": strconv.Itoa(-i), "label": "neg"})
		tbl.Rows = append(tbl.Rows, tabular.RowData{"x": strconv.Itoa(i), "label": "pos"})
	}
	return tbl
}

func TestService_Train_LinearEndToEnd(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	mockModels := &MockModelRepository{}
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(readyDataset("ds-1"), nil)
	mockModels.On("Create", mock.Anything, mock.AnythingOfType("*model.TrainedModel")).Return(nil)

	svc := NewService(mockDatasets, mockModels, &stubLoader{tbl: linearTable(20)}, testLogger())

	m, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "linear",
		Features:  []string{"x"},
		Target:    "y",
		Seed:      42,
	})

	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.TypeLinear, m.Type)
	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "Linear Regression - y", m.Name, "default name comes from the algorithm label")
	assert.Equal(t, []string{"x"}, m.FeatureNames)
	assert.Equal(t, "y", m.TargetName)
	assert.Equal(t, "ds-1", m.DatasetID)

	// Exact linear data evaluates near-perfectly on the held-out rows
	assert.Greater(t, m.Metrics.R2, 0.99)
	assert.Less(t, m.Metrics.RMSE, 0.01)

	assert.Len(t, mockModels.created, 1, "model should be persisted")
}

func TestService_Train_ClassifierEndToEnd(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	mockModels := &MockModelRepository{}
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(readyDataset("ds-1"), nil)
	mockModels.On("Create", mock.Anything, mock.AnythingOfType("*model.TrainedModel")).Return(nil)

	svc := NewService(mockDatasets, mockModels, &stubLoader{tbl: labelTable()}, testLogger())

	m, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "logistic_regression",
		Features:  []string{"x"},
		Target:    "label",
		Seed:      7,
	})

	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, model.TypeLogistic, m.Type)
	assert.Equal(t, "Logistic Regression - label", m.Name)

	params, ok := m.Params.(model.LogisticParams)
	assert.True(t, ok, "params should be logistic")
	assert.Equal(t, []string{"neg", "pos"}, params.Classes)

	// The stored model should classify both clusters through the service
	mockModels.On("GetByID", mock.Anything, m.ID).Return(m, nil)

	res, err := svc.Predict(context.Background(), m.ID, map[string]float64{"x": -7})
	assert.NoError(t, err)
	assert.Equal(t, "neg", res.Class)
	assert.NotNil(t, res.Confidence)

	res, err = svc.Predict(context.Background(), m.ID, map[string]float64{"x": 7})
	assert.NoError(t, err)
	assert.Equal(t, "pos", res.Class)
}

func TestService_Train_UnknownType(t *testing.T) {
	svc := NewService(&MockDatasetRepository{}, &MockModelRepository{}, &stubLoader{}, testLogger())

	_, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "neural_net",
		Features:  []string{"x"},
		Target:    "y",
	})

	assert.ErrorIs(t, err, core.ErrUnknownModelType)
}

// TestService_Train_DetectorPicksType leaves Type empty and lets the task
// detector choose: numeric targets train a linear model, label targets a
// logistic one.
func TestService_Train_DetectorPicksType(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	mockModels := &MockModelRepository{}
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(readyDataset("ds-1"), nil)
	mockModels.On("Create", mock.Anything, mock.AnythingOfType("*model.TrainedModel")).Return(nil)

	// 25 distinct integral targets exceed the class-cardinality bound, so
	// the detector reads the column as a regression target.
	svc := NewService(mockDatasets, mockModels, &stubLoader{tbl: linearTable(25)}, testLogger())
	m, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Features:  []string{"x"},
		Target:    "y",
		Seed:      42,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.TypeLinear, m.Type)

	svc = NewService(mockDatasets, mockModels, &stubLoader{tbl: labelTable()}, testLogger())
	m, err = svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Features:  []string{"x"},
		Target:    "label",
		Seed:      42,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.TypeLogistic, m.Type)
}

func TestService_Train_DatasetNotReady(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	ds := readyDataset("ds-1")
	ds.Status = dataset.StatusProcessing
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(ds, nil)

	svc := NewService(mockDatasets, &MockModelRepository{}, &stubLoader{tbl: linearTable(20)}, testLogger())

	_, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "linear",
		Features:  []string{"x"},
		Target:    "y",
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestService_Train_InsufficientRows(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(readyDataset("ds-1"), nil)

	svc := NewService(mockDatasets, &MockModelRepository{}, &stubLoader{tbl: linearTable(5)}, testLogger())

	_, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "linear",
		Features:  []string{"x"},
		Target:    "y",
	})

	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestService_Train_MissingColumn(t *testing.T) {
	mockDatasets := &MockDatasetRepository{}
	mockDatasets.On("GetByID", mock.Anything, core.DatasetID("ds-1")).Return(readyDataset("ds-1"), nil)

	svc := NewService(mockDatasets, &MockModelRepository{}, &stubLoader{tbl: linearTable(20)}, testLogger())

	_, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1",
		Type:      "linear",
		Features:  []string{"nope"},
		Target:    "y",
	})

	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestService_Train_RequestValidation(t *testing.T) {
	svc := NewService(&MockDatasetRepository{}, &MockModelRepository{}, &stubLoader{}, testLogger())

	_, err := svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1", Type: "linear", Target: "y",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput, "empty features should be rejected")

	_, err = svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1", Type: "linear", Features: []string{"x"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput, "empty target should be rejected")

	_, err = svc.Train(context.Background(), TrainRequest{
		DatasetID: "ds-1", Type: "linear", Features: []string{"x"}, Target: "y", TestSize: 1.2,
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput, "out-of-range test size should be rejected")
}

func TestService_Predict_Regression(t *testing.T) {
	mockModels := &MockModelRepository{}
	stored := &model.TrainedModel{
		ID:           "m-1",
		Type:         model.TypeLinear,
		FeatureNames: []string{"x1", "x2"},
		Params:       model.LinearParams{Intercept: 1, Coefficients: []float64{2, 3}},
	}
	mockModels.On("GetByID", mock.Anything, "m-1").Return(stored, nil)

	svc := NewService(&MockDatasetRepository{}, mockModels, &stubLoader{}, testLogger())

	res, err := svc.Predict(context.Background(), "m-1", map[string]float64{"x1": 2, "x2": 1})
	assert.NoError(t, err)
	assert.NotNil(t, res.Value)
	assert.InDelta(t, 8, *res.Value, 1e-9)
	assert.Empty(t, res.Class)
}

func TestService_Predict_MissingFeature(t *testing.T) {
	mockModels := &MockModelRepository{}
	stored := &model.TrainedModel{
		ID:           "m-1",
		Type:         model.TypeLinear,
		FeatureNames: []string{"x1", "x2"},
		Params:       model.LinearParams{Intercept: 0, Coefficients: []float64{1, 1}},
	}
	mockModels.On("GetByID", mock.Anything, "m-1").Return(stored, nil)

	svc := NewService(&MockDatasetRepository{}, mockModels, &stubLoader{}, testLogger())

	_, err := svc.Predict(context.Background(), "m-1", map[string]float64{"x1": 2})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
