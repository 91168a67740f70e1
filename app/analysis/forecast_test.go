package analysis

import (
	"context"
	"strconv"
	"testing"

	"datalens/adapters/tabular"
	"datalens/domain/core"

	"github.com/stretchr/testify/assert"
)

func seriesTable(values []float64) *tabular.Table {
	tbl := &tabular.Table{Headers: []string{"sales"}}
	for _, v := range values {
		tbl.Rows = append(tbl.Rows, tabular.RowData{"sales": strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return tbl
}

// TestLinearTrend_ExactLine verifies extrapolation of y = 2t + 2.
func TestLinearTrend_ExactLine(t *testing.T) {
	values := []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}
	points := linearTrend(values, 2)

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	assert.Equal(t, 1, points[0].Index)
	assert.InDelta(t, 22, points[0].Value, 1e-9)
	assert.Equal(t, 2, points[1].Index)
	assert.InDelta(t, 24, points[1].Value, 1e-9)
}

// TestMovingAverage_FeedsBack verifies forecasts re-enter the window.
func TestMovingAverage_FeedsBack(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	points := movingAverage(values, 3)

	assert.InDelta(t, 8, points[0].Value, 1e-9)
	assert.InDelta(t, 8.4, points[1].Value, 1e-9)
	assert.InDelta(t, 8.68, points[2].Value, 1e-9)
}

// TestForecast_LinearDefault verifies the service path with an auto method.
func TestForecast_LinearDefault(t *testing.T) {
	svc := testService(seriesTable([]float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}))

	result, err := svc.Forecast(context.Background(), "ds-1", "sales", 2, "")
	assert.NoError(t, err)
	assert.Equal(t, "sales", result.TargetColumn)
	assert.Equal(t, MethodAuto, result.Method)
	assert.Equal(t, "linear_trend", result.MethodUsed)
	assert.Equal(t, 10, result.DataPoints)
	assert.Equal(t, 2, result.Periods)
	assert.InDelta(t, 22, result.Values[0].Value, 1e-9)
}

// TestForecast_MovingAverage verifies the alternate method label.
func TestForecast_MovingAverage(t *testing.T) {
	svc := testService(seriesTable([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))

	result, err := svc.Forecast(context.Background(), "ds-1", "sales", 1, MethodMovingAverage)
	assert.NoError(t, err)
	assert.Equal(t, "moving_average", result.MethodUsed)
	assert.InDelta(t, 8, result.Values[0].Value, 1e-9)
}

// TestForecast_DefaultPeriods verifies zero periods fall back to 30.
func TestForecast_DefaultPeriods(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i)
	}
	svc := testService(seriesTable(values))

	result, err := svc.Forecast(context.Background(), "ds-1", "sales", 0, MethodLinear)
	assert.NoError(t, err)
	assert.Equal(t, 30, result.Periods)
	assert.Len(t, result.Values, 30)
}

// TestForecast_TooFewPoints verifies the minimum observation guard.
func TestForecast_TooFewPoints(t *testing.T) {
	svc := testService(seriesTable([]float64{1, 2, 3, 4, 5}))

	_, err := svc.Forecast(context.Background(), "ds-1", "sales", 10, MethodLinear)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

// TestForecast_SkipsBlankCells verifies dropped rows count against the minimum.
func TestForecast_SkipsBlankCells(t *testing.T) {
	tbl := seriesTable([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	tbl.Rows = append(tbl.Rows, tabular.RowData{"sales": ""})
	svc := testService(tbl)

	_, err := svc.Forecast(context.Background(), "ds-1", "sales", 5, MethodLinear)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

// TestForecast_UnknownColumn verifies missing targets surface as not found.
func TestForecast_UnknownColumn(t *testing.T) {
	svc := testService(seriesTable([]float64{1, 2, 3}))

	_, err := svc.Forecast(context.Background(), "ds-1", "revenue", 5, MethodLinear)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

// TestForecast_UnknownMethod verifies the method validation error.
func TestForecast_UnknownMethod(t *testing.T) {
	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i)
	}
	svc := testService(seriesTable(values))

	_, err := svc.Forecast(context.Background(), "ds-1", "sales", 5, "prophet")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
