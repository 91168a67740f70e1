package analysis

import (
	"context"
	"fmt"

	"datalens/domain/core"

	"gonum.org/v1/gonum/stat"
)

// ForecastMethod selects the extrapolation strategy
type ForecastMethod string

const (
	MethodAuto          ForecastMethod = "auto"
	MethodLinear        ForecastMethod = "linear"
	MethodMovingAverage ForecastMethod = "moving_average"
)

const (
	minForecastPoints   = 10
	defaultPeriods      = 30
	movingAverageWindow = 5
	methodUsedLinear    = "linear_trend"
	methodUsedMovingAvg = "moving_average"
)

// ForecastPoint is one extrapolated value; Index counts from 1 past the
// observed series.
type ForecastPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// ForecastResult reports the extrapolation and what produced it
type ForecastResult struct {
	TargetColumn string          `json:"target_column"`
	Method       ForecastMethod  `json:"method"`
	MethodUsed   string          `json:"method_used"`
	Periods      int             `json:"periods"`
	DataPoints   int             `json:"data_points"`
	Values       []ForecastPoint `json:"forecast_values"`
}

// Forecast extrapolates a numeric column beyond the observed rows. Rows with
// missing or unparseable target cells are dropped first.
func (s *Service) Forecast(ctx context.Context, datasetID, target string, periods int, method ForecastMethod) (*ForecastResult, error) {
	_, tbl, err := s.loadReady(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if !tbl.HasColumn(target) {
		return nil, core.NewColumnError(target, core.ErrColumnNotFound)
	}

	values := tbl.NumericColumn(target)
	if len(values) < minForecastPoints {
		return nil, fmt.Errorf("%w: forecasting needs at least %d data points, got %d", core.ErrInsufficientData, minForecastPoints, len(values))
	}

	if periods <= 0 {
		periods = defaultPeriods
	}

	result := &ForecastResult{
		TargetColumn: target,
		Method:       method,
		Periods:      periods,
		DataPoints:   len(values),
	}

	switch method {
	case "", MethodAuto, MethodLinear:
		result.Values = linearTrend(values, periods)
		result.MethodUsed = methodUsedLinear
		if method == "" {
			result.Method = MethodAuto
		}
	case MethodMovingAverage:
		result.Values = movingAverage(values, periods)
		result.MethodUsed = methodUsedMovingAvg
	default:
		return nil, core.NewValidationError("method", fmt.Sprintf("unknown forecast method %q", method))
	}

	s.logger.Debug("Forecast %s over %s: %d points out", result.MethodUsed, target, periods)
	return result, nil
}

// linearTrend fits y = alpha + beta*t over the observation index and
// extrapolates it forward
func linearTrend(values []float64, periods int) []ForecastPoint {
	t := make([]float64, len(values))
	for i := range t {
		t[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(t, values, nil, false)

	points := make([]ForecastPoint, periods)
	for p := 1; p <= periods; p++ {
		next := float64(len(values) - 1 + p)
		points[p-1] = ForecastPoint{Index: p, Value: alpha + beta*next}
	}
	return points
}

// movingAverage extends the series one step at a time with the mean of the
// trailing window, feeding each forecast back into the window
func movingAverage(values []float64, periods int) []ForecastPoint {
	series := append([]float64(nil), values...)
	points := make([]ForecastPoint, periods)

	for p := 1; p <= periods; p++ {
		start := len(series) - movingAverageWindow
		if start < 0 {
			start = 0
		}
		sum := 0.0
		for _, v := range series[start:] {
			sum += v
		}
		next := sum / float64(len(series)-start)
		series = append(series, next)
		points[p-1] = ForecastPoint{Index: p, Value: next}
	}
	return points
}
