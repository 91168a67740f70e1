package training

import (
	"fmt"
	"math"

	"datalens/domain/model"
)

// Evaluate computes the regression metric set over actual/predicted pairs.
// R² falls back to 0 when the actuals have no variance (SS_tot = 0). MAPE is
// left undefined when any actual value is exactly zero, since the percentage
// error has no meaning there.
func Evaluate(actual, predicted []float64) (model.Metrics, error) {
	if len(actual) != len(predicted) {
		return model.Metrics{}, fmt.Errorf("actual and predicted must have same length, got %d and %d", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return model.Metrics{}, fmt.Errorf("empty evaluation set")
	}

	n := float64(len(actual))

	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= n

	sumAbsErr := 0.0
	sumSqErr := 0.0
	sumSqTot := 0.0
	sumAbsPct := 0.0
	mapeDefined := true

	for i := range actual {
		diff := actual[i] - predicted[i]
		sumAbsErr += math.Abs(diff)
		sumSqErr += diff * diff
		sumSqTot += (actual[i] - mean) * (actual[i] - mean)

		if actual[i] == 0 {
			mapeDefined = false
		} else if mapeDefined {
			sumAbsPct += math.Abs(diff) / math.Abs(actual[i]) * 100
		}
	}

	m := model.Metrics{
		MAE:  sumAbsErr / n,
		MSE:  sumSqErr / n,
		RMSE: math.Sqrt(sumSqErr / n),
	}

	if sumSqTot > 0 {
		m.R2 = 1 - sumSqErr/sumSqTot
	}

	if mapeDefined {
		mape := sumAbsPct / n
		m.MAPE = &mape
	}

	return m, nil
}

// encodeLabels maps class labels onto 0..k-1 using the class list order, so
// classifier predictions can flow through the numeric metric formulas.
func encodeLabels(labels []string, classes []string) []float64 {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded := make([]float64, len(labels))
	for i, l := range labels {
		encoded[i] = float64(index[l])
	}
	return encoded
}
