package training

import (
	"fmt"
	"math"

	"datalens/domain/model"
)

// LogisticConfig holds gradient descent hyperparameters
type LogisticConfig struct {
	LearningRate float64
	Epochs       int
}

func (c LogisticConfig) withDefaults() LogisticConfig {
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	if c.Epochs <= 0 {
		c.Epochs = 1000
	}
	return c
}

// TrainLogistic fits a binary logistic regression with batch gradient
// descent. Features are standardized internally for stable convergence and
// the scaling is folded back into the stored weights, so prediction works on
// raw inputs. Exactly two classes are required; the lexicographically first
// class encodes as 0.
func TrainLogistic(X [][]float64, labels []string, cfg LogisticConfig) (model.LogisticParams, error) {
	if err := checkTrainingData(X, len(labels)); err != nil {
		return model.LogisticParams{}, err
	}
	classes := uniqueClasses(labels)
	if len(classes) != 2 {
		return model.LogisticParams{}, fmt.Errorf("logistic regression requires exactly 2 classes, got %d", len(classes))
	}
	cfg = cfg.withDefaults()

	n := len(X)
	p := len(X[0])

	y := make([]float64, n)
	for i, l := range labels {
		if l == classes[1] {
			y[i] = 1
		}
	}

	means, stds := columnStats(X)
	scaled := make([][]float64, n)
	for i, row := range X {
		s := make([]float64, p)
		for j, v := range row {
			s[j] = (v - means[j]) / stds[j]
		}
		scaled[i] = s
	}

	weights := make([]float64, p)
	bias := 0.0

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		gradW := make([]float64, p)
		gradB := 0.0
		for i, row := range scaled {
			z := bias
			for j, v := range row {
				z += weights[j] * v
			}
			err := sigmoid(z) - y[i]
			for j, v := range row {
				gradW[j] += err * v
			}
			gradB += err
		}
		for j := range weights {
			weights[j] -= cfg.LearningRate * gradW[j] / float64(n)
		}
		bias -= cfg.LearningRate * gradB / float64(n)
	}

	// Fold the standardization back so stored weights apply to raw features.
	rawWeights := make([]float64, p)
	rawBias := bias
	for j := range weights {
		rawWeights[j] = weights[j] / stds[j]
		rawBias -= weights[j] * means[j] / stds[j]
	}

	return model.LogisticParams{Weights: rawWeights, Bias: rawBias, Classes: classes}, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// columnStats returns per-column mean and standard deviation; a constant
// column gets std 1 to avoid dividing by zero.
func columnStats(X [][]float64) (means, stds []float64) {
	n := float64(len(X))
	p := len(X[0])
	means = make([]float64, p)
	stds = make([]float64, p)

	for _, row := range X {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			diff := v - means[j]
			stds[j] += diff * diff
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}
