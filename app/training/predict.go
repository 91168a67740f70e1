package training

import (
	"fmt"

	"datalens/domain/model"
)

// PredictValue evaluates a regression model on a single feature vector. The
// vector must line up with the model's featureNames.
func PredictValue(m model.TrainedModel, x []float64) (float64, error) {
	if err := checkInput(m, x); err != nil {
		return 0, err
	}

	switch params := m.Params.(type) {
	case model.LinearParams:
		return dotWithIntercept(params.Intercept, params.Coefficients, x), nil
	case model.PolynomialParams:
		expanded := expandPolynomial([][]float64{x}, params.Degree)[0]
		return dotWithIntercept(params.Intercept, params.Coefficients, expanded), nil
	case model.ForestParams:
		return forestMean(params.Trees, x)
	default:
		return 0, fmt.Errorf("model type %s does not predict numeric values", m.Type)
	}
}

// PredictClass evaluates a classifier on a single feature vector, returning
// the label and a confidence in [0,1].
func PredictClass(m model.TrainedModel, x []float64) (string, float64, error) {
	if err := checkInput(m, x); err != nil {
		return "", 0, err
	}

	switch params := m.Params.(type) {
	case model.LogisticParams:
		prob := sigmoid(dotWithIntercept(params.Bias, params.Weights, x))
		if prob >= 0.5 {
			return params.Classes[1], prob, nil
		}
		return params.Classes[0], 1 - prob, nil
	case model.ForestClassifierParams:
		return forestVote(params.Trees, x)
	default:
		return "", 0, fmt.Errorf("model type %s does not predict classes", m.Type)
	}
}

func checkInput(m model.TrainedModel, x []float64) error {
	if m.Params == nil {
		return fmt.Errorf("model %s carries no parameters", m.ID)
	}
	if len(x) != len(m.FeatureNames) {
		return fmt.Errorf("expected %d features, got %d", len(m.FeatureNames), len(x))
	}
	return nil
}

func dotWithIntercept(intercept float64, coefs, x []float64) float64 {
	sum := intercept
	for j, c := range coefs {
		if j < len(x) {
			sum += c * x[j]
		}
	}
	return sum
}

// walkTree follows split nodes down to a leaf
func walkTree(node *model.TreeNode, x []float64) *model.TreeNode {
	for node != nil && !node.IsLeaf {
		if x[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// forestMean averages the leaf values of every tree
func forestMean(trees []*model.TreeNode, x []float64) (float64, error) {
	sum := 0.0
	valid := 0
	for _, root := range trees {
		leaf := walkTree(root, x)
		if leaf == nil {
			continue
		}
		sum += leaf.Value
		valid++
	}
	if valid == 0 {
		return 0, fmt.Errorf("no valid trees in forest")
	}
	return sum / float64(valid), nil
}

// forestVote takes the majority class across trees; confidence is the share
// of trees that voted for it.
func forestVote(trees []*model.TreeNode, x []float64) (string, float64, error) {
	votes := make(map[string]int)
	valid := 0
	for _, root := range trees {
		leaf := walkTree(root, x)
		if leaf == nil {
			continue
		}
		votes[leaf.Class]++
		valid++
	}
	if valid == 0 {
		return "", 0, fmt.Errorf("no valid trees in forest")
	}

	best := ""
	bestCount := -1
	for class, count := range votes {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	return best, float64(bestCount) / float64(valid), nil
}
