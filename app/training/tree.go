package training

import (
	"sort"

	"datalens/domain/model"
)

// treeConfig holds the stopping criteria shared by every tree
type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

// buildRegressionTree grows a CART regressor over the rows named by indices,
// considering only the given candidate features at each split. Recursion
// stops on depth, sample count, or when the node variance is effectively
// zero; leaves predict the node mean.
func buildRegressionTree(X [][]float64, y []float64, indices []int, features []int, cfg treeConfig, depth int) *model.TreeNode {
	node := &model.TreeNode{Samples: len(indices)}

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = y[idx]
	}
	mean := meanOf(values)
	node.Value = mean

	if depth >= cfg.maxDepth || len(indices) < cfg.minSamplesSplit || varianceOf(values, mean) < 1e-7 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := bestRegressionSplit(X, y, indices, features)
	if gain <= 0 {
		node.IsLeaf = true
		return node
	}

	left, right := partition(X, indices, feature, threshold)
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.FeatureIndex = feature
	node.Threshold = threshold
	node.Left = buildRegressionTree(X, y, left, features, cfg, depth+1)
	node.Right = buildRegressionTree(X, y, right, features, cfg, depth+1)
	return node
}

// buildClassificationTree grows a CART classifier splitting on Gini impurity;
// leaves predict the majority class of their samples.
func buildClassificationTree(X [][]float64, labels []string, indices []int, features []int, cfg treeConfig, depth int) *model.TreeNode {
	node := &model.TreeNode{Samples: len(indices)}

	current := make([]string, len(indices))
	for i, idx := range indices {
		current[i] = labels[idx]
	}
	counts := countClasses(current)
	node.Class = majorityClass(counts)

	if depth >= cfg.maxDepth || len(indices) < cfg.minSamplesSplit || len(counts) == 1 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := bestClassificationSplit(X, labels, indices, features)
	if gain <= 0 {
		node.IsLeaf = true
		return node
	}

	left, right := partition(X, indices, feature, threshold)
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.FeatureIndex = feature
	node.Threshold = threshold
	node.Left = buildClassificationTree(X, labels, left, features, cfg, depth+1)
	node.Right = buildClassificationTree(X, labels, right, features, cfg, depth+1)
	return node
}

// bestRegressionSplit scans candidate features and midpoint thresholds for
// the split with the largest weighted variance reduction.
func bestRegressionSplit(X [][]float64, y []float64, indices []int, features []int) (int, float64, float64) {
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	current := make([]float64, len(indices))
	for i, idx := range indices {
		current[i] = y[idx]
	}
	parentVariance := varianceOf(current, meanOf(current))

	for _, feature := range features {
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = X[idx][feature]
		}

		for _, threshold := range midpointThresholds(values) {
			left, right := partition(X, indices, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			leftVals := make([]float64, len(left))
			for i, idx := range left {
				leftVals[i] = y[idx]
			}
			rightVals := make([]float64, len(right))
			for i, idx := range right {
				rightVals[i] = y[idx]
			}

			n := float64(len(indices))
			weighted := float64(len(left))/n*varianceOf(leftVals, meanOf(leftVals)) +
				float64(len(right))/n*varianceOf(rightVals, meanOf(rightVals))

			if gain := parentVariance - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// bestClassificationSplit maximizes Gini impurity reduction
func bestClassificationSplit(X [][]float64, labels []string, indices []int, features []int) (int, float64, float64) {
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	current := make([]string, len(indices))
	for i, idx := range indices {
		current[i] = labels[idx]
	}
	parentGini := giniOf(current)

	for _, feature := range features {
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = X[idx][feature]
		}

		for _, threshold := range midpointThresholds(values) {
			left, right := partition(X, indices, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			leftLabels := make([]string, len(left))
			for i, idx := range left {
				leftLabels[i] = labels[idx]
			}
			rightLabels := make([]string, len(right))
			for i, idx := range right {
				rightLabels[i] = labels[idx]
			}

			n := float64(len(indices))
			weighted := float64(len(left))/n*giniOf(leftLabels) +
				float64(len(right))/n*giniOf(rightLabels)

			if gain := parentGini - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// partition splits row indices on feature <= threshold
func partition(X [][]float64, indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}

// midpointThresholds returns the midpoints between consecutive unique values
func midpointThresholds(values []float64) []float64 {
	seen := make(map[float64]bool, len(values))
	unique := make([]float64, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	if len(unique) < 2 {
		return nil
	}
	sort.Float64s(unique)

	thresholds := make([]float64, len(unique)-1)
	for i := 0; i < len(unique)-1; i++ {
		thresholds[i] = (unique[i] + unique[i+1]) / 2.0
	}
	return thresholds
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return variance / float64(len(values))
}

func giniOf(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := countClasses(labels)
	n := float64(len(labels))
	gini := 1.0
	for _, count := range counts {
		p := float64(count) / n
		gini -= p * p
	}
	return gini
}

func countClasses(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

// majorityClass breaks count ties lexicographically so results are stable
func majorityClass(counts map[string]int) string {
	best := ""
	bestCount := -1
	for class, count := range counts {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	return best
}

func uniqueClasses(labels []string) []string {
	seen := make(map[string]bool)
	unique := []string{}
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	sort.Strings(unique)
	return unique
}
