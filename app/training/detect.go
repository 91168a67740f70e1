package training

import (
	"math"
	"strconv"

	"datalens/domain/model"
)

// Task is the learning problem a model type solves
type Task string

const (
	TaskRegression     Task = "regression"
	TaskClassification Task = "classification"
)

// TaskOf maps an algorithm tag to its task
func TaskOf(t model.Type) Task {
	if t.IsClassifier() {
		return TaskClassification
	}
	return TaskRegression
}

// maxClassCardinality bounds how many distinct values a column may hold and
// still count as a classification target.
const maxClassCardinality = 20

// DetectTask guesses the learning task for a target column from its raw
// values. Non-numeric columns are always classification. Numeric columns
// with few distinct integral values look like encoded labels and are also
// classification; everything else is regression.
func DetectTask(values []string) Task {
	distinct := make(map[string]bool, len(values))
	integral := true

	for _, v := range values {
		if v == "" {
			continue
		}
		distinct[v] = true
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return TaskClassification
		}
		if f != math.Trunc(f) {
			integral = false
		}
	}

	if integral && len(distinct) >= 2 && len(distinct) <= maxClassCardinality {
		return TaskClassification
	}
	return TaskRegression
}

// ClassCount returns the number of distinct non-empty values
func ClassCount(values []string) int {
	distinct := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			distinct[v] = true
		}
	}
	return len(distinct)
}
