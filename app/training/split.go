package training

import (
	"fmt"
	"math/rand"
)

// SplitIndices shuffles 0..n-1 with the given seed and cuts it into train
// and test partitions. testSize is the test fraction, e.g. 0.2 for an 80/20
// split. The same seed always yields the same partition.
func SplitIndices(n int, testSize float64, seed int64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("empty data")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0,1), got %v", testSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	splitIdx := int(float64(n) * (1 - testSize))
	if splitIdx < 1 {
		splitIdx = 1
	}
	if splitIdx >= n {
		splitIdx = n - 1
	}

	return indices[:splitIdx], indices[splitIdx:], nil
}

// selectRows materializes the rows named by indices
func selectRows(X [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	subX := make([][]float64, len(indices))
	subY := make([]float64, len(indices))
	for i, idx := range indices {
		subX[i] = X[idx]
		subY[i] = y[idx]
	}
	return subX, subY
}

// selectLabelRows is selectRows for string targets
func selectLabelRows(X [][]float64, y []string, indices []int) ([][]float64, []string) {
	subX := make([][]float64, len(indices))
	subY := make([]string, len(indices))
	for i, idx := range indices {
		subX[i] = X[idx]
		subY[i] = y[idx]
	}
	return subX, subY
}
