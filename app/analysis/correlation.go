package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"datalens/adapters/tabular"
	"datalens/domain/core"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise correlations across numeric columns.
// Both matrices are symmetric with a unit diagonal, row and column order
// following Columns.
type CorrelationMatrix struct {
	Columns  []string    `json:"columns"`
	Pearson  [][]float64 `json:"pearson"`
	Spearman [][]float64 `json:"spearman"`
}

// correlationMatrix computes Pearson and Spearman coefficients for every
// column pair over the rows where both cells parse
func correlationMatrix(tbl *tabular.Table, numeric []string) (*CorrelationMatrix, error) {
	if len(numeric) < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 numeric columns, got %d", core.ErrInsufficientData, len(numeric))
	}

	n := len(numeric)
	pearson := make([][]float64, n)
	spearman := make([][]float64, n)
	for i := range pearson {
		pearson[i] = make([]float64, n)
		spearman[i] = make([]float64, n)
		pearson[i][i] = 1
		spearman[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x, y := pairedValues(tbl, numeric[i], numeric[j])
			p := pearsonCorrelation(x, y)
			s := spearmanCorrelation(x, y)
			pearson[i][j], pearson[j][i] = p, p
			spearman[i][j], spearman[j][i] = s, s
		}
	}

	return &CorrelationMatrix{Columns: numeric, Pearson: pearson, Spearman: spearman}, nil
}

// pairedValues extracts the rows where both columns hold parseable numbers
func pairedValues(tbl *tabular.Table, a, b string) (x, y []float64) {
	for _, row := range tbl.Rows {
		va, err := strconv.ParseFloat(row[a], 64)
		if err != nil {
			continue
		}
		vb, err := strconv.ParseFloat(row[b], 64)
		if err != nil {
			continue
		}
		x = append(x, va)
		y = append(y, vb)
	}
	return x, y
}

// pearsonCorrelation wraps the gonum estimator, mapping degenerate inputs
// (constant columns, too few pairs) to 0
func pearsonCorrelation(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return clampUnit(r)
}

// spearmanCorrelation computes rank correlation with tie-averaged ranks:
// rho = 1 - 6*Σd² / (n(n²-1))
func spearmanCorrelation(x, y []float64) float64 {
	n := len(x)
	if n < 2 || isConstant(x) || isConstant(y) {
		return 0
	}

	xRanks := rankValues(x)
	yRanks := rankValues(y)

	sumDiffSq := 0.0
	for i := 0; i < n; i++ {
		diff := xRanks[i] - yRanks[i]
		sumDiffSq += diff * diff
	}

	denominator := float64(n) * (float64(n*n) - 1)
	if denominator == 0 {
		return 0
	}

	return clampUnit(1.0 - (6.0 * sumDiffSq / denominator))
}

// rankValues converts values to 1-based ranks, averaging over tie groups
func rankValues(data []float64) []float64 {
	n := len(data)
	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}

	return ranks
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

// clampUnit pins floating point drift back into [-1, 1]
func clampUnit(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
