package training

import (
	"fmt"

	"datalens/domain/model"

	"gonum.org/v1/gonum/mat"
)

// TrainLinear fits ordinary least squares with an intercept term
func TrainLinear(X [][]float64, y []float64) (model.LinearParams, error) {
	intercept, coefs, err := leastSquares(X, y)
	if err != nil {
		return model.LinearParams{}, err
	}
	return model.LinearParams{Intercept: intercept, Coefficients: coefs}, nil
}

// TrainPolynomial fits least squares over the per-feature power expansion
// x, x², ... x^degree of every input column. No interaction terms are
// generated; coefficients come back feature-major.
func TrainPolynomial(X [][]float64, y []float64, degree int) (model.PolynomialParams, error) {
	if degree < 1 {
		return model.PolynomialParams{}, fmt.Errorf("polynomial degree must be at least 1, got %d", degree)
	}
	expanded := expandPolynomial(X, degree)
	intercept, coefs, err := leastSquares(expanded, y)
	if err != nil {
		return model.PolynomialParams{}, err
	}
	return model.PolynomialParams{Degree: degree, Intercept: intercept, Coefficients: coefs}, nil
}

// leastSquares solves min ||A·beta - y|| where A carries a leading ones
// column for the intercept. gonum's Solve uses QR for the overdetermined
// case and reports near-singular designs as an error.
func leastSquares(X [][]float64, y []float64) (float64, []float64, error) {
	n := len(X)
	if n == 0 {
		return 0, nil, fmt.Errorf("empty training data")
	}
	p := len(X[0])
	if p == 0 {
		return 0, nil, fmt.Errorf("no features")
	}
	if n < p+1 {
		return 0, nil, fmt.Errorf("need at least %d samples for %d features, got %d", p+1, p, n)
	}

	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(n, y)

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		return 0, nil, fmt.Errorf("least squares solve: %w", err)
	}

	coefs := make([]float64, p)
	for j := 0; j < p; j++ {
		coefs[j] = beta.AtVec(j + 1)
	}
	return beta.AtVec(0), coefs, nil
}

// expandPolynomial maps every row to its per-feature powers, feature-major:
// all powers of column 0, then all powers of column 1, and so on.
func expandPolynomial(X [][]float64, degree int) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	p := len(X[0])
	out := make([][]float64, len(X))
	for i, row := range X {
		expanded := make([]float64, 0, p*degree)
		for _, v := range row {
			pow := 1.0
			for d := 1; d <= degree; d++ {
				pow *= v
				expanded = append(expanded, pow)
			}
		}
		out[i] = expanded
	}
	return out
}
