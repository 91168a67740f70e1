package training

import (
	"testing"
)

// TestTrainLinear_RecoversCoefficients verifies OLS recovers an exact linear
// relationship y = 3x1 + 2x2 + 5.
func TestTrainLinear_RecoversCoefficients(t *testing.T) {
	var X [][]float64
	var y []float64
	for a := 0; a < 5; a++ {
		for b := 0; b < 5; b++ {
			x1, x2 := float64(a), float64(b)
			X = append(X, []float64{x1, x2})
			y = append(y, 3*x1+2*x2+5)
		}
	}

	params, err := TrainLinear(X, y)
	if err != nil {
		t.Fatalf("TrainLinear returned error: %v", err)
	}

	if !almostEqual(params.Intercept, 5, 1e-6) {
		t.Errorf("Intercept = %v, want 5", params.Intercept)
	}
	if len(params.Coefficients) != 2 {
		t.Fatalf("got %d coefficients, want 2", len(params.Coefficients))
	}
	if !almostEqual(params.Coefficients[0], 3, 1e-6) {
		t.Errorf("Coefficients[0] = %v, want 3", params.Coefficients[0])
	}
	if !almostEqual(params.Coefficients[1], 2, 1e-6) {
		t.Errorf("Coefficients[1] = %v, want 2", params.Coefficients[1])
	}
}

// TestTrainLinear_TooFewSamples verifies the sample count guard.
func TestTrainLinear_TooFewSamples(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}
	y := []float64{1, 2}
	if _, err := TrainLinear(X, y); err == nil {
		t.Error("expected error for 2 samples with 2 features")
	}
}

// TestTrainLinear_EmptyData verifies empty input errors.
func TestTrainLinear_EmptyData(t *testing.T) {
	if _, err := TrainLinear(nil, nil); err == nil {
		t.Error("expected error for empty data")
	}
}

// TestTrainPolynomial_RecoversQuadratic verifies the power expansion fits
// y = x² - 2x + 1 exactly.
func TestTrainPolynomial_RecoversQuadratic(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		x := float64(i)
		X = append(X, []float64{x})
		y = append(y, x*x-2*x+1)
	}

	params, err := TrainPolynomial(X, y, 2)
	if err != nil {
		t.Fatalf("TrainPolynomial returned error: %v", err)
	}

	if params.Degree != 2 {
		t.Errorf("Degree = %d, want 2", params.Degree)
	}
	if !almostEqual(params.Intercept, 1, 1e-6) {
		t.Errorf("Intercept = %v, want 1", params.Intercept)
	}
	// Feature-major expansion: coefficient 0 is x, coefficient 1 is x².
	if len(params.Coefficients) != 2 {
		t.Fatalf("got %d coefficients, want 2", len(params.Coefficients))
	}
	if !almostEqual(params.Coefficients[0], -2, 1e-6) {
		t.Errorf("Coefficients[0] = %v, want -2", params.Coefficients[0])
	}
	if !almostEqual(params.Coefficients[1], 1, 1e-6) {
		t.Errorf("Coefficients[1] = %v, want 1", params.Coefficients[1])
	}
}

// TestTrainPolynomial_InvalidDegree verifies the degree guard.
func TestTrainPolynomial_InvalidDegree(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{1, 2, 3}
	if _, err := TrainPolynomial(X, y, 0); err == nil {
		t.Error("expected error for degree 0")
	}
}

// TestExpandPolynomial_FeatureMajorOrder verifies the expansion layout:
// all powers of column 0, then all powers of column 1.
func TestExpandPolynomial_FeatureMajorOrder(t *testing.T) {
	out := expandPolynomial([][]float64{{2, 3}}, 3)
	want := []float64{2, 4, 8, 3, 9, 27}
	if len(out) != 1 || len(out[0]) != len(want) {
		t.Fatalf("unexpected expansion shape: %v", out)
	}
	for i := range want {
		if !almostEqual(out[0][i], want[i], 1e-12) {
			t.Errorf("expanded[%d] = %v, want %v", i, out[0][i], want[i])
		}
	}
}
