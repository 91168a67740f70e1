package training

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestEvaluate_KnownValues verifies the metric formulas on a hand-computed case.
func TestEvaluate_KnownValues(t *testing.T) {
	actual := []float64{10, 20, 30, 40}
	predicted := []float64{12, 18, 33, 40}

	m, err := Evaluate(actual, predicted)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	// errors are -2, 2, -3, 0
	if !almostEqual(m.MAE, 1.75, 1e-9) {
		t.Errorf("MAE = %v, want 1.75", m.MAE)
	}
	if !almostEqual(m.MSE, 4.25, 1e-9) {
		t.Errorf("MSE = %v, want 4.25", m.MSE)
	}
	if !almostEqual(m.RMSE, math.Sqrt(4.25), 1e-9) {
		t.Errorf("RMSE = %v, want sqrt(4.25)", m.RMSE)
	}

	// mean 25, ss_tot 500, ss_res 17
	if !almostEqual(m.R2, 1-17.0/500.0, 1e-9) {
		t.Errorf("R2 = %v, want %v", m.R2, 1-17.0/500.0)
	}

	if m.MAPE == nil {
		t.Fatal("MAPE should be defined when no actual is zero")
	}
	// (20 + 10 + 10 + 0) / 4
	if !almostEqual(*m.MAPE, 10.0, 1e-9) {
		t.Errorf("MAPE = %v, want 10", *m.MAPE)
	}
}

// TestEvaluate_ZeroActualDisablesMAPE verifies MAPE is undefined when any
// actual value is exactly zero while the other metrics still compute.
func TestEvaluate_ZeroActualDisablesMAPE(t *testing.T) {
	actual := []float64{0, 10, 20}
	predicted := []float64{1, 9, 21}

	m, err := Evaluate(actual, predicted)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if m.MAPE != nil {
		t.Errorf("MAPE = %v, want nil when an actual is zero", *m.MAPE)
	}
	if !almostEqual(m.MAE, 1.0, 1e-9) {
		t.Errorf("MAE = %v, want 1", m.MAE)
	}
}

// TestEvaluate_ConstantActualZeroR2 verifies the R² fallback when the
// actuals have no variance.
func TestEvaluate_ConstantActualZeroR2(t *testing.T) {
	actual := []float64{5, 5, 5, 5}
	predicted := []float64{4, 5, 6, 5}

	m, err := Evaluate(actual, predicted)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if m.R2 != 0 {
		t.Errorf("R2 = %v, want 0 for constant actuals", m.R2)
	}
}

// TestEvaluate_InputErrors verifies length validation.
func TestEvaluate_InputErrors(t *testing.T) {
	if _, err := Evaluate([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := Evaluate(nil, nil); err == nil {
		t.Error("expected error for empty inputs")
	}
}

// TestEncodeLabels_UsesClassOrder verifies labels map onto their class index.
func TestEncodeLabels_UsesClassOrder(t *testing.T) {
	encoded := encodeLabels([]string{"yes", "no", "yes"}, []string{"no", "yes"})
	want := []float64{1, 0, 1}
	for i := range want {
		if encoded[i] != want[i] {
			t.Errorf("encoded[%d] = %v, want %v", i, encoded[i], want[i])
		}
	}
}
