package stats

import (
	"math"
	"testing"
)

func TestCombinePValues_Empty(t *testing.T) {
	if p := CombinePValues(nil); p != 1 {
		t.Errorf("combining no p-values = %g, want 1", p)
	}
}

// TestCombinePValues_SingleIdentity relies on the chi-squared(2) survival
// being exp(-x/2): combining one p-value must return that p-value.
func TestCombinePValues_SingleIdentity(t *testing.T) {
	for _, p := range []float64{0.001, 0.05, 0.5, 1.0} {
		got := CombinePValues([]float64{p})
		if math.Abs(got-p) > 1e-9 {
			t.Errorf("CombinePValues([%g]) = %g, want identity", p, got)
		}
	}
}

func TestCombinePValues_StrengthensEvidence(t *testing.T) {
	single := CombinePValues([]float64{0.01})
	double := CombinePValues([]float64{0.01, 0.01})
	if double >= single {
		t.Errorf("two concordant small p-values should combine below one: %g >= %g", double, single)
	}
}

func TestCombinePValues_OrderInvariant(t *testing.T) {
	a := CombinePValues([]float64{0.02, 0.4, 0.007})
	b := CombinePValues([]float64{0.007, 0.02, 0.4})
	if math.Abs(a-b) > 1e-15 {
		t.Errorf("combination depends on order: %g vs %g", a, b)
	}
}

func TestCombinePValues_Range(t *testing.T) {
	got := CombinePValues([]float64{1, 1, 1})
	if got <= 0 || got > 1 {
		t.Errorf("combined p %g outside (0,1]", got)
	}
}
